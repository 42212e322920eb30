package caster

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/omath"
	"github.com/oomph-ac/momentum/world"
)

// Provider provides the colliders a Caster runs its queries against. *world.World implements
// Provider.
type Provider interface {
	// Colliders appends every collider whose bounds intersect the area to dst.
	Colliders(area cube.BBox, dst []world.Entry) []world.Entry
	// IsDescendant returns true if the collider id is a descendant of ancestor.
	IsDescendant(id, ancestor uint64) bool
}

// Hit is a contact found by a sweep.
type Hit struct {
	// Distance is the distance travelled along the sweep before the contact.
	Distance float32
	// Point is the point of contact on the surface of the collider.
	Point mgl32.Vec3
	// Normal is the outward normal of the contact, pointing towards the probe.
	Normal mgl32.Vec3
	// Collider is the entry that was hit, including its body.
	Collider world.Entry
}

// PointVelocity returns the velocity of the contacted surface at the point of contact.
func (h Hit) PointVelocity() mgl32.Vec3 {
	return h.Collider.Body.PointVelocity(h.Point)
}

// Caster runs geometric queries for a single probe volume against the colliders of a Provider.
// Queries never change the state of the world.
type Caster interface {
	// Width returns the width of the probe.
	Width() float32
	// SetWidth changes the width of the probe.
	SetWidth(width float32)
	// Height returns the height of the probe.
	Height() float32
	// SetHeight changes the height of the probe.
	SetHeight(height float32)
	// Resize changes both the width and the height of the probe.
	Resize(width, height float32) error
	// Up returns the axis of the probe.
	Up() mgl32.Vec3

	// SweepTest casts the probe, shrunk by contactOffsetDistance and shortened at the top by
	// heightReduction, from start along the unit direction by up to maxDistance. The closest
	// contact is returned.
	SweepTest(start, direction mgl32.Vec3, maxDistance, contactOffsetDistance, heightReduction float32) (Hit, bool)
	// CheckOverlapping returns true if the probe, shrunk by contactOffsetDistance and shortened by
	// heightReduction, overlaps any collider at start.
	CheckOverlapping(start mgl32.Vec3, contactOffsetDistance, heightReduction float32) bool
	// IsGround classifies a hit as walkable ground, returning the normal the classification was
	// based on.
	IsGround(hit Hit, maxStandableAngle float32) (mgl32.Vec3, bool)
	// FarthestPenetration returns the deepest penetration of the probe at start into any
	// collider. ok is false if the probe overlaps nothing.
	FarthestPenetration(start mgl32.Vec3) (direction mgl32.Vec3, distance float32, ok bool)
}

// IsGroundNormal returns true if the angle between the normal and up does not exceed the
// maximum standable angle.
func IsGroundNormal(normal, up mgl32.Vec3, maxStandableAngle float32) bool {
	return omath.Angle(normal, up) <= maxStandableAngle
}

package kinematics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/caster"
)

// ClippingPlane is a surface that velocity is not allowed to move into. Velocity holds the velocity
// of the surface itself, so moving surfaces push velocity along with them.
type ClippingPlane struct {
	Normal   mgl32.Vec3
	Velocity mgl32.Vec3
}

// PlaneFromHit creates a ClippingPlane for a hit, using the normal passed in place of the normal of
// the hit. The velocity of the plane is the velocity of the contacted body at the point of contact.
func PlaneFromHit(hit caster.Hit, normal mgl32.Vec3) ClippingPlane {
	return ClippingPlane{Normal: normal, Velocity: hit.PointVelocity()}
}

// ClipVelocity removes the part of v moving into the plane, relative to the velocity of the plane.
// The removed part is scaled by overbounce, so values above 1 bounce off the plane.
func (p ClippingPlane) ClipVelocity(v mgl32.Vec3, overbounce float32) mgl32.Vec3 {
	return v.Add(p.Normal.Mul(math32.Max(p.Velocity.Sub(v).Dot(p.Normal)*overbounce, 0)))
}

// WithNormal returns a copy of the plane with the normal replaced.
func (p ClippingPlane) WithNormal(normal mgl32.Vec3) ClippingPlane {
	p.Normal = normal
	return p
}

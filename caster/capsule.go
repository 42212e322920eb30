package caster

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/game"
	"github.com/oomph-ac/momentum/internal"
	"github.com/oomph-ac/momentum/oerror"
	"github.com/oomph-ac/momentum/omath"
	"github.com/oomph-ac/momentum/world"
)

const (
	// CapsuleDirection is the only capsule axis supported by the capsule caster.
	CapsuleDirection = world.AxisY

	// GroundPointOffsetDistance is how far the ground refinement ray is moved from the contact
	// point towards the centre of the capsule.
	GroundPointOffsetDistance = float32(0.002)
	// GroundPointRaycastDistance is the length of the ground refinement ray.
	GroundPointRaycastDistance = float32(0.02)

	// contactIterations is the amount of bisection steps used to find the first contact of a sweep.
	contactIterations = 32
)

var (
	entryListPool = internal.NewListPool[world.Entry](game.DefaultMaxHits)
	hitListPool   = internal.NewListPool[Hit](game.DefaultMaxHits)
)

// Capsule is a Caster for an upright capsule. The capsule's position is the centre of its lowest
// point.
type Capsule struct {
	provider Provider
	id       uint64
	maxHits  int

	radius float32
	height float32
}

// NewCapsule creates a capsule caster for the collider with the id and shape passed. Colliders
// with the same id, or descending from it, are ignored by every query. An error is returned if
// the shape is not aligned with CapsuleDirection.
func NewCapsule(provider Provider, id uint64, shape world.Capsule, maxHits int) (*Capsule, error) {
	if shape.Direction != CapsuleDirection {
		return nil, oerror.Configuration(game.ErrorUnsupportedAxis, shape.Direction, CapsuleDirection)
	}
	if maxHits <= 0 {
		maxHits = game.DefaultMaxHits
	}
	c := &Capsule{provider: provider, id: id, maxHits: maxHits, radius: math32.Max(shape.Radius, 0)}
	c.SetHeight(shape.Height)
	return c, nil
}

// Width ...
func (c *Capsule) Width() float32 {
	return c.radius * 2
}

// SetWidth ...
func (c *Capsule) SetWidth(width float32) {
	c.radius = math32.Max(width*0.5, 0)
	c.SetHeight(c.height)
}

// Height ...
func (c *Capsule) Height() float32 {
	return c.height
}

// SetHeight sets the height of the capsule. Heights below the width of the capsule are raised
// to it.
func (c *Capsule) SetHeight(height float32) {
	c.height = math32.Max(height, c.radius*2)
}

// Radius returns the radius of the capsule.
func (c *Capsule) Radius() float32 {
	return c.radius
}

// Resize ...
func (c *Capsule) Resize(width, height float32) error {
	if !(width >= 0) || !(height >= 0) || math32.IsInf(width, 0) || math32.IsInf(height, 0) {
		return oerror.Configuration(game.ErrorInvalidProbeSize, width, height)
	}
	c.SetWidth(width)
	c.SetHeight(height)
	return nil
}

// Up ...
func (c *Capsule) Up() mgl32.Vec3 {
	return CapsuleDirection.Vec3()
}

// Shape returns the world collider matching the capsule at the position passed.
func (c *Capsule) Shape(position mgl32.Vec3) world.Capsule {
	return world.Capsule{Position: position, Radius: c.radius, Height: c.height, Direction: CapsuleDirection}
}

// points returns the core segment of the capsule at the position passed, with the top lowered by
// heightReduction.
func (c *Capsule) points(position mgl32.Vec3, heightReduction float32) (mgl32.Vec3, mgl32.Vec3) {
	up := c.Up()
	a := position.Add(up.Mul(c.radius))
	return a, a.Add(up.Mul(math32.Max(c.height-2*c.radius-heightReduction, 0)))
}

// ignored returns true if the entry is the capsule's own collider or one of its descendants.
func (c *Capsule) ignored(e world.Entry) bool {
	return e.ID == c.id || c.provider.IsDescendant(e.ID, c.id)
}

// candidates queries the provider for every collider within the area spanned by the segment ab
// moved along offset, grown by radius.
func (c *Capsule) candidates(a, b, offset mgl32.Vec3, radius float32, dst *[]world.Entry) {
	min, max := a, a
	for _, p := range [...]mgl32.Vec3{b, a.Add(offset), b.Add(offset)} {
		for axis := 0; axis < 3; axis++ {
			min[axis] = math32.Min(min[axis], p[axis])
			max[axis] = math32.Max(max[axis], p[axis])
		}
	}
	area := cube.Box(min[0], min[1], min[2], max[0], max[1], max[2]).Grow(radius + omath.Epsilon)
	*dst = c.provider.Colliders(area, *dst)
}

// SweepTest ...
func (c *Capsule) SweepTest(start, direction mgl32.Vec3, maxDistance, contactOffsetDistance, heightReduction float32) (Hit, bool) {
	if maxDistance < 0 || omath.IsZero(direction) {
		return Hit{}, false
	}
	a, b := c.points(start, heightReduction)
	radius := math32.Max(c.radius-contactOffsetDistance, 0)

	entries := entryListPool.Get()
	defer entryListPool.Put(entries)
	hits := hitListPool.Get()
	defer hitListPool.Put(hits)

	c.candidates(a, b, direction.Mul(maxDistance), radius, entries)
	for _, e := range *entries {
		if c.ignored(e) {
			continue
		}
		if hit, ok := sweepCollider(e.Collider, a, b, direction, maxDistance, radius); ok {
			hit.Collider = e
			*hits = append(*hits, hit)
			if len(*hits) == c.maxHits {
				break
			}
		}
	}

	var (
		closest  Hit
		found    bool
		distance = maxDistance
	)
	for _, hit := range *hits {
		// A contact reporting neither a distance nor a point is discarded when anything else was hit.
		if hit.Distance == 0 && omath.IsZero(hit.Point) && len(*hits) > 1 {
			continue
		}
		if !found || hit.Distance < distance {
			closest, distance, found = hit, hit.Distance, true
		}
	}
	return closest, found
}

// sweepCollider finds the first contact of a capsule with the core segment ab and the radius
// passed, moving along direction, with the collider. The distance between the moving segment and
// a convex collider is convex over the distance travelled, so the closest approach is found by a
// ternary search and the first contact by bisection.
func sweepCollider(col world.Collider, a, b, direction mgl32.Vec3, maxDistance, radius float32) (Hit, bool) {
	distanceAt := func(t float32) float32 {
		offset := direction.Mul(t)
		d, _, _ := col.SegmentDistance(a.Add(offset), b.Add(offset))
		return d
	}
	if distanceAt(0) <= radius {
		return Hit{Normal: direction.Mul(-1)}, true
	}
	if maxDistance == 0 {
		return Hit{}, false
	}
	closest, closestDistance := omath.MinimizeConvex(distanceAt, 0, maxDistance)
	if closestDistance > radius {
		return Hit{}, false
	}

	lo, hi := float32(0), closest
	for i := 0; i < contactIterations; i++ {
		mid := (lo + hi) * 0.5
		if distanceAt(mid) > radius {
			lo = mid
		} else {
			hi = mid
		}
	}
	offset := direction.Mul(lo)
	_, segmentPoint, colliderPoint := col.SegmentDistance(a.Add(offset), b.Add(offset))
	normal := omath.SafeNormalize(segmentPoint.Sub(colliderPoint))
	if omath.IsZero(normal) {
		normal = direction.Mul(-1)
	}
	return Hit{Distance: lo, Point: colliderPoint, Normal: normal}, true
}

// CheckOverlapping ...
func (c *Capsule) CheckOverlapping(start mgl32.Vec3, contactOffsetDistance, heightReduction float32) bool {
	a, b := c.points(start, heightReduction)
	radius := math32.Max(c.radius-contactOffsetDistance, 0)

	entries := entryListPool.Get()
	defer entryListPool.Put(entries)

	c.candidates(a, b, mgl32.Vec3{}, radius, entries)
	for _, e := range *entries {
		if c.ignored(e) {
			continue
		}
		if d, _, _ := e.Collider.SegmentDistance(a, b); d < radius {
			return true
		}
	}
	return false
}

// IsGround classifies the hit as ground. A normal reported near the rounded bottom of the capsule
// is refined with a short raycast against the surface that was hit, as the raw normal of a
// contact on an edge can make a steep wall look like a shallow slope.
func (c *Capsule) IsGround(hit Hit, maxStandableAngle float32) (mgl32.Vec3, bool) {
	up := c.Up()
	groundPointDirection := omath.ProjectOnPlane(hit.Normal, up).Mul(-1)
	groundPointOffset := groundPointDirection.Mul(c.radius + GroundPointOffsetDistance)
	if groundPointOffset.LenSqr() >= c.radius*c.radius || hit.Collider.Collider == nil {
		return hit.Normal, IsGroundNormal(hit.Normal, up, maxStandableAngle)
	}

	groundPoint := hit.Point.Add(groundPointDirection.Mul(GroundPointOffsetDistance))
	origin := groundPoint.Add(hit.Normal.Mul(GroundPointRaycastDistance * 0.5))
	result, ok := hit.Collider.Collider.Raycast(origin, hit.Normal.Mul(-1), GroundPointRaycastDistance)
	if !ok {
		return hit.Normal, IsGroundNormal(hit.Normal, up, maxStandableAngle)
	}
	return result.Normal, IsGroundNormal(result.Normal, up, maxStandableAngle)
}

// FarthestPenetration ...
func (c *Capsule) FarthestPenetration(start mgl32.Vec3) (mgl32.Vec3, float32, bool) {
	a, b := c.points(start, 0)

	entries := entryListPool.Get()
	defer entryListPool.Put(entries)

	var (
		direction mgl32.Vec3
		distance  float32
	)
	c.candidates(a, b, mgl32.Vec3{}, c.radius, entries)
	for _, e := range *entries {
		if c.ignored(e) {
			continue
		}
		dir, dist, ok := e.Collider.Penetration(a, b, c.radius)
		if ok && dist > distance {
			direction, distance = dir, dist
		}
	}
	return direction, distance, distance != 0
}

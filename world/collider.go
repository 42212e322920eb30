package world

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/omath"
)

// planeExtent is the half size of the bounds reported by a Plane.
const planeExtent = 1e6

// Axis is the index of a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Vec3 returns the unit vector of the axis.
func (a Axis) Vec3() mgl32.Vec3 {
	var v mgl32.Vec3
	if a >= AxisX && a <= AxisZ {
		v[a] = 1
	}
	return v
}

// Collider is a static shape placed in a World. Colliders are value types, so a copy taken under
// the world's lock can be queried without further synchronisation.
type Collider interface {
	// Bounds returns the axis aligned box enclosing the collider.
	Bounds() cube.BBox
	// SegmentDistance returns the distance between the segment ab and the collider, along with
	// the closest point on the segment and the closest point on the collider. The distance is
	// zero if the segment touches or enters the collider.
	SegmentDistance(a, b mgl32.Vec3) (dist float32, segmentPoint, colliderPoint mgl32.Vec3)
	// Raycast casts a ray from origin along the unit direction passed, up to maxDist.
	Raycast(origin, dir mgl32.Vec3, maxDist float32) (RaycastResult, bool)
	// Penetration returns the direction and the distance that a capsule, with the segment ab as
	// its core and the radius passed, must be moved by to stop overlapping the collider.
	Penetration(a, b mgl32.Vec3, radius float32) (dir mgl32.Vec3, dist float32, ok bool)
	// Translate returns a copy of the collider moved by the offset passed.
	Translate(offset mgl32.Vec3) Collider
}

// RaycastResult is the result of a successful Collider.Raycast.
type RaycastResult struct {
	Distance float32
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
}

// Plane is a solid half-space. Every point p where Normal·p <= Distance is inside the plane.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// NewPlane returns a Plane with the normal passed, going through the point passed.
func NewPlane(normal, point mgl32.Vec3) Plane {
	normal = omath.SafeNormalize(normal)
	return Plane{Normal: normal, Distance: normal.Dot(point)}
}

func (p Plane) signedDistance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) - p.Distance
}

// Bounds ...
func (p Plane) Bounds() cube.BBox {
	min := mgl32.Vec3{-planeExtent, -planeExtent, -planeExtent}
	max := mgl32.Vec3{planeExtent, planeExtent, planeExtent}
	for axis := 0; axis < 3; axis++ {
		if p.Normal[axis] == 1 {
			max[axis] = p.Distance
		} else if p.Normal[axis] == -1 {
			min[axis] = -p.Distance
		}
	}
	return cube.Box(min[0], min[1], min[2], max[0], max[1], max[2])
}

// SegmentDistance ...
func (p Plane) SegmentDistance(a, b mgl32.Vec3) (float32, mgl32.Vec3, mgl32.Vec3) {
	segmentPoint, dist := a, p.signedDistance(a)
	if db := p.signedDistance(b); db < dist {
		segmentPoint, dist = b, db
	}
	colliderPoint := segmentPoint.Sub(p.Normal.Mul(dist))
	return math32.Max(dist, 0), segmentPoint, colliderPoint
}

// Raycast ...
func (p Plane) Raycast(origin, dir mgl32.Vec3, maxDist float32) (RaycastResult, bool) {
	s := p.signedDistance(origin)
	if s <= 0 {
		return RaycastResult{Point: origin, Normal: p.Normal}, true
	}
	denom := p.Normal.Dot(dir)
	if denom >= -omath.Epsilon {
		return RaycastResult{}, false
	}
	t := -s / denom
	if t > maxDist {
		return RaycastResult{}, false
	}
	return RaycastResult{Distance: t, Point: origin.Add(dir.Mul(t)), Normal: p.Normal}, true
}

// Penetration ...
func (p Plane) Penetration(a, b mgl32.Vec3, radius float32) (mgl32.Vec3, float32, bool) {
	depth := radius - math32.Min(p.signedDistance(a), p.signedDistance(b))
	if depth <= 0 {
		return mgl32.Vec3{}, 0, false
	}
	return p.Normal, depth, true
}

// Translate ...
func (p Plane) Translate(offset mgl32.Vec3) Collider {
	p.Distance += p.Normal.Dot(offset)
	return p
}

// Box is a solid axis aligned box.
type Box struct {
	BBox cube.BBox
}

// NewBox returns a Box with the minimum and maximum corners passed.
func NewBox(min, max mgl32.Vec3) Box {
	return Box{BBox: cube.Box(min[0], min[1], min[2], max[0], max[1], max[2])}
}

func (b Box) clamp(v mgl32.Vec3) mgl32.Vec3 {
	min, max := b.BBox.Min(), b.BBox.Max()
	return mgl32.Vec3{
		omath.ClampFloat(v[0], min[0], max[0]),
		omath.ClampFloat(v[1], min[1], max[1]),
		omath.ClampFloat(v[2], min[2], max[2]),
	}
}

func (b Box) contains(v mgl32.Vec3) bool {
	return b.clamp(v) == v
}

// Bounds ...
func (b Box) Bounds() cube.BBox {
	return b.BBox
}

// SegmentDistance ...
func (b Box) SegmentDistance(start, end mgl32.Vec3) (float32, mgl32.Vec3, mgl32.Vec3) {
	delta := end.Sub(start)
	t, dist := omath.MinimizeConvex(func(t float32) float32 {
		point := start.Add(delta.Mul(t))
		return point.Sub(b.clamp(point)).Len()
	}, 0, 1)
	segmentPoint := start.Add(delta.Mul(t))
	return dist, segmentPoint, b.clamp(segmentPoint)
}

// Raycast ...
func (b Box) Raycast(origin, dir mgl32.Vec3, maxDist float32) (RaycastResult, bool) {
	if b.contains(origin) {
		return RaycastResult{Point: origin, Normal: dir.Mul(-1)}, true
	}
	result, ok := trace.BBoxIntercept(b.BBox, origin, origin.Add(dir.Mul(maxDist)))
	if !ok {
		return RaycastResult{}, false
	}
	point := result.Position()
	return RaycastResult{
		Distance: point.Sub(origin).Len(),
		Point:    point,
		Normal:   faceNormal(result.Face()),
	}, true
}

// Penetration ...
func (b Box) Penetration(start, end mgl32.Vec3, radius float32) (mgl32.Vec3, float32, bool) {
	dist, segmentPoint, colliderPoint := b.SegmentDistance(start, end)
	if dist > omath.Epsilon {
		if dist >= radius {
			return mgl32.Vec3{}, 0, false
		}
		return segmentPoint.Sub(colliderPoint).Mul(1 / dist), radius - dist, true
	}

	// The core segment is inside the box: push it out along the axis needing the smallest move.
	min, max := b.BBox.Min(), b.BBox.Max()
	var (
		bestDir   mgl32.Vec3
		bestDepth = float32(math32.MaxFloat32)
	)
	for axis := 0; axis < 3; axis++ {
		lo, hi := math32.Min(start[axis], end[axis]), math32.Max(start[axis], end[axis])
		if depth := max[axis] - lo + radius; depth < bestDepth {
			bestDepth, bestDir = depth, Axis(axis).Vec3()
		}
		if depth := hi - min[axis] + radius; depth < bestDepth {
			bestDepth, bestDir = depth, Axis(axis).Vec3().Mul(-1)
		}
	}
	return bestDir, bestDepth, true
}

// Translate ...
func (b Box) Translate(offset mgl32.Vec3) Collider {
	return Box{BBox: b.BBox.Translate(offset)}
}

// faceNormal returns the outward normal of a box face.
func faceNormal(face cube.Face) mgl32.Vec3 {
	switch face {
	case cube.FaceDown:
		return mgl32.Vec3{0, -1, 0}
	case cube.FaceUp:
		return mgl32.Vec3{0, 1, 0}
	case cube.FaceNorth:
		return mgl32.Vec3{0, 0, -1}
	case cube.FaceSouth:
		return mgl32.Vec3{0, 0, 1}
	case cube.FaceWest:
		return mgl32.Vec3{-1, 0, 0}
	default:
		return mgl32.Vec3{1, 0, 0}
	}
}

// Sphere is a solid sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// Bounds ...
func (s Sphere) Bounds() cube.BBox {
	return cube.Box(
		s.Center[0]-s.Radius, s.Center[1]-s.Radius, s.Center[2]-s.Radius,
		s.Center[0]+s.Radius, s.Center[1]+s.Radius, s.Center[2]+s.Radius,
	)
}

// SegmentDistance ...
func (s Sphere) SegmentDistance(a, b mgl32.Vec3) (float32, mgl32.Vec3, mgl32.Vec3) {
	segmentPoint := closestPointOnSegment(a, b, s.Center)
	return roundedDistance(segmentPoint, s.Center, s.Radius)
}

// Raycast ...
func (s Sphere) Raycast(origin, dir mgl32.Vec3, maxDist float32) (RaycastResult, bool) {
	t, ok := raySphere(origin, dir, s.Center, s.Radius)
	if !ok || t > maxDist {
		return RaycastResult{}, false
	}
	point := origin.Add(dir.Mul(t))
	normal := omath.SafeNormalize(point.Sub(s.Center))
	if t == 0 {
		normal = dir.Mul(-1)
	}
	return RaycastResult{Distance: t, Point: point, Normal: normal}, true
}

// Penetration ...
func (s Sphere) Penetration(a, b mgl32.Vec3, radius float32) (mgl32.Vec3, float32, bool) {
	return roundedPenetration(closestPointOnSegment(a, b, s.Center), s.Center, s.Radius+radius)
}

// Translate ...
func (s Sphere) Translate(offset mgl32.Vec3) Collider {
	s.Center = s.Center.Add(offset)
	return s
}

// Capsule is a solid capsule. Position is the centre of its lowest point, and the capsule extends
// along Direction by Height.
type Capsule struct {
	Position  mgl32.Vec3
	Radius    float32
	Height    float32
	Direction Axis
}

// Segment returns the endpoints of the core segment of the capsule.
func (c Capsule) Segment() (mgl32.Vec3, mgl32.Vec3) {
	axis := c.Direction.Vec3()
	a := c.Position.Add(axis.Mul(c.Radius))
	return a, a.Add(axis.Mul(math32.Max(c.Height-2*c.Radius, 0)))
}

// Bounds ...
func (c Capsule) Bounds() cube.BBox {
	a, b := c.Segment()
	return cube.Box(
		math32.Min(a[0], b[0])-c.Radius, math32.Min(a[1], b[1])-c.Radius, math32.Min(a[2], b[2])-c.Radius,
		math32.Max(a[0], b[0])+c.Radius, math32.Max(a[1], b[1])+c.Radius, math32.Max(a[2], b[2])+c.Radius,
	)
}

// SegmentDistance ...
func (c Capsule) SegmentDistance(a, b mgl32.Vec3) (float32, mgl32.Vec3, mgl32.Vec3) {
	p, q := c.Segment()
	segmentPoint, corePoint := closestPointsBetweenSegments(a, b, p, q)
	return roundedDistance(segmentPoint, corePoint, c.Radius)
}

// Raycast ...
func (c Capsule) Raycast(origin, dir mgl32.Vec3, maxDist float32) (RaycastResult, bool) {
	p, q := c.Segment()
	var t float32
	for i := 0; i < 64 && t <= maxDist; i++ {
		point := origin.Add(dir.Mul(t))
		core := closestPointOnSegment(p, q, point)
		dist := point.Sub(core).Len() - c.Radius
		if dist <= 1e-4 {
			normal := omath.SafeNormalize(point.Sub(core))
			if t == 0 && dist < 0 {
				normal = dir.Mul(-1)
			}
			return RaycastResult{Distance: t, Point: point, Normal: normal}, true
		}
		t += dist
	}
	return RaycastResult{}, false
}

// Penetration ...
func (c Capsule) Penetration(a, b mgl32.Vec3, radius float32) (mgl32.Vec3, float32, bool) {
	p, q := c.Segment()
	segmentPoint, corePoint := closestPointsBetweenSegments(a, b, p, q)
	return roundedPenetration(segmentPoint, corePoint, c.Radius+radius)
}

// Translate ...
func (c Capsule) Translate(offset mgl32.Vec3) Collider {
	c.Position = c.Position.Add(offset)
	return c
}

// roundedDistance returns the distance between point and a sphere around core.
func roundedDistance(point, core mgl32.Vec3, radius float32) (float32, mgl32.Vec3, mgl32.Vec3) {
	delta := point.Sub(core)
	l := delta.Len()
	if l <= radius {
		return 0, point, point
	}
	return l - radius, point, core.Add(delta.Mul(radius / l))
}

// roundedPenetration returns how far point must move away from core to be at least radius away.
func roundedPenetration(point, core mgl32.Vec3, radius float32) (mgl32.Vec3, float32, bool) {
	delta := point.Sub(core)
	l := delta.Len()
	if l >= radius {
		return mgl32.Vec3{}, 0, false
	}
	dir := omath.SafeNormalize(delta)
	if omath.IsZero(dir) {
		dir = mgl32.Vec3{0, 1, 0}
	}
	return dir, radius - l, true
}

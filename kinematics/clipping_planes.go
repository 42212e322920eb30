package kinematics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/assert"
	"github.com/oomph-ac/momentum/game"
	"github.com/oomph-ac/momentum/internal"
	"github.com/oomph-ac/momentum/omath"
)

// planePool holds storage for buffers needing more planes than fit inline.
var planePool = internal.NewListPool[ClippingPlane](game.DefaultMaxClipPlanes * 2)

// ClippingPlanes stores the planes hit during a single bump, and restricts velocity so that it
// slides across all of them. Buffers of up to game.DefaultMaxClipPlanes planes are stored inline.
// Release must be called once the buffer is no longer used.
type ClippingPlanes struct {
	inline [game.DefaultMaxClipPlanes]ClippingPlane
	pooled *[]ClippingPlane

	max   int
	count int

	originalVelocity mgl32.Vec3
	bumpVelocity     mgl32.Vec3
}

// NewClippingPlanes creates a buffer for up to max planes. originalVelocity is the velocity the
// movement attempt started with: a clipped velocity pointing against it is discarded.
func NewClippingPlanes(max int, originalVelocity mgl32.Vec3) ClippingPlanes {
	assert.IsTrue(max > 0, "clipping planes capacity must be positive, got %d", max)

	c := ClippingPlanes{max: max, originalVelocity: originalVelocity}
	if max > len(c.inline) {
		c.pooled = planePool.Get()
		if cap(*c.pooled) < max {
			*c.pooled = make([]ClippingPlane, 0, max)
		}
		*c.pooled = (*c.pooled)[:max]
	}
	return c
}

// Release returns any pooled storage of the buffer. The buffer must not be used afterwards.
func (c *ClippingPlanes) Release() {
	if c.pooled != nil {
		planePool.Put(c.pooled)
		c.pooled = nil
	}
	c.count = 0
}

// Max returns the maximum amount of planes that can be added to the buffer.
func (c *ClippingPlanes) Max() int {
	return c.max
}

// Count returns the amount of planes added in the current bump.
func (c *ClippingPlanes) Count() int {
	return c.count
}

// Planes returns the planes added in the current bump. The slice is only valid until the next
// call to StartBump or Release.
func (c *ClippingPlanes) Planes() []ClippingPlane {
	return c.storage()[:c.count]
}

func (c *ClippingPlanes) storage() []ClippingPlane {
	if c.pooled != nil {
		return *c.pooled
	}
	return c.inline[:c.max]
}

// StartBump clears the planes and records the velocity the bump starts with.
func (c *ClippingPlanes) StartBump(velocity mgl32.Vec3) {
	c.bumpVelocity = velocity
	c.count = 0
}

// TryAdd adds the plane and restricts velocity to it and every plane added before it in the
// current bump. bounce only applies to the first plane of a bump. False is returned, with
// velocity zeroed, if the buffer is already full.
func (c *ClippingPlanes) TryAdd(plane ClippingPlane, velocity *mgl32.Vec3, bounce float32) bool {
	if c.count == c.max {
		*velocity = mgl32.Vec3{}
		return false
	}
	planes := c.storage()
	planes[c.count] = plane
	c.count++

	if c.count == 1 {
		c.bumpVelocity = plane.ClipVelocity(c.bumpVelocity, 1+bounce)
		*velocity = c.bumpVelocity
		return true
	}

	clipped, ok := c.clipToAll()
	if !ok {
		if c.count != 2 {
			// Wedged between three or more planes.
			*velocity = mgl32.Vec3{}
			return true
		}
		crease := omath.SafeNormalize(planes[0].Normal.Cross(planes[1].Normal))
		clipped = crease.Mul(clipped.Dot(crease))
	}
	if clipped.Dot(c.originalVelocity) < 0 {
		clipped = mgl32.Vec3{}
	}
	*velocity = clipped
	return true
}

// clipToAll looks for a plane that the bump velocity can be clipped against without moving into
// any of the other planes. The last velocity clipped is returned if no such plane exists.
func (c *ClippingPlanes) clipToAll() (mgl32.Vec3, bool) {
	planes := c.Planes()
	var clipped mgl32.Vec3
	for i, plane := range planes {
		clipped = plane.ClipVelocity(c.bumpVelocity, 1)
		if !c.movingIntoAny(clipped, i) {
			return clipped, true
		}
	}
	return clipped, false
}

// movingIntoAny returns true if velocity moves into any of the planes other than the one skipped.
func (c *ClippingPlanes) movingIntoAny(velocity mgl32.Vec3, skip int) bool {
	for i, plane := range c.Planes() {
		if i != skip && velocity.Dot(plane.Normal) < 0 {
			return true
		}
	}
	return false
}

package kinematics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/caster"
	"github.com/oomph-ac/momentum/game"
	"github.com/oomph-ac/momentum/omath"
)

const (
	// snapTolerance is the smallest displacement SnapToGround will move the helper by.
	snapTolerance = 1e-4
	// minOffsetRatio is the smallest cosine between the direction of a contact offset and the
	// normal it moves away from. Offsets at steeper angles are skipped.
	minOffsetRatio = 0.1
)

// MoveHelper implements Quake style sliding movement. If moving from Position along Velocity
// results in a collision, Velocity is changed to slide across the surfaces hit, and Position is
// updated to the furthest position reached.
//
// MoveHelper is a plain value: copying it branches the movement, which TryMoveWithFeetLift uses to
// compare moving with and without stepping up. The Caster is borrowed and never owned.
type MoveHelper struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Up       mgl32.Vec3
	Caster   caster.Caster

	MaxStandableAngle     float32
	ContactOffsetDistance float32
	GroundBounce          float32
	WallBounce            float32
}

// NewMoveHelper creates a MoveHelper using the default settings, which may be changed afterwards.
func NewMoveHelper(position, velocity, up mgl32.Vec3, c caster.Caster) MoveHelper {
	return MoveHelper{
		Position:              position,
		Velocity:              velocity,
		Up:                    up,
		Caster:                c,
		MaxStandableAngle:     game.DefaultMaxStandableAngle,
		ContactOffsetDistance: game.DefaultContactOffsetDistance,
		GroundBounce:          game.DefaultBounce,
		WallBounce:            game.DefaultBounce,
	}
}

// SweepMove moves Position along the unit direction by maxDistance, stopping at the first hit.
func (m *MoveHelper) SweepMove(direction mgl32.Vec3, maxDistance, heightReduction float32) (caster.Hit, bool) {
	hit, ok := m.Caster.SweepTest(m.Position, direction, maxDistance, m.ContactOffsetDistance, heightReduction)
	if ok {
		m.Position = m.Position.Add(direction.Mul(hit.Distance))
		return hit, true
	}
	m.Position = m.Position.Add(direction.Mul(maxDistance))
	return hit, false
}

// TryMove moves the helper along its velocity for timeDelta seconds, sliding across the surfaces
// it hits. It returns the fraction of the desired travel that was covered, between 0 and 1.
func (m *MoveHelper) TryMove(standingOnGround bool, timeDelta, heightReduction float32, maxClipPlanes int) float32 {
	if timeDelta <= 0 {
		return 0
	}
	if maxClipPlanes <= 0 {
		maxClipPlanes = game.DefaultMaxClipPlanes
	}

	var (
		timeLeft       = timeDelta
		travelFraction float32
	)
	planes := NewClippingPlanes(maxClipPlanes, m.Velocity)
	defer planes.Release()

	for bump := 0; bump < planes.Max(); bump++ {
		direction := omath.SafeNormalize(m.Velocity)
		if omath.IsZero(direction) {
			break
		}
		maxDistance := m.Velocity.Dot(direction) * timeLeft
		if maxDistance <= 0 {
			break
		}
		hit, ok := m.SweepMove(direction, maxDistance, heightReduction)
		if !ok {
			travelFraction += timeLeft / timeDelta
			break
		}
		distanceFraction := hit.Distance / maxDistance
		travelFraction += timeLeft / timeDelta * distanceFraction
		planes.StartBump(m.Velocity)
		timeLeft -= timeLeft * distanceFraction

		var (
			normal mgl32.Vec3
			bounce float32
		)
		if groundNormal, ok := m.Caster.IsGround(hit, m.MaxStandableAngle); ok {
			m.Position = m.Position.Add(m.groundContactOffset(groundNormal))
			normal, bounce = groundNormal, m.GroundBounce
		} else if standingOnGround {
			normal, bounce = m.standingWallNormal(hit.Normal), m.WallBounce
		} else {
			m.Position = m.Position.Add(hit.Normal.Mul(m.ContactOffsetDistance))
			normal, bounce = hit.Normal, m.WallBounce
		}
		if !planes.TryAdd(PlaneFromHit(hit, normal), &m.Velocity, bounce) {
			break
		}
	}
	if travelFraction == 0 {
		m.Velocity = mgl32.Vec3{}
	}
	return math32.Min(travelFraction, 1)
}

// standingWallNormal moves the helper away from a wall hit while standing on the ground and returns
// the normal to clip against. The normal is flattened so that walls never push the helper up or
// down.
func (m *MoveHelper) standingWallNormal(hitNormal mgl32.Vec3) mgl32.Vec3 {
	normal := omath.SafeNormalize(omath.ProjectOnPlane(hitNormal, m.Up))
	if omath.IsZero(normal) {
		m.Position = m.Position.Add(hitNormal.Mul(m.ContactOffsetDistance))
		return hitNormal
	}
	// Moving along the flattened normal needs to cover the offset along the real one.
	if ratio := hitNormal.Dot(normal); ratio > minOffsetRatio {
		m.Position = m.Position.Add(normal.Mul(m.ContactOffsetDistance / ratio))
	}
	return normal
}

// TryMoveWithFeetLift works like TryMove, but also tries to step over obstacles up to
// feetLiftHeight high. The stepped result is only used if it lands on ground and moves the helper
// further horizontally than moving without stepping.
func (m *MoveHelper) TryMoveWithFeetLift(standingOnGround bool, feetLiftHeight, snapDistance, timeDelta, heightReduction float32, maxClipPlanes int) float32 {
	if feetLiftHeight <= 0 {
		return m.TryMove(standingOnGround, timeDelta, heightReduction, maxClipPlanes)
	}
	start := m.Position
	lifted := *m

	fraction := m.TryMove(standingOnGround, timeDelta, heightReduction, maxClipPlanes)

	if hit, ok := lifted.SweepMove(m.Up, feetLiftHeight, heightReduction); ok {
		lifted.Position = lifted.Position.Add(hit.Normal.Mul(lifted.ContactOffsetDistance))
	}
	stepFraction := lifted.TryMove(standingOnGround, timeDelta, heightReduction, maxClipPlanes)

	down, ok := lifted.SweepMove(m.Up.Mul(-1), feetLiftHeight+snapDistance, heightReduction)
	if !ok {
		return fraction
	}
	groundNormal, ok := m.Caster.IsGround(down, m.MaxStandableAngle)
	if !ok {
		return fraction
	}
	if omath.HorizontalLenSqr(lifted.Position.Sub(start), m.Up) <= omath.HorizontalLenSqr(m.Position.Sub(start), m.Up) {
		return fraction
	}
	m.Position = lifted.Position.Add(lifted.groundContactOffset(groundNormal))
	m.Velocity = lifted.Velocity
	return stepFraction
}

// SnapToGround moves the helper down onto ground found within snapDistance below it, so that it
// keeps contact with slopes and stairs while walking down them. It returns false without changing
// the helper if there is nothing to snap to.
func (m *MoveHelper) SnapToGround(feetLiftHeight, snapDistance, groundVelocityThreshold float32) bool {
	hit, ok := m.Caster.SweepTest(
		m.Position.Add(m.Up.Mul(feetLiftHeight)),
		m.Up.Mul(-1),
		feetLiftHeight+snapDistance,
		m.ContactOffsetDistance,
		feetLiftHeight,
	)
	if !ok || hit.Distance == 0 {
		return false
	}
	plane := PlaneFromHit(hit, hit.Normal)
	if m.Velocity.Sub(plane.Velocity).Dot(m.Up) > groundVelocityThreshold {
		return false
	}
	groundNormal, ok := m.Caster.IsGround(hit, m.MaxStandableAngle)
	if !ok {
		return false
	}
	displacement := m.Up.Mul(feetLiftHeight - hit.Distance).Add(m.groundContactOffset(groundNormal))
	if displacement.Len() <= snapTolerance {
		return false
	}
	target := m.Position.Add(displacement)
	if m.Caster.CheckOverlapping(target, m.ContactOffsetDistance, 0) {
		return false
	}
	m.Position = target
	m.Velocity = m.Velocity.Add(omath.Project(plane.Velocity.Sub(m.Velocity), m.Up))
	return true
}

// TryUnstuck pushes the helper out of any colliders it overlaps, one penetration at a time. It
// returns whether the helper ended up free and how many attempts were used.
func (m *MoveHelper) TryUnstuck(maxAttempts int) (bool, int) {
	if !m.Caster.CheckOverlapping(m.Position, m.ContactOffsetDistance, 0) {
		return true, 0
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		direction, distance, ok := m.Caster.FarthestPenetration(m.Position)
		if !ok {
			return true, attempt
		}
		m.Position = m.Position.Add(direction.Mul(distance))
		if !m.Caster.CheckOverlapping(m.Position, m.ContactOffsetDistance, 0) {
			return true, attempt
		}
	}
	return false, maxAttempts
}

// groundContactOffset returns the offset moving the helper away from ground with the normal passed
// by the contact offset distance, measured along the normal.
func (m *MoveHelper) groundContactOffset(normal mgl32.Vec3) mgl32.Vec3 {
	d := math32.Abs(m.Up.Dot(normal))
	if d <= minOffsetRatio {
		return mgl32.Vec3{}
	}
	return m.Up.Mul(m.ContactOffsetDistance / d)
}

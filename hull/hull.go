package hull

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/caster"
	"github.com/oomph-ac/momentum/game"
	"github.com/oomph-ac/momentum/kinematics"
	"github.com/oomph-ac/momentum/oerror"
	"github.com/oomph-ac/momentum/omath"
	"github.com/oomph-ac/momentum/world"
	"github.com/sirupsen/logrus"
)

// Hull moves a capsule collider registered in a World like a first person character: it walks,
// sprints, crouches, jumps and falls, sliding along walls, climbing steps and sticking to slopes.
//
// A Hull is not safe for concurrent use. Changes to the Width and Height of its Config take effect
// after calling InvalidateCollider.
type Hull struct {
	Config

	log     *logrus.Logger
	world   *world.World
	id      uint64
	probe   *caster.Capsule
	handler Handler
	enabled bool

	position      mgl32.Vec3
	velocity      mgl32.Vec3
	wishDirection mgl32.Vec3
	viewAngles    mgl32.Vec2
	sprintFactor  float32
	crouchFactor  float32

	groundPlane    kinematics.ClippingPlane
	groundCollider *world.Entry

	shouldJump bool
}

// New creates a Hull moving the collider with the id passed. The collider must be a world.Capsule
// aligned with the Y axis. If it is not, the error is returned along with a disabled Hull, which
// is enabled again by a successful call to InvalidateCollider.
func New(log *logrus.Logger, w *world.World, id uint64, conf Config) (*Hull, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Hull{
		Config:  conf.Sanitise(),
		log:     log,
		world:   w,
		id:      id,
		handler: NopHandler{},
	}
	return h, h.InvalidateCollider()
}

// InvalidateCollider rebuilds the probe of the hull from its collider and resizes it to the
// configured size. The hull is disabled if this fails.
func (h *Hull) InvalidateCollider() error {
	if err := h.invalidateCollider(); err != nil {
		h.enabled = false
		h.log.Errorf("hull %d disabled: %v", h.id, err)
		return err
	}
	h.enabled = true
	return nil
}

func (h *Hull) invalidateCollider() error {
	e, ok := h.world.Collider(h.id)
	if !ok {
		return oerror.Configuration(game.ErrorMissingCollider)
	}
	shape, ok := e.Collider.(world.Capsule)
	if !ok {
		return oerror.Configuration(game.ErrorUnsupportedCollider, e.Collider)
	}
	probe, err := caster.NewCapsule(h.world, h.id, shape, h.MaxHits)
	if err != nil {
		return err
	}
	if err := probe.Resize(h.Width, h.Height); err != nil {
		return err
	}
	h.probe = probe
	h.position = shape.Position
	h.SyncCollider()
	return nil
}

// Handle sets the handler of the hull. Passing nil resets it to NopHandler.
func (h *Hull) Handle(handler Handler) {
	if handler == nil {
		handler = NopHandler{}
	}
	h.handler = handler
}

// ID returns the identifier of the collider moved by the hull.
func (h *Hull) ID() uint64 {
	return h.id
}

// Enabled returns false if the last call to InvalidateCollider failed.
func (h *Hull) Enabled() bool {
	return h.enabled
}

// Probe returns the caster used by the hull, or nil if the hull was never enabled.
func (h *Hull) Probe() *caster.Capsule {
	return h.probe
}

// Up returns the up axis of the hull.
func (h *Hull) Up() mgl32.Vec3 {
	return caster.CapsuleDirection.Vec3()
}

// Jump makes the hull jump during the next tick, if it is standing on the ground by then.
func (h *Hull) Jump() {
	h.shouldJump = true
}

// Position returns the centre of the lowest point of the hull.
func (h *Hull) Position() mgl32.Vec3 {
	return h.position
}

// SetPosition teleports the hull.
func (h *Hull) SetPosition(pos mgl32.Vec3) {
	h.position = pos
	h.clearGroundState()
	h.SyncCollider()
}

// Velocity ...
func (h *Hull) Velocity() mgl32.Vec3 {
	return h.velocity
}

// SetVelocity ...
func (h *Hull) SetVelocity(vel mgl32.Vec3) {
	h.velocity = vel
}

// WishDirection returns the direction the hull wants to move in, relative to its yaw.
func (h *Hull) WishDirection() mgl32.Vec3 {
	return h.wishDirection
}

// SetWishDirection sets the direction the hull wants to move in, relative to its yaw, where
// (0, 0, 1) is forward. Directions longer than 1 are normalised.
func (h *Hull) SetWishDirection(dir mgl32.Vec3) {
	if dir.LenSqr() > 1 {
		dir = dir.Normalize()
	}
	h.wishDirection = dir
}

// ViewAngles returns the yaw and the pitch of the hull in degrees.
func (h *Hull) ViewAngles() mgl32.Vec2 {
	return h.viewAngles
}

// SetViewAngles sets the yaw and the pitch of the hull in degrees. The pitch is clamped to
// [-90, 90].
func (h *Hull) SetViewAngles(angles mgl32.Vec2) {
	angles[1] = omath.ClampFloat(angles[1], -90, 90)
	h.viewAngles = angles
}

// SprintFactor ...
func (h *Hull) SprintFactor() float32 {
	return h.sprintFactor
}

// SetSprintFactor blends the maximum ground speed between walking at 0 and sprinting at 1.
func (h *Hull) SetSprintFactor(f float32) {
	h.sprintFactor = omath.ClampFloat(f, 0, 1)
}

// CrouchFactor ...
func (h *Hull) CrouchFactor() float32 {
	return h.crouchFactor
}

// SetCrouchFactor blends the target height of the hull between standing at 0 and crouching at 1.
func (h *Hull) SetCrouchFactor(f float32) {
	h.crouchFactor = omath.ClampFloat(f, 0, 1)
}

// OnGround returns true if the hull is standing on the ground.
func (h *Hull) OnGround() bool {
	return h.groundCollider != nil
}

// GroundPlane returns the plane of the ground the hull stands on. It is the zero value while
// airborne.
func (h *Hull) GroundPlane() kinematics.ClippingPlane {
	return h.groundPlane
}

// GroundCollider returns the collider the hull stands on.
func (h *Hull) GroundCollider() (world.Entry, bool) {
	if h.groundCollider == nil {
		return world.Entry{}, false
	}
	return *h.groundCollider, true
}

// CrouchingRatio returns how far the hull is crouched, from 0 when standing to 1 when fully
// crouched.
func (h *Hull) CrouchingRatio() float32 {
	if h.probe == nil || h.Height <= h.CrouchHeight {
		return 0
	}
	return omath.ClampFloat((h.Height-h.probe.Height())/(h.Height-h.CrouchHeight), 0, 1)
}

// Crouching returns true if the hull is lower than its standing height.
func (h *Hull) Crouching() bool {
	return h.CrouchingRatio() > 0
}

// MoveRotation returns the rotation applied to the wish direction.
func (h *Hull) MoveRotation() mgl32.Quat {
	return mgl32.QuatRotate(mgl32.DegToRad(h.viewAngles[0]), h.Up())
}

// LookRotation returns the rotation of the view of the hull.
func (h *Hull) LookRotation() mgl32.Quat {
	return h.MoveRotation().Mul(mgl32.QuatRotate(mgl32.DegToRad(h.viewAngles[1]), mgl32.Vec3{1, 0, 0}))
}

// LookDirection returns the unit direction the hull looks in.
func (h *Hull) LookDirection() mgl32.Vec3 {
	return h.LookRotation().Rotate(mgl32.Vec3{0, 0, 1})
}

// TryUnstuck pushes the hull out of any colliders it overlaps. If this fails, velocity is reset
// so that the hull stays in place until a later attempt succeeds.
func (h *Hull) TryUnstuck() bool {
	if h.probe == nil {
		return false
	}
	m := h.moveHelper()
	ok, attempts := m.TryUnstuck(h.UnstuckMaxAttempts)
	h.position = m.Position
	if !ok {
		h.log.WithError(oerror.Stuck(game.ErrorStuck, attempts)).Warnf("hull %d is stuck", h.id)
		h.velocity = mgl32.Vec3{}
		return false
	}
	if attempts > 0 {
		h.log.Warnf("hull %d was stuck, unstuck succeeded in %d attempts", h.id, attempts)
	}
	h.velocity = m.Velocity
	return true
}

// Tick moves the hull by dt seconds and updates its collider in the world. The jump requested
// through Jump is consumed, whether the hull jumped or not.
func (h *Hull) Tick(dt float32) {
	h.Move(dt)
	if h.enabled && dt > 0 {
		h.SyncCollider()
	}
}

// Move moves the hull by dt seconds like Tick, but leaves its collider in the world where it was.
// Move only reads the world, so several hulls may move concurrently and all see each other at
// their positions from before the move. SyncCollider must be called afterwards.
func (h *Hull) Move(dt float32) {
	if h.enabled && dt > 0 {
		h.moveInDirection(h.MoveRotation().Rotate(h.wishDirection), dt)
	}
	h.shouldJump = false
}

func (h *Hull) moveInDirection(wishDirection mgl32.Vec3, dt float32) {
	h.updateHeight()
	if !h.TryUnstuck() {
		return
	}
	// Ground found by the first probe counts as landing too, so the velocity the hull arrived
	// with is kept until it is known whether that probe grounded it.
	wasOnGround, impactVelocity := h.OnGround(), h.velocity
	h.updateGroundState()

	up := h.Up()
	if h.UseGravity {
		h.velocity = h.velocity.Add(up.Mul(h.Gravity * dt))
	}
	if h.OnGround() {
		h.velocity = h.groundPlane.WithNormal(up).ClipVelocity(h.velocity, 1)
		h.moveOnGround(wishDirection, h.groundSpeed(), dt)
	} else {
		impactVelocity = h.velocity
		h.moveInAir(wishDirection, h.AirSpeed, dt)
	}
	h.updateGroundState()

	if !wasOnGround && h.OnGround() {
		speed := math32.Max(h.groundPlane.Velocity.Sub(impactVelocity).Dot(up), 0)
		h.log.Debugf("hull %d landed at %.3f m/s", h.id, speed)
		h.handler.HandleLand(speed)
	}
}

// updateHeight moves the height of the probe towards the height set by the crouch factor. Growing
// is only possible if nothing is in the way.
func (h *Hull) updateHeight() {
	target := omath.Lerp(h.Height, h.CrouchHeight, h.crouchFactor)
	current := h.probe.Height()
	if target <= current {
		h.probe.SetHeight(target)
		return
	}
	hit, ok := h.probe.SweepTest(h.position, h.Up(), target-current, h.ContactOffsetDistance, 0)
	if !ok {
		h.probe.SetHeight(target)
		return
	}
	if h.AutoCrouch {
		h.probe.SetHeight(current + math32.Max(hit.Distance-h.ContactOffsetDistance, 0))
	}
}

// updateGroundState looks for ground just below the feet of the hull. Ground found is only stood
// on if the hull is not moving away from it faster than GroundVelocityThreshold.
func (h *Hull) updateGroundState() {
	up := h.Up()
	hit, ok := h.probe.SweepTest(
		h.position.Add(up.Mul(h.FeetLiftHeight)),
		up.Mul(-1),
		h.FeetLiftHeight+h.LandingSnapDistance,
		h.ContactOffsetDistance,
		h.FeetLiftHeight,
	)
	if !ok {
		h.clearGroundState()
		return
	}
	normal, ok := h.probe.IsGround(hit, h.MaxStandableAngle)
	if !ok {
		h.clearGroundState()
		return
	}
	plane := kinematics.PlaneFromHit(hit, normal)
	closing := h.velocity.Sub(plane.Velocity).Dot(plane.Normal)
	if closing > h.GroundVelocityThreshold {
		h.clearGroundState()
		return
	}
	ground := hit.Collider
	h.groundPlane, h.groundCollider = plane, &ground
	if closing <= 0 {
		h.position = h.position.Add(up.Mul(h.FeetLiftHeight - hit.Distance + h.ContactOffsetDistance))
	}
	h.velocity = plane.WithNormal(up).ClipVelocity(h.velocity, 1)
}

func (h *Hull) clearGroundState() {
	h.groundPlane, h.groundCollider = kinematics.ClippingPlane{}, nil
}

// groundSpeed returns the speed profile used on the ground, blended by the sprint factor and how
// far the hull is crouched.
func (h *Hull) groundSpeed() Speed {
	speed := h.WalkSpeed
	speed.MaxSpeed = omath.Lerp(h.WalkSpeed.MaxSpeed, h.SprintSpeed, h.sprintFactor)
	speed.MaxSpeed = omath.Lerp(speed.MaxSpeed, h.CrouchSpeed, h.CrouchingRatio())
	return speed
}

func (h *Hull) moveOnGround(wishDirection mgl32.Vec3, speed Speed, dt float32) {
	h.applyFriction(h.groundPlane.Velocity, speed.Friction, dt)
	if !omath.IsZero(wishDirection) && speed.MaxSpeed != 0 {
		h.accelerate(wishDirection, h.groundPlane.Velocity, speed.MaxSpeed, speed.Acceleration, dt)
	}
	if h.shouldJump && h.JumpVelocity > 0 {
		h.clearGroundState()
		h.velocity = h.velocity.Add(h.Up().Mul(h.JumpVelocity))
		h.log.Debugf("hull %d jumped", h.id)
		h.handler.HandleJump()
		h.moveInAir(wishDirection, h.AirSpeed, dt)
		return
	}
	h.movePosition(true, true, dt)
}

func (h *Hull) moveInAir(wishDirection mgl32.Vec3, speed Speed, dt float32) {
	h.applyFriction(mgl32.Vec3{}, speed.Friction, dt)
	if !omath.IsZero(wishDirection) && speed.MaxSpeed != 0 {
		h.accelerate(wishDirection, mgl32.Vec3{}, speed.MaxSpeed, speed.Acceleration, dt)
	}
	h.movePosition(false, h.LiftFeetInAir, dt)
}

// accelerate adds speed towards the wish direction without exceeding maxSpeed relative to the
// contact velocity passed.
func (h *Hull) accelerate(wishDirection, contactVelocity mgl32.Vec3, maxSpeed, acceleration, dt float32) {
	relative := h.velocity.Sub(contactVelocity)
	currentSpeed := relative.Dot(wishDirection)
	// Velocity not along the wish direction still counts towards the cap, which keeps strafing
	// from exceeding it.
	if currentSpeed > 0 {
		currentSpeed = omath.Lerp(relative.Len(), currentSpeed, h.IndirectAccelerationRatio)
	}
	extraSpeed := math32.Min(acceleration*dt, maxSpeed-currentSpeed)
	h.velocity = h.velocity.Add(wishDirection.Mul(math32.Max(extraSpeed, 0)))
}

// applyFriction removes up to friction*dt of the velocity relative to the contact velocity passed.
func (h *Hull) applyFriction(contactVelocity mgl32.Vec3, friction, dt float32) {
	frictionVelocity := h.velocity.Sub(contactVelocity)
	frictionSpeed := friction * dt
	if frictionVelocity.LenSqr() > frictionSpeed*frictionSpeed {
		frictionVelocity = frictionVelocity.Normalize().Mul(frictionSpeed)
	}
	h.velocity = h.velocity.Sub(frictionVelocity)
}

func (h *Hull) movePosition(standingOnGround, allowFeetLift bool, dt float32) {
	if h.velocity == (mgl32.Vec3{}) {
		return
	}
	m := h.moveHelper()
	if allowFeetLift && h.FeetLiftHeight > 0 {
		m.TryMoveWithFeetLift(standingOnGround, h.FeetLiftHeight, h.LandingSnapDistance, dt, 0, h.MaxClipPlanes)
	} else {
		m.TryMove(standingOnGround, dt, 0, h.MaxClipPlanes)
	}
	if standingOnGround {
		m.SnapToGround(h.FeetLiftHeight, h.GroundSnapDistance, h.GroundVelocityThreshold)
	}
	h.position, h.velocity = m.Position, m.Velocity
	h.TryUnstuck()
}

func (h *Hull) moveHelper() kinematics.MoveHelper {
	m := kinematics.NewMoveHelper(h.position, h.velocity, h.Up(), h.probe)
	m.MaxStandableAngle = h.MaxStandableAngle
	m.ContactOffsetDistance = h.ContactOffsetDistance
	m.GroundBounce = h.GroundBounce
	m.WallBounce = h.WallBounce
	return m
}

// SyncCollider moves the collider of the hull in the world to the probe, so that other hulls
// collide with it.
func (h *Hull) SyncCollider() {
	if h.probe == nil {
		return
	}
	if err := h.world.Set(h.id, h.probe.Shape(h.position)); err != nil {
		h.log.Errorf("hull %d failed syncing collider: %v", h.id, err)
	}
}

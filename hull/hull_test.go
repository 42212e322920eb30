package hull

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/momentum/kinematics"
	"github.com/oomph-ac/momentum/oerror"
	"github.com/oomph-ac/momentum/world"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

const tickDelta = float32(0.05)

type recordingHandler struct {
	jumps int
	lands []float32
}

func (r *recordingHandler) HandleJump() {
	r.jumps++
}

func (r *recordingHandler) HandleLand(speed float32) {
	r.lands = append(r.lands, speed)
}

func approxEq(a, b, epsilon float32) bool {
	return math32.Abs(a-b) <= epsilon
}

func vecApproxEq(a, b mgl32.Vec3, epsilon float32) bool {
	return a.Sub(b).Len() <= epsilon
}

func floor() world.Plane {
	return world.NewPlane(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{})
}

// newTestWorld returns a world holding the colliders passed, and a logger recording its entries.
func newTestWorld(t *testing.T, colliders ...world.Collider) (*world.World, *logrus.Logger, *test.Hook) {
	t.Helper()

	log, hook := test.NewNullLogger()
	w := world.New(log)
	for i, c := range colliders {
		if _, err := w.Add(string(rune('a'+i)), c); err != nil {
			t.Fatalf("failed adding collider: %v", err)
		}
	}
	return w, log, hook
}

// addHull registers a standing capsule at the position passed and creates a hull moving it.
func addHull(t *testing.T, w *world.World, log *logrus.Logger, name string, pos mgl32.Vec3, conf Config) *Hull {
	t.Helper()

	id, err := w.Add(name, world.Capsule{Position: pos, Radius: 0.3, Height: 1.8, Direction: world.AxisY})
	if err != nil {
		t.Fatalf("failed adding hull collider: %v", err)
	}
	h, err := New(log, w, id, conf)
	if err != nil {
		t.Fatalf("failed creating hull: %v", err)
	}
	return h
}

func TestNewMissingCollider(t *testing.T) {
	w, log, _ := newTestWorld(t)
	h, err := New(log, w, world.ID("nothing"), DefaultConfig())
	if !oerror.IsKind(err, oerror.KindConfiguration) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
	if h.Enabled() {
		t.Fatalf("expected the hull to be disabled")
	}
	h.SetVelocity(mgl32.Vec3{1, 0, 0})
	h.Jump()
	h.Tick(tickDelta)
	if h.Position() != (mgl32.Vec3{}) {
		t.Fatalf("expected a disabled hull not to move, got %v", h.Position())
	}
}

func TestInvalidateCollider(t *testing.T) {
	w, log, hook := newTestWorld(t)
	id, _ := w.Add("hull", world.NewBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}))

	h, err := New(log, w, id, DefaultConfig())
	if !oerror.IsKind(err, oerror.KindConfiguration) || h.Enabled() {
		t.Fatalf("expected a box collider to be unsupported, got %v", err)
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected the hull being disabled to be logged")
	}

	w.Set(id, world.Capsule{Radius: 0.3, Height: 1.8, Direction: world.AxisX})
	if err := h.InvalidateCollider(); !oerror.IsKind(err, oerror.KindConfiguration) || h.Enabled() {
		t.Fatalf("expected a sideways capsule to be unsupported, got %v", err)
	}

	w.Set(id, world.Capsule{Position: mgl32.Vec3{0, 2, 0}, Radius: 0.5, Height: 1, Direction: world.AxisY})
	if err := h.InvalidateCollider(); err != nil || !h.Enabled() {
		t.Fatalf("expected an upright capsule to be supported, got %v", err)
	}
	if h.Position() != (mgl32.Vec3{0, 2, 0}) {
		t.Fatalf("expected the hull to start at the collider, got %v", h.Position())
	}
	e, _ := w.Collider(id)
	if c := e.Collider.(world.Capsule); c.Radius != 0.3 || c.Height != 1.8 {
		t.Fatalf("expected the collider to be resized to the configured size, got %+v", c)
	}
}

func TestStandStill(t *testing.T) {
	w, log, _ := newTestWorld(t, floor())
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, DefaultConfig())

	for i := 0; i < 20; i++ {
		h.Tick(tickDelta)
	}
	if !h.OnGround() {
		t.Fatalf("expected the hull to stand on the floor")
	}
	if !vecApproxEq(h.Position(), mgl32.Vec3{}, 1e-4) || h.Velocity() != (mgl32.Vec3{}) {
		t.Fatalf("expected the hull not to move, got %v moving at %v", h.Position(), h.Velocity())
	}
	if ground, ok := h.GroundCollider(); !ok || ground.ID != world.ID("a") {
		t.Fatalf("expected the floor to be the ground collider, got %+v", ground)
	}
}

func TestSlopeGroundState(t *testing.T) {
	tests := []struct {
		angle  float32
		ground bool
	}{
		{angle: 30, ground: true},
		{angle: 50, ground: false},
	}
	for _, tt := range tests {
		rad := mgl32.DegToRad(tt.angle)
		normal := mgl32.Vec3{-math32.Sin(rad), math32.Cos(rad), 0}
		w, log, _ := newTestWorld(t, world.NewPlane(normal, mgl32.Vec3{}))

		// Resting just above the slope.
		pos := mgl32.Vec3{0, 0.3/math32.Cos(rad) - 0.3 + 0.01, 0}
		h := addHull(t, w, log, "hull", pos, DefaultConfig())
		h.Tick(tickDelta)

		if h.OnGround() != tt.ground {
			t.Fatalf("expected ground to be %v on a %v degree slope", tt.ground, tt.angle)
		}
		if tt.ground && !vecApproxEq(h.GroundPlane().Normal, normal, 1e-3) {
			t.Fatalf("expected the ground plane to match the slope, got %v", h.GroundPlane().Normal)
		}
		if !tt.ground && h.GroundPlane() != (kinematics.ClippingPlane{}) {
			t.Fatalf("expected no ground plane while airborne, got %+v", h.GroundPlane())
		}
	}
}

func TestWalkIntoWall(t *testing.T) {
	wall := world.NewPlane(mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 0, 0.35})
	w, log, _ := newTestWorld(t, floor(), wall)
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, DefaultConfig())

	h.SetVelocity(mgl32.Vec3{2, 0, 4})
	h.SetWishDirection(mgl32.Vec3{0, 0, 1})
	h.Tick(tickDelta)

	vel := h.Velocity()
	if math32.Abs(vel.Z()) > 1e-3 {
		t.Fatalf("expected no velocity into the wall, got %v", vel)
	}
	// Friction takes 0.6 m/s off the 4.47 m/s the hull started with.
	if !approxEq(vel.X(), 2*(1-0.6/math32.Sqrt(20)), 1e-2) {
		t.Fatalf("expected velocity along the wall to be kept, got %v", vel)
	}
	if h.Position().Z() > 0.05+1e-3 {
		t.Fatalf("expected the hull to stop at the wall, got %v", h.Position())
	}
	if !h.OnGround() {
		t.Fatalf("expected the hull to stay on the ground")
	}
}

func TestJumpAndLand(t *testing.T) {
	w, log, _ := newTestWorld(t, floor())
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, DefaultConfig())
	handler := &recordingHandler{}
	h.Handle(handler)

	h.Jump()
	h.Tick(tickDelta)
	if handler.jumps != 1 {
		t.Fatalf("expected a jump, got %d", handler.jumps)
	}
	if h.OnGround() {
		t.Fatalf("expected the hull to leave the ground")
	}
	if !approxEq(h.Velocity().Y(), ComputeJumpVelocity(1.05, -9.81), 1e-4) {
		t.Fatalf("expected the jump velocity to be added, got %v", h.Velocity())
	}

	for i := 0; i < 60 && !h.OnGround(); i++ {
		h.Tick(tickDelta)
	}
	if !h.OnGround() {
		t.Fatalf("expected the hull to land")
	}
	if len(handler.lands) != 1 || handler.lands[0] < 3 {
		t.Fatalf("expected a single landing at jump speed, got %v", handler.lands)
	}
	if handler.jumps != 1 {
		t.Fatalf("expected the jump request to be consumed, got %d jumps", handler.jumps)
	}
	if !approxEq(h.Position().Y(), 0, 1e-3) {
		t.Fatalf("expected the hull to rest on the floor, got %v", h.Position())
	}
}

func TestLandOnRisingGround(t *testing.T) {
	w, log, _ := newTestWorld(t, floor())
	conf := DefaultConfig()
	conf.UseGravity = false
	h := addHull(t, w, log, "hull", mgl32.Vec3{0, 0.5, 0}, conf)
	handler := &recordingHandler{}
	h.Handle(handler)

	h.Tick(tickDelta)
	if h.OnGround() {
		t.Fatalf("expected the hull to hover above the floor")
	}

	// The floor moves up to just below the feet of the hull.
	if err := w.Set(world.ID("a"), world.NewPlane(mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0.49, 0})); err != nil {
		t.Fatalf("failed moving the floor: %v", err)
	}
	h.SetVelocity(mgl32.Vec3{0, -1, 0})
	h.Tick(tickDelta)
	if !h.OnGround() {
		t.Fatalf("expected the hull to stand on the raised floor, got %v", h.Position())
	}
	if len(handler.lands) != 1 || !approxEq(handler.lands[0], 1, 1e-4) {
		t.Fatalf("expected a single landing at 1 m/s, got %v", handler.lands)
	}

	h.Tick(tickDelta)
	if len(handler.lands) != 1 {
		t.Fatalf("expected no landing while staying on the ground, got %v", handler.lands)
	}
}

func TestMoveDefersColliderSync(t *testing.T) {
	w, log, _ := newTestWorld(t, floor())
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, DefaultConfig())
	h.SetWishDirection(mgl32.Vec3{0, 0, 1})

	h.Move(tickDelta)
	e, _ := w.Collider(h.ID())
	if pos := e.Collider.(world.Capsule).Position; pos != (mgl32.Vec3{}) {
		t.Fatalf("expected the collider to stay in place until synced, got %v", pos)
	}
	if h.Position().Z() <= 0 {
		t.Fatalf("expected the hull to move, got %v", h.Position())
	}

	h.SyncCollider()
	e, _ = w.Collider(h.ID())
	if pos := e.Collider.(world.Capsule).Position; pos != h.Position() {
		t.Fatalf("expected the collider at %v, got %v", h.Position(), pos)
	}
}

func TestJumpRequestConsumedInAir(t *testing.T) {
	w, log, _ := newTestWorld(t)
	h := addHull(t, w, log, "hull", mgl32.Vec3{0, 10, 0}, DefaultConfig())
	handler := &recordingHandler{}
	h.Handle(handler)

	h.Jump()
	h.Tick(tickDelta)
	h.Tick(tickDelta)
	if handler.jumps != 0 {
		t.Fatalf("expected no jump in the air")
	}
	if h.Velocity().Y() >= 0 {
		t.Fatalf("expected the hull to fall, got %v", h.Velocity())
	}
}

func TestClimbStep(t *testing.T) {
	step := world.NewBox(mgl32.Vec3{-2, -1, 0.5}, mgl32.Vec3{2, 0.2, 20})
	w, log, _ := newTestWorld(t, floor(), step)
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, DefaultConfig())

	h.SetWishDirection(mgl32.Vec3{0, 0, 1})
	for i := 0; i < 20; i++ {
		h.Tick(tickDelta)
	}
	if h.Position().Z() < 1 {
		t.Fatalf("expected the hull to walk onto the step, got %v", h.Position())
	}
	if !approxEq(h.Position().Y(), 0.2, 1e-2) || !h.OnGround() {
		t.Fatalf("expected the hull to stand on the step, got %v", h.Position())
	}
}

func TestHullsCollide(t *testing.T) {
	w, log, _ := newTestWorld(t, floor())
	walker := addHull(t, w, log, "walker", mgl32.Vec3{}, DefaultConfig())
	addHull(t, w, log, "obstacle", mgl32.Vec3{0, 0, 1}, DefaultConfig())

	walker.SetWishDirection(mgl32.Vec3{0, 0, 1})
	for i := 0; i < 20; i++ {
		walker.Tick(tickDelta)
	}
	if z := walker.Position().Z(); z > 0.4+1e-2 {
		t.Fatalf("expected the walker to be blocked by the other hull, got z = %v", z)
	}
}

func TestYawRotatesWishDirection(t *testing.T) {
	w, log, _ := newTestWorld(t, floor())
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, DefaultConfig())

	h.SetViewAngles(mgl32.Vec2{90, 0})
	h.SetWishDirection(mgl32.Vec3{0, 0, 1})
	for i := 0; i < 10; i++ {
		h.Tick(tickDelta)
	}
	if pos := h.Position(); pos.X() < 0.5 || math32.Abs(pos.Z()) > 1e-3 {
		t.Fatalf("expected the hull to walk along +X, got %v", pos)
	}
}

func TestCrouch(t *testing.T) {
	ceiling := world.NewBox(mgl32.Vec3{-2, 1.5, -2}, mgl32.Vec3{2, 3, 2})
	w, log, _ := newTestWorld(t, floor(), ceiling)
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, DefaultConfig())

	// The hull starts overlapping the ceiling, so crouch first.
	h.SetCrouchFactor(1)
	h.Tick(tickDelta)
	if h.Probe().Height() != 1.2 || !h.Crouching() || h.CrouchingRatio() != 1 {
		t.Fatalf("expected the hull to be fully crouched, got a height of %v", h.Probe().Height())
	}
	e, _ := w.Collider(h.ID())
	if e.Collider.(world.Capsule).Height != 1.2 {
		t.Fatalf("expected the collider of the hull to be crouched too")
	}

	h.SetCrouchFactor(0)
	h.Tick(tickDelta)
	if h.Probe().Height() != 1.2 {
		t.Fatalf("expected the ceiling to keep the hull crouched, got a height of %v", h.Probe().Height())
	}

	h.AutoCrouch = true
	h.Tick(tickDelta)
	if !approxEq(h.Probe().Height(), 1.5, 1e-3) || !approxEq(h.CrouchingRatio(), 0.5, 1e-2) {
		t.Fatalf("expected the hull to rise up to the ceiling, got a height of %v", h.Probe().Height())
	}
}

func TestUnstuck(t *testing.T) {
	ground := world.NewBox(mgl32.Vec3{-5, -1, -5}, mgl32.Vec3{5, 0, 5})
	w, log, hook := newTestWorld(t, ground)
	h := addHull(t, w, log, "hull", mgl32.Vec3{0, -0.1, 0}, DefaultConfig())

	h.Tick(tickDelta)
	if h.Position().Y() < -1e-3 || !h.OnGround() {
		t.Fatalf("expected the hull to be pushed onto the ground, got %v", h.Position())
	}
	var warned bool
	for _, entry := range hook.AllEntries() {
		warned = warned || entry.Level == logrus.WarnLevel
	}
	if !warned {
		t.Fatalf("expected being stuck to be logged")
	}
}

func TestStuckFreezesVelocity(t *testing.T) {
	// A cage narrower than the capsule.
	w, log, hook := newTestWorld(t,
		world.NewBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 0.25, 1}),
		world.NewBox(mgl32.Vec3{-1, 1.55, -1}, mgl32.Vec3{1, 3, 1}),
		world.NewBox(mgl32.Vec3{0.2, -1, -1}, mgl32.Vec3{2, 3, 1}),
		world.NewBox(mgl32.Vec3{-2, -1, -1}, mgl32.Vec3{-0.2, 3, 1}),
		world.NewBox(mgl32.Vec3{-2, -1, 0.2}, mgl32.Vec3{2, 3, 2}),
		world.NewBox(mgl32.Vec3{-2, -1, -2}, mgl32.Vec3{2, 3, -0.2}),
	)
	conf := DefaultConfig()
	conf.UnstuckMaxAttempts = 3
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, conf)

	h.SetVelocity(mgl32.Vec3{1, 0, 0})
	h.Tick(tickDelta)
	if h.Velocity() != (mgl32.Vec3{}) {
		t.Fatalf("expected a stuck hull to stop, got %v", h.Velocity())
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning to be logged")
	}
	if err, _ := entry.Data[logrus.ErrorKey].(error); !oerror.IsKind(err, oerror.KindTransientStuck) {
		t.Fatalf("expected a stuck error to be attached, got %v", entry.Data)
	}
	if !h.Enabled() {
		t.Fatalf("expected being stuck not to disable the hull")
	}
}

func TestAccelerate(t *testing.T) {
	h := &Hull{Config: DefaultConfig()}
	forward := mgl32.Vec3{0, 0, 1}

	h.accelerate(forward, mgl32.Vec3{}, 4, 50, tickDelta)
	h.accelerate(forward, mgl32.Vec3{}, 4, 50, tickDelta)
	if !vecApproxEq(h.velocity, mgl32.Vec3{0, 0, 4}, 1e-5) {
		t.Fatalf("expected to accelerate up to the cap, got %v", h.velocity)
	}

	tests := []struct {
		ratio    float32
		expected float32
	}{
		// The sideways speed counts towards the cap.
		{ratio: 0, expected: 2.5 + (4 - math32.Sqrt(3*3+2.5*2.5))},
		// Only the speed along the wish direction counts.
		{ratio: 1, expected: 4},
	}
	for _, tt := range tests {
		h.IndirectAccelerationRatio = tt.ratio
		h.velocity = mgl32.Vec3{3, 0, 0}
		h.accelerate(forward, mgl32.Vec3{}, 4, 50, tickDelta)
		h.accelerate(forward, mgl32.Vec3{}, 4, 50, tickDelta)
		if !approxEq(h.velocity.Z(), tt.expected, 1e-4) || h.velocity.X() != 3 {
			t.Fatalf("ratio %v: expected a forward speed of %v, got %v", tt.ratio, tt.expected, h.velocity)
		}
	}
}

func TestApplyFriction(t *testing.T) {
	h := &Hull{Config: DefaultConfig(), velocity: mgl32.Vec3{1, 0, 0}}
	h.applyFriction(mgl32.Vec3{}, 12, tickDelta)
	if !vecApproxEq(h.velocity, mgl32.Vec3{0.4, 0, 0}, 1e-5) {
		t.Fatalf("expected 0.6 m/s to be taken off, got %v", h.velocity)
	}
	h.applyFriction(mgl32.Vec3{}, 12, tickDelta)
	if h.velocity != (mgl32.Vec3{}) {
		t.Fatalf("expected friction to stop the hull without reversing it, got %v", h.velocity)
	}

	h.velocity = mgl32.Vec3{1, 0, 0}
	h.applyFriction(mgl32.Vec3{1, 0, 0}, 12, tickDelta)
	if h.velocity != (mgl32.Vec3{1, 0, 0}) {
		t.Fatalf("expected no friction relative to a surface moving along, got %v", h.velocity)
	}
}

func TestGroundSpeed(t *testing.T) {
	w, log, _ := newTestWorld(t, floor())
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, DefaultConfig())

	if h.groundSpeed().MaxSpeed != 4 {
		t.Fatalf("expected to walk at 4 m/s, got %v", h.groundSpeed().MaxSpeed)
	}
	h.SetSprintFactor(2)
	if h.SprintFactor() != 1 || h.groundSpeed().MaxSpeed != 6 {
		t.Fatalf("expected to sprint at 6 m/s, got %v", h.groundSpeed().MaxSpeed)
	}
	h.Probe().SetHeight(h.CrouchHeight)
	if h.groundSpeed().MaxSpeed != 2 {
		t.Fatalf("expected to crouch at 2 m/s, got %v", h.groundSpeed().MaxSpeed)
	}
}

func TestViewAngles(t *testing.T) {
	w, log, _ := newTestWorld(t, floor())
	h := addHull(t, w, log, "hull", mgl32.Vec3{}, DefaultConfig())

	if !vecApproxEq(h.LookDirection(), mgl32.Vec3{0, 0, 1}, 1e-6) {
		t.Fatalf("expected to look along +Z, got %v", h.LookDirection())
	}
	h.SetViewAngles(mgl32.Vec2{90, 0})
	if !vecApproxEq(h.LookDirection(), mgl32.Vec3{1, 0, 0}, 1e-6) {
		t.Fatalf("expected to look along +X, got %v", h.LookDirection())
	}
	h.SetViewAngles(mgl32.Vec2{0, 120})
	if h.ViewAngles()[1] != 90 || !vecApproxEq(h.LookDirection(), mgl32.Vec3{0, -1, 0}, 1e-6) {
		t.Fatalf("expected the pitch to be clamped to look straight down, got %v", h.LookDirection())
	}
	h.SetWishDirection(mgl32.Vec3{3, 0, 4})
	if !vecApproxEq(h.WishDirection(), mgl32.Vec3{0.6, 0, 0.8}, 1e-6) {
		t.Fatalf("expected the wish direction to be normalised, got %v", h.WishDirection())
	}
}

func TestSanitise(t *testing.T) {
	conf := DefaultConfig()
	conf.MaxStandableAngle = 120
	conf.IndirectAccelerationRatio = -1
	conf.CrouchHeight = 5
	conf.MaxClipPlanes = 0
	conf.WalkSpeed.Friction = -3

	conf = conf.Sanitise()
	if conf.MaxStandableAngle != 90 || conf.IndirectAccelerationRatio != 0 || conf.CrouchHeight != conf.Height {
		t.Fatalf("expected ranges to be clamped, got %+v", conf)
	}
	if conf.MaxClipPlanes != 5 || conf.WalkSpeed.Friction != 0 {
		t.Fatalf("expected invalid values to be reset, got %+v", conf)
	}
}

func TestComputeJumpVelocity(t *testing.T) {
	if v := ComputeJumpVelocity(1.05, -9.81); !approxEq(v, 4.5388, 1e-3) {
		t.Fatalf("expected a jump velocity of 4.5388, got %v", v)
	}
	if ComputeJumpVelocity(1, 9.81) != ComputeJumpVelocity(1, -9.81) {
		t.Fatalf("expected the sign of gravity to be ignored")
	}
}

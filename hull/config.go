package hull

import (
	"github.com/chewxy/math32"
	"github.com/oomph-ac/momentum/game"
	"github.com/oomph-ac/momentum/omath"
)

// Config holds the tunables of a Hull. The zero value is not usable: start from DefaultConfig.
type Config struct {
	// Width and Height are the size of the capsule while standing.
	Width  float32
	Height float32
	// CrouchHeight is the height of the capsule while fully crouched.
	CrouchHeight float32
	// AutoCrouch clamps the height to the headroom available when standing up is blocked, instead
	// of staying at the current height.
	AutoCrouch bool

	// MaxStandableAngle is the steepest slope, in degrees, that counts as ground.
	MaxStandableAngle float32
	// IndirectAccelerationRatio controls how much velocity that does not point along the wish
	// direction counts towards the speed cap. 0 counts all of it, 1 none of it.
	IndirectAccelerationRatio float32
	// FeetLiftHeight is the highest step the hull climbs without jumping.
	FeetLiftHeight float32
	// LiftFeetInAir allows climbing steps while airborne.
	LiftFeetInAir bool
	// GroundSnapDistance is how far below the feet ground is looked for to stick to slopes and stairs.
	GroundSnapDistance float32
	// LandingSnapDistance is how far below the feet ground is looked for to land on it.
	LandingSnapDistance float32
	// ContactOffsetDistance is the gap kept between the capsule and the surfaces it touches.
	ContactOffsetDistance float32
	// GroundVelocityThreshold is the speed away from the ground above which the hull leaves it.
	GroundVelocityThreshold float32
	// UnstuckMaxAttempts is the amount of penetrations resolved per tick before giving up.
	UnstuckMaxAttempts int
	// MaxClipPlanes is the amount of surfaces velocity is clipped against per move.
	MaxClipPlanes int
	// MaxHits is the amount of contacts collected per sweep.
	MaxHits int

	// UseGravity enables gravity, which accelerates the hull by Gravity along its up axis.
	UseGravity bool
	Gravity    float32

	WalkSpeed   Speed
	AirSpeed    Speed
	SprintSpeed float32
	CrouchSpeed float32

	// JumpVelocity is the speed added along the up axis when jumping.
	JumpVelocity float32
	GroundBounce float32
	WallBounce   float32
}

// DefaultConfig returns the default configuration of a Hull.
func DefaultConfig() Config {
	return Config{
		Width:                     game.DefaultWidth,
		Height:                    game.DefaultHeight,
		CrouchHeight:              game.DefaultCrouchHeight,
		MaxStandableAngle:         game.DefaultMaxStandableAngle,
		IndirectAccelerationRatio: game.DefaultIndirectAccelerationRatio,
		FeetLiftHeight:            game.DefaultFeetLiftHeight,
		GroundSnapDistance:        game.DefaultGroundSnapDistance,
		LandingSnapDistance:       game.DefaultLandingSnapDistance,
		ContactOffsetDistance:     game.DefaultContactOffsetDistance,
		GroundVelocityThreshold:   game.DefaultGroundVelocityThreshold,
		UnstuckMaxAttempts:        game.DefaultMaxUnstuckAttempts,
		MaxClipPlanes:             game.DefaultMaxClipPlanes,
		MaxHits:                   game.DefaultMaxHits,
		UseGravity:                true,
		Gravity:                   game.DefaultGravity,
		WalkSpeed: Speed{
			MaxSpeed:     game.DefaultWalkSpeed,
			Acceleration: game.DefaultWalkAcceleration,
			Friction:     game.DefaultWalkFriction,
		},
		AirSpeed: Speed{
			MaxSpeed:     game.DefaultAirSpeed,
			Acceleration: game.DefaultAirAcceleration,
			Friction:     game.DefaultAirFriction,
		},
		SprintSpeed:  game.DefaultSprintSpeed,
		CrouchSpeed:  game.DefaultCrouchSpeed,
		JumpVelocity: ComputeJumpVelocity(game.DefaultJumpHeight, game.DefaultGravity),
		GroundBounce: game.DefaultBounce,
		WallBounce:   game.DefaultBounce,
	}
}

// Sanitise clamps every field of the configuration to its valid range.
func (c Config) Sanitise() Config {
	c.Width = math32.Max(c.Width, 0)
	c.Height = math32.Max(c.Height, c.Width)
	c.CrouchHeight = omath.ClampFloat(c.CrouchHeight, c.Width, c.Height)
	c.MaxStandableAngle = omath.ClampFloat(c.MaxStandableAngle, 0, 90)
	c.IndirectAccelerationRatio = omath.ClampFloat(c.IndirectAccelerationRatio, 0, 1)
	c.FeetLiftHeight = math32.Max(c.FeetLiftHeight, 0)
	c.GroundSnapDistance = math32.Max(c.GroundSnapDistance, 0)
	c.LandingSnapDistance = math32.Max(c.LandingSnapDistance, 0)
	c.ContactOffsetDistance = omath.ClampFloat(c.ContactOffsetDistance, 0, c.Width*0.5)
	c.GroundVelocityThreshold = math32.Max(c.GroundVelocityThreshold, 0)
	c.UnstuckMaxAttempts = max(c.UnstuckMaxAttempts, 0)
	if c.MaxClipPlanes <= 0 {
		c.MaxClipPlanes = game.DefaultMaxClipPlanes
	}
	if c.MaxHits <= 0 {
		c.MaxHits = game.DefaultMaxHits
	}
	c.WalkSpeed = c.WalkSpeed.sanitise()
	c.AirSpeed = c.AirSpeed.sanitise()
	c.SprintSpeed = math32.Max(c.SprintSpeed, 0)
	c.CrouchSpeed = math32.Max(c.CrouchSpeed, 0)
	c.JumpVelocity = math32.Max(c.JumpVelocity, 0)
	c.GroundBounce = math32.Max(c.GroundBounce, 0)
	c.WallBounce = math32.Max(c.WallBounce, 0)
	return c
}

func (s Speed) sanitise() Speed {
	return Speed{
		MaxSpeed:     math32.Max(s.MaxSpeed, 0),
		Acceleration: math32.Max(s.Acceleration, 0),
		Friction:     math32.Max(s.Friction, 0),
	}
}

// ComputeJumpVelocity returns the speed needed to jump jumpHeight high against the gravity passed.
func ComputeJumpVelocity(jumpHeight, gravity float32) float32 {
	return math32.Sqrt(math32.Abs(2 * gravity * jumpHeight))
}

package game

// Probe and movement defaults, in metres, seconds and degrees.
const (
	DefaultWidth        = float32(0.6)
	DefaultHeight       = float32(1.8)
	DefaultCrouchHeight = float32(1.2)

	DefaultMaxStandableAngle         = float32(45)
	DefaultIndirectAccelerationRatio = float32(0)
	DefaultFeetLiftHeight            = float32(0.3)
	DefaultGroundSnapDistance        = float32(0.325)
	DefaultLandingSnapDistance       = float32(0.025)
	DefaultContactOffsetDistance     = float32(0.003)
	DefaultGroundVelocityThreshold   = float32(0.1)
	DefaultBounce                    = float32(0)

	DefaultWalkSpeed        = float32(4)
	DefaultWalkAcceleration = float32(50)
	DefaultWalkFriction     = float32(12)
	DefaultSprintSpeed      = float32(6)
	DefaultCrouchSpeed      = float32(2)

	DefaultAirSpeed        = float32(0.5)
	DefaultAirAcceleration = float32(5)
	DefaultAirFriction     = float32(0)

	DefaultJumpHeight = float32(1.05)
	DefaultGravity    = float32(-9.81)

	DefaultMaxClipPlanes      = 5
	DefaultMaxUnstuckAttempts = 10
	DefaultMaxHits            = 32
)

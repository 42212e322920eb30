package hull

import "github.com/oomph-ac/momentum/omath"

// Speed is a movement profile used while accelerating on the ground or in the air.
type Speed struct {
	// MaxSpeed is the speed acceleration will not push the hull beyond.
	MaxSpeed float32
	// Acceleration is the speed gained per second while moving towards the wish direction.
	Acceleration float32
	// Friction is the speed lost per second relative to the surface the hull is in contact with.
	Friction float32
}

// Lerp interpolates every field of the profile towards o by t.
func (s Speed) Lerp(o Speed, t float32) Speed {
	return Speed{
		MaxSpeed:     omath.Lerp(s.MaxSpeed, o.MaxSpeed, t),
		Acceleration: omath.Lerp(s.Acceleration, o.Acceleration, t),
		Friction:     omath.Lerp(s.Friction, o.Friction, t),
	}
}

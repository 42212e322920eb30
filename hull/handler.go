package hull

// Handler handles events fired by a Hull during its tick. Handlers are called on the goroutine
// ticking the hull.
type Handler interface {
	// HandleJump is called when the hull jumps off the ground.
	HandleJump()
	// HandleLand is called when the hull lands on the ground, with the speed at which it hit it.
	HandleLand(speed float32)
}

// NopHandler implements Handler and does nothing.
type NopHandler struct{}

func (NopHandler) HandleJump()        {}
func (NopHandler) HandleLand(float32) {}

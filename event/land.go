package event

// LandEvent is fired when a hull lands on the ground. Speed is the speed at which it hit the
// ground.
type LandEvent struct {
	NopEvent

	Hull  uint64
	Speed float32
}

func (LandEvent) ID() byte {
	return EventIDLand
}

func (ev LandEvent) Encode() []byte {
	return encode(ev, ev.Hull, ev.Speed)
}

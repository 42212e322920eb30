package event

// JumpEvent is fired when a hull jumps off the ground.
type JumpEvent struct {
	NopEvent

	Hull uint64
}

func (JumpEvent) ID() byte {
	return EventIDJump
}

func (ev JumpEvent) Encode() []byte {
	return encode(ev, ev.Hull)
}

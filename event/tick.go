package event

// TickEvent marks the start of a simulation tick.
type TickEvent struct {
	NopEvent

	Tick int64
}

func (TickEvent) ID() byte {
	return EventIDTick
}

func (ev TickEvent) Encode() []byte {
	return encode(ev, ev.Tick)
}

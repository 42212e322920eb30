package event

import "time"

// ChannelHandler forwards the events of a single hull to a channel. It implements hull.Handler.
// Events are dropped if the channel is full, so a slow consumer never stalls the simulation.
type ChannelHandler struct {
	hull   uint64
	events chan<- Event
	clock  func() int64
}

// NewChannelHandler returns a ChannelHandler sending the events of the hull passed to events. If
// clock is nil, events are stamped with the current Unix time in milliseconds.
func NewChannelHandler(hull uint64, events chan<- Event, clock func() int64) *ChannelHandler {
	if clock == nil {
		clock = func() int64 {
			return time.Now().UnixMilli()
		}
	}
	return &ChannelHandler{hull: hull, events: events, clock: clock}
}

func (h *ChannelHandler) HandleJump() {
	h.send(JumpEvent{NopEvent: NopEvent{EvTime: h.clock()}, Hull: h.hull})
}

func (h *ChannelHandler) HandleLand(speed float32) {
	h.send(LandEvent{NopEvent: NopEvent{EvTime: h.clock()}, Hull: h.hull, Speed: speed})
}

func (h *ChannelHandler) send(ev Event) {
	select {
	case h.events <- ev:
	default:
	}
}

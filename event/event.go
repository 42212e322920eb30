package event

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/oomph-ac/momentum/internal"
	"github.com/oomph-ac/momentum/oerror"
)

// Event is something that happened to a hull during a tick. Events are encoded in a compact
// little endian format so they can be recorded and replayed.
type Event interface {
	ID() byte
	Encode() []byte

	Time() int64
}

type NopEvent struct {
	EvTime int64
}

func (n NopEvent) Time() int64 {
	return n.EvTime
}

func WriteEventHeader(ev Event, buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, uint64(ev.ID()))
	binary.Write(buf, binary.LittleEndian, uint64(ev.Time()))
}

// encode writes the header of the event followed by the fields passed, and returns a copy of the
// bytes written.
func encode(ev Event, fields ...any) []byte {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer internal.BufferPool.Put(buf)

	WriteEventHeader(ev, buf)
	for _, field := range fields {
		binary.Write(buf, binary.LittleEndian, field)
	}
	return bytes.Clone(buf.Bytes())
}

func DecodeEvents(dat []byte) ([]Event, error) {
	buf := internal.BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	buf.Write(dat)
	defer internal.BufferPool.Put(buf)

	events := []Event{}
	for buf.Len() > 0 {
		ev, err := DecodeEvent(buf)
		if err != nil {
			return events, oerror.New("error decoding event: %v", err)
		}

		events = append(events, ev)
	}

	return events, nil
}

func DecodeEvent(buf *bytes.Buffer) (Event, error) {
	rawID, err := readUint64(buf)
	if err != nil {
		return nil, oerror.New("error reading event id: %v", err)
	}
	rawTime, err := readUint64(buf)
	if err != nil {
		return nil, oerror.New("error reading event time: %v", err)
	}
	t := int64(rawTime)

	switch id := byte(rawID); id {
	case EventIDJump:
		ev := JumpEvent{}
		ev.EvTime = t
		ev.Hull, err = readUint64(buf)
		return ev, err
	case EventIDLand:
		ev := LandEvent{}
		ev.EvTime = t
		if ev.Hull, err = readUint64(buf); err != nil {
			return nil, err
		}
		speed, err := readUint32(buf)
		if err != nil {
			return nil, oerror.New("error reading speed from LandEvent: %v", err)
		}
		ev.Speed = math.Float32frombits(speed)
		return ev, nil
	case EventIDTick:
		ev := TickEvent{}
		ev.EvTime = t
		tick, err := readUint64(buf)
		ev.Tick = int64(tick)
		return ev, err
	default:
		return nil, oerror.New("unknown event: %d", id)
	}
}

func readUint64(buf *bytes.Buffer) (uint64, error) {
	if buf.Len() < 8 {
		return 0, oerror.New("expected 8 bytes, got %d", buf.Len())
	}
	return binary.LittleEndian.Uint64(buf.Next(8)), nil
}

func readUint32(buf *bytes.Buffer) (uint32, error) {
	if buf.Len() < 4 {
		return 0, oerror.New("expected 4 bytes, got %d", buf.Len())
	}
	return binary.LittleEndian.Uint32(buf.Next(4)), nil
}

const (
	_ = iota
	EventIDJump
	EventIDLand
	EventIDTick
)

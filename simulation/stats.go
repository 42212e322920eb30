package simulation

import (
	"time"

	"github.com/oomph-ac/momentum/omath"
)

// Stats summarises the time taken by recent ticks.
type Stats struct {
	// Ticks is the total amount of ticks run.
	Ticks int64
	// Mean, StdDev and Max are computed over the ticks kept in the history of the runner.
	Mean   time.Duration
	StdDev time.Duration
	Max    time.Duration
}

// tickHistory is a ring buffer holding the durations of the latest ticks, in milliseconds. The
// oldest duration is overwritten once it is full.
type tickHistory struct {
	items []float64
	head  int
	size  int
}

func newTickHistory(size int) *tickHistory {
	return &tickHistory{items: make([]float64, max(size, 1))}
}

func (h *tickHistory) append(d time.Duration) {
	tail := (h.head + h.size) % len(h.items)
	h.items[tail] = float64(d) / float64(time.Millisecond)
	if h.size == len(h.items) {
		h.head = (h.head + 1) % len(h.items)
		return
	}
	h.size++
}

// values returns the durations from oldest to newest.
func (h *tickHistory) values() []float64 {
	values := make([]float64, h.size)
	for i := range values {
		values[i] = h.items[(h.head+i)%len(h.items)]
	}
	return values
}

func (h *tickHistory) stats(ticks int64) Stats {
	values := h.values()
	ms := func(v float64) time.Duration {
		return time.Duration(v * float64(time.Millisecond))
	}
	return Stats{
		Ticks:  ticks,
		Mean:   ms(omath.Mean(values)),
		StdDev: ms(omath.StandardDeviation(values)),
		Max:    ms(omath.Max(values)),
	}
}

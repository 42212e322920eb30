package event

import (
	"io"

	"github.com/oomph-ac/momentum/oerror"
	"github.com/sasha-s/go-deadlock"
)

// Recorder writes encoded events to an io.Writer. The output can be read back with DecodeEvents.
type Recorder struct {
	w     io.Writer
	count int

	deadlock.Mutex
}

// NewRecorder returns a Recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Record encodes the event and writes it. It is safe to call from multiple goroutines.
func (r *Recorder) Record(ev Event) error {
	dat := ev.Encode()

	r.Lock()
	defer r.Unlock()
	if _, err := r.w.Write(dat); err != nil {
		return oerror.New("error recording event %d: %v", ev.ID(), err)
	}
	r.count++
	return nil
}

// Count returns the amount of events recorded.
func (r *Recorder) Count() int {
	r.Lock()
	defer r.Unlock()
	return r.count
}

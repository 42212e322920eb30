package simulation

import (
	"context"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/momentum/event"
	"github.com/oomph-ac/momentum/hull"
	"github.com/oomph-ac/momentum/oerror"
	"github.com/oomph-ac/momentum/world"
	"github.com/oomph-ac/momentum/worker"
	"github.com/sasha-s/go-deadlock"
	"github.com/sirupsen/logrus"
)

// Config holds the settings of a Runner.
type Config struct {
	// TickRate is the amount of ticks run per second.
	TickRate int
	// HistorySize is the amount of ticks Stats are computed over.
	HistorySize int
}

// DefaultConfig returns a configuration running 20 ticks per second.
func DefaultConfig() Config {
	return Config{TickRate: 20, HistorySize: 100}
}

// Runner ticks a World and every Hull moving through it at a fixed rate. Hulls are ticked in
// parallel on the workers, after the bodies of the world moved.
type Runner struct {
	log      *logrus.Logger
	world    *world.World
	conf     Config
	recorder *event.Recorder

	hulls   *orderedmap.OrderedMap[uint64, *hull.Hull]
	tick    int64
	history *tickHistory

	deadlock.Mutex
}

// NewRunner returns a Runner for the world passed.
func NewRunner(log *logrus.Logger, w *world.World, conf Config) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if conf.TickRate <= 0 {
		conf.TickRate = DefaultConfig().TickRate
	}
	return &Runner{
		log:     log,
		world:   w,
		conf:    conf,
		hulls:   orderedmap.NewOrderedMap[uint64, *hull.Hull](),
		history: newTickHistory(conf.HistorySize),
	}
}

// Record makes the runner record a TickEvent at the start of every tick. Passing nil stops
// recording.
func (r *Runner) Record(rec *event.Recorder) {
	r.Lock()
	defer r.Unlock()
	r.recorder = rec
}

// Add adds the hull to the runner. A disabled hull is enabled first: if that fails, the error is
// reported and returned, and the hull is not added.
func (r *Runner) Add(h *hull.Hull) error {
	if !h.Enabled() {
		if err := h.InvalidateCollider(); err != nil {
			sentry.CaptureException(err)
			return err
		}
	}

	r.Lock()
	defer r.Unlock()
	if _, ok := r.hulls.Get(h.ID()); ok {
		return oerror.New("hull %d was already added", h.ID())
	}
	r.hulls.Set(h.ID(), h)
	return nil
}

// Remove removes the hull with the id passed.
func (r *Runner) Remove(id uint64) bool {
	r.Lock()
	defer r.Unlock()
	return r.hulls.Delete(id)
}

// Len returns the amount of hulls ticked by the runner.
func (r *Runner) Len() int {
	r.Lock()
	defer r.Unlock()
	return r.hulls.Len()
}

// Delta returns the duration of a tick in seconds.
func (r *Runner) Delta() float32 {
	return 1 / float32(r.conf.TickRate)
}

// Tick runs a single tick.
func (r *Runner) Tick() {
	r.Lock()
	defer r.Unlock()

	start := time.Now()
	dt := r.Delta()
	r.tick++
	if r.recorder != nil {
		if err := r.recorder.Record(event.TickEvent{NopEvent: event.NopEvent{EvTime: start.UnixMilli()}, Tick: r.tick}); err != nil {
			r.log.Errorf("failed recording tick %d: %v", r.tick, err)
		}
	}

	r.world.Tick(dt)

	// Hulls move concurrently against the world as it was at the start of the tick, and only
	// then write their colliders back, so the result does not depend on scheduling.
	var g worker.Group
	for el := r.hulls.Front(); el != nil; el = el.Next() {
		h := el.Value
		g.Go(func() {
			h.Move(dt)
		})
	}
	g.Wait()
	for el := r.hulls.Front(); el != nil; el = el.Next() {
		if el.Value.Enabled() {
			el.Value.SyncCollider()
		}
	}

	r.history.append(time.Since(start))
}

// Run ticks the runner at its tick rate until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(r.conf.TickRate))
	defer ticker.Stop()

	r.log.Infof("simulation running at %d ticks per second", r.conf.TickRate)
	for {
		select {
		case <-ctx.Done():
			r.log.Infof("simulation stopped after %d ticks", r.Stats().Ticks)
			return ctx.Err()
		case <-ticker.C:
			r.Tick()
		}
	}
}

// Stats returns the tick duration statistics of the runner.
func (r *Runner) Stats() Stats {
	r.Lock()
	defer r.Unlock()
	return r.history.stats(r.tick)
}

package worker

import (
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
)

var workerQueue = make(chan func(), runtime.NumCPU())

func init() {
	for i := 0; i < runtime.NumCPU(); i++ {
		go worker()
	}
}

func worker() {
	for f := range workerQueue {
		run(f)
	}
}

// run calls f, reporting a panic to sentry instead of letting it stop the worker.
func run(f func()) {
	defer sentry.Recover()
	f()
}

// To be used by a function that may be CPU intensive.
func Submit(f func()) {
	workerQueue <- f
}

// Group waits for a collection of functions submitted to the workers to finish.
type Group struct {
	wg sync.WaitGroup
}

// Go submits f to the workers.
func (g *Group) Go(f func()) {
	g.wg.Add(1)
	Submit(func() {
		defer g.wg.Done()
		f()
	})
}

// Wait blocks until every function passed to Go has returned.
func (g *Group) Wait() {
	g.wg.Wait()
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// ManualRunTimeout bounds runs started on behalf of a caller rather than
// by the timer.
const ManualRunTimeout = time.Minute

// Task is one unit of scheduled work. It must honor ctx cancellation.
type Task func(ctx context.Context) error

// Scheduler runs a Task once immediately and then on a fixed interval.
// A tick that arrives while the previous run is still in flight is skipped,
// so runs never overlap and never complete out of order.
type Scheduler struct {
	name     string
	task     Task
	interval atomic.Int64
	reset    chan struct{}

	running atomic.Bool
	skipped atomic.Int64
}

// New creates a Scheduler. The name only appears in logs.
func New(name string, interval time.Duration, task Task) *Scheduler {
	s := &Scheduler{
		name:  name,
		task:  task,
		reset: make(chan struct{}, 1),
	}
	s.interval.Store(int64(interval))
	return s
}

// Interval returns the current tick interval.
func (s *Scheduler) Interval() time.Duration {
	return time.Duration(s.interval.Load())
}

// SetInterval changes the tick interval. A running loop picks it up
// without being restarted.
func (s *Scheduler) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.interval.Store(int64(d))
	select {
	case s.reset <- struct{}{}:
	default:
	}
}

// Skipped returns how many ticks were dropped because a run was in flight.
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// Handle controls a loop started by Start.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the loop and any in-flight run, and waits for both to return.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the loop and its runs have exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Start launches the loop. The first run happens right away.
func (s *Scheduler) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	var runs sync.WaitGroup
	fire := func() {
		runs.Add(1)
		go func() {
			defer runs.Done()
			if _, err := s.Tick(ctx); err != nil {
				log.Printf("ERROR (Scheduler %s): %v", s.name, err)
			}
		}()
	}

	go func() {
		defer close(h.done)
		defer runs.Wait()

		ticker := time.NewTicker(s.Interval())
		defer ticker.Stop()

		log.Printf("INFO (Scheduler %s): Started, interval %s", s.name, s.Interval())
		fire()
		for {
			select {
			case <-ctx.Done():
				log.Printf("INFO (Scheduler %s): Stopped", s.name)
				return
			case <-s.reset:
				ticker.Reset(s.Interval())
				log.Printf("INFO (Scheduler %s): Interval changed to %s", s.name, s.Interval())
			case <-ticker.C:
				fire()
			}
		}
	}()

	return h
}

// Tick runs the task once unless a run is already in flight.
// ran reports whether the task was invoked.
func (s *Scheduler) Tick(ctx context.Context) (ran bool, err error) {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		log.Printf("INFO (Scheduler %s): Previous run still in flight, skipping tick", s.name)
		return false, nil
	}
	defer s.running.Store(false)

	if err := s.task(ctx); err != nil {
		return true, fmt.Errorf("%s run failed: %w", s.name, err)
	}
	return true, nil
}

// TickDetached is Tick on a context that ignores the caller's
// cancellation and is bounded by ManualRunTimeout instead. The run is
// shared, so a caller going away must not abort it.
func (s *Scheduler) TickDetached(ctx context.Context) (ran bool, err error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ManualRunTimeout)
	defer cancel()
	return s.Tick(ctx)
}

// HandleTick is an HTTP handler that triggers a single run.
// It answers 409 when a run is already in flight.
func (s *Scheduler) HandleTick(w http.ResponseWriter, r *http.Request) {
	log.Printf("INFO (Scheduler %s): Tick triggered via HTTP", s.name)

	ran, err := s.TickDetached(r.Context())
	if err != nil {
		log.Printf("ERROR (Scheduler %s): Tick failed: %v", s.name, err)
		http.Error(w, "scheduler tick failed", http.StatusInternalServerError)
		return
	}
	if !ran {
		http.Error(w, "busy", http.StatusConflict)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK: ran")
}

// Package scheduler implements the periodic tick driver (§5): every T
// seconds it runs C3/C4 collection, then wakes C5 to drain and fuse, all
// within a tick-wide deadline, while watching C5's inbox for backpressure.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/dd0wney/floodroute/pkg/logging"
)

// DefaultTickInterval is T, the documented default tick period.
const DefaultTickInterval = 300 * time.Second

// DefaultTickDeadlineFraction bounds the tick-wide deadline at 2T/3 (§5
// "Cancellation and timeouts").
const DefaultTickDeadlineFraction = 2.0 / 3.0

// Default high/low-water marks for C5's inbox (§5 "Backpressure").
const (
	DefaultHighWaterMark = 500
	DefaultLowWaterMark  = 100
)

// TickFunc is one driven agent's per-tick entry point. C3/C4/C5 each
// expose a richer Tick method of their own; callers adapt it to this
// shape when wiring the scheduler (the hazard agent's Tick, for
// instance, also returns TickStats that the scheduler doesn't need).
type TickFunc func(ctx context.Context) error

// PendingFunc reports the hazard agent's current inbox depth, used for
// the backpressure check (§5).
type PendingFunc func() int

// Config tunes the scheduler.
type Config struct {
	TickInterval  time.Duration
	TickDeadline  time.Duration
	HighWaterMark int
	LowWaterMark  int
}

// DefaultConfig derives TickDeadline from TickInterval per §5.
func DefaultConfig() Config {
	return Config{
		TickInterval:  DefaultTickInterval,
		TickDeadline:  time.Duration(float64(DefaultTickInterval) * DefaultTickDeadlineFraction),
		HighWaterMark: DefaultHighWaterMark,
		LowWaterMark:  DefaultLowWaterMark,
	}
}

// Scheduler is the single periodic driver thread (§5 "Scheduling model").
type Scheduler struct {
	cfg        Config
	floodTick  TickFunc
	scoutTick  TickFunc
	hazardTick TickFunc
	pending    PendingFunc
	log        logging.Logger

	mu        sync.Mutex
	paused    bool
	tickCount uint64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New constructs a Scheduler wiring the three driven agents. pending may
// be nil if backpressure tracking is not needed (e.g. in tests).
func New(cfg Config, floodTick, scoutTick, hazardTick TickFunc, pending PendingFunc, log logging.Logger) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.TickDeadline <= 0 {
		cfg.TickDeadline = time.Duration(float64(cfg.TickInterval) * DefaultTickDeadlineFraction)
	}
	if cfg.HighWaterMark <= 0 {
		cfg.HighWaterMark = DefaultHighWaterMark
	}
	if cfg.LowWaterMark <= 0 {
		cfg.LowWaterMark = DefaultLowWaterMark
	}
	if log == nil {
		log = logging.NewDefaultLogger()
	}

	return &Scheduler{
		cfg:        cfg,
		floodTick:  floodTick,
		scoutTick:  scoutTick,
		hazardTick: hazardTick,
		pending:    pending,
		log:        log.With(logging.Component("scheduler")),
		stopCh:     make(chan struct{}),
	}
}

// Run starts the periodic driver thread. It blocks until Stop is called.
func (s *Scheduler) Run() {
	s.wg.Add(1)
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runTick()
		}
	}
}

// Stop signals the driver thread to exit and waits for it to do so.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// runTick runs one collection+fusion cycle under the tick-wide deadline
// (§5). Ordering within a tick: collection completes before fusion.
func (s *Scheduler) runTick() {
	s.mu.Lock()
	s.tickCount++
	tick := s.tickCount
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.TickDeadline)
	defer cancel()

	start := time.Now()
	s.checkBackpressure()
	paused := s.IsPaused()

	if s.floodTick != nil && !paused {
		if err := s.floodTick(ctx); err != nil {
			s.log.Error("flood collector tick failed", logging.Tick(tick), logging.Err(err))
		}
	}
	if s.scoutTick != nil && !paused {
		if err := s.scoutTick(ctx); err != nil {
			s.log.Error("scout collector tick failed", logging.Tick(tick), logging.Err(err))
		}
	}
	if s.hazardTick != nil {
		if err := s.hazardTick(ctx); err != nil {
			s.log.Error("hazard fusion tick failed", logging.Tick(tick), logging.Err(err))
		}
	}

	s.log.Info("tick complete", logging.Tick(tick), logging.Duration("elapsed", time.Since(start)))
}

// checkBackpressure pauses/resumes collectors around C5's inbox
// high/low-water marks (§5 "Backpressure"). While paused, runTick skips
// the C3/C4 collector ticks and still runs C5, so its inbox drains.
func (s *Scheduler) checkBackpressure() {
	if s.pending == nil {
		return
	}
	pending := s.pending()

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case !s.paused && pending >= s.cfg.HighWaterMark:
		s.paused = true
		s.log.Warn("hazard inbox over high-water mark, pausing collectors", logging.Int("pending", pending))
	case s.paused && pending <= s.cfg.LowWaterMark:
		s.paused = false
		s.log.Info("hazard inbox drained below low-water mark, resuming collectors", logging.Int("pending", pending))
	}
}

// IsPaused reports whether collectors should hold back due to
// backpressure (§5).
func (s *Scheduler) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// TickCount returns the number of ticks run so far.
func (s *Scheduler) TickCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickCount
}

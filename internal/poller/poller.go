// Package poller triggers timeline refreshes on an interval and when the
// application regains focus.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RefreshFunc fetches the newest messages.
type RefreshFunc func(ctx context.Context) error

// Scheduler fires Refresh every Interval and on every Focus call. Triggers
// are not serialized with each other.
type Scheduler struct {
	Interval time.Duration
	Refresh  RefreshFunc
	Logger   zerolog.Logger

	focusOnce sync.Once
	focus     chan struct{}
}

// New returns a scheduler. An interval <= 0 disables the timer; focus
// triggers still work.
func New(interval time.Duration, refresh RefreshFunc, logger zerolog.Logger) *Scheduler {
	return &Scheduler{Interval: interval, Refresh: refresh, Logger: logger}
}

func (s *Scheduler) focusChan() chan struct{} {
	s.focusOnce.Do(func() {
		s.focus = make(chan struct{}, 1)
	})
	return s.focus
}

// Focus requests a refresh. Signals arriving while one is pending are
// coalesced. Focus never blocks.
func (s *Scheduler) Focus() {
	select {
	case s.focusChan() <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done and every refresh it started has returned.
// Refresh errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if s.Interval > 0 {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	focus := s.focusChan()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			s.fire(ctx, &wg, "interval")
		case <-focus:
			s.fire(ctx, &wg, "focus")
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, wg *sync.WaitGroup, trigger string) {
	if s.Refresh == nil {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.Logger.Warn().Err(err).Str("trigger", trigger).Msg("refresh failed")
		}
	}()
}

package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestSchedulerFiresOnInterval(t *testing.T) {
	var calls atomic.Int32
	s := New(10*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitFor(t, func() bool { return calls.Load() >= 3 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("run: %v", err)
	}
}

func TestSchedulerDisabledIntervalStillHandlesFocus(t *testing.T) {
	var calls atomic.Int32
	s := New(0, func(context.Context) error {
		calls.Add(1)
		return nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("expected no interval refresh, got %d", calls.Load())
	}

	s.Focus()
	waitFor(t, func() bool { return calls.Load() == 1 })
}

func TestSchedulerKeepsRunningAfterErrors(t *testing.T) {
	var calls atomic.Int32
	s := New(5*time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return errors.New("unable to fetch messages (500)")
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	waitFor(t, func() bool { return calls.Load() >= 3 })
}

func TestSchedulerDoesNotSerializeTriggers(t *testing.T) {
	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	s := New(0, func(ctx context.Context) error {
		n := inFlight.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		inFlight.Add(-1)
		return nil
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()

	s.Focus()
	waitFor(t, func() bool { return inFlight.Load() == 1 })
	s.Focus()
	waitFor(t, func() bool { return peak.Load() == 2 })

	close(release)
	cancel()
	<-done
	if inFlight.Load() != 0 {
		t.Fatalf("run returned with refreshes in flight")
	}
}

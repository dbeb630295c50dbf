package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTickAligned(t *testing.T) {
	s := New(Options{Interval: 5 * time.Minute, AlignToClock: true}, zerolog.Nop())

	now := time.Date(2026, 8, 25, 14, 32, 17, 0, time.UTC)
	next := s.nextTick(now)
	assert.Equal(t, time.Date(2026, 8, 25, 14, 35, 0, 0, time.UTC), next)

	// Already on a boundary: the next tick is one full interval away.
	boundary := time.Date(2026, 8, 25, 14, 35, 0, 0, time.UTC)
	assert.Equal(t, boundary.Add(5*time.Minute), s.nextTick(boundary))
}

func TestNextTickUnaligned(t *testing.T) {
	s := New(Options{Interval: 5 * time.Minute}, zerolog.Nop())

	now := time.Date(2026, 8, 25, 14, 32, 17, 0, time.UTC)
	assert.Equal(t, now.Add(5*time.Minute), s.nextTick(now))
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(Options{Interval: 5 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(ctx context.Context, _ time.Time) error {
			if ticks.Add(1) >= 3 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.GreaterOrEqual(t, ticks.Load(), int32(3))
}

func TestRunImmediately(t *testing.T) {
	s := New(Options{Interval: time.Hour, RunImmediately: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(ctx context.Context, _ time.Time) error {
			ticks.Add(1)
			cancel()
			return nil
		})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Equal(t, int32(1), ticks.Load())
}

func TestTickErrorDoesNotStopLoop(t *testing.T) {
	s := New(Options{Interval: 5 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	var ticks atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(ctx context.Context, _ time.Time) error {
			if ticks.Add(1) >= 2 {
				cancel()
			}
			return errors.New("tick failed")
		})
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not survive tick errors")
	}
	assert.GreaterOrEqual(t, ticks.Load(), int32(2))
}

func TestNewPanicsOnNonPositiveInterval(t *testing.T) {
	assert.Panics(t, func() { New(Options{}, zerolog.Nop()) })
}

package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProvider = errors.New("provider down")

func newTestBreaker() *Breaker {
	return NewBreaker("test", BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Cooldown:         50 * time.Millisecond,
	})
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b := newTestBreaker()

	for i := 0; i < 3; i++ {
		err := b.Do(func() error { return errProvider })
		assert.ErrorIs(t, err, errProvider)
	}
	assert.Equal(t, StateOpen, b.State())

	// Open circuit fails fast without invoking the function.
	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := newTestBreaker()

	require.Error(t, b.Do(func() error { return errProvider }))
	require.Error(t, b.Do(func() error { return errProvider }))
	require.NoError(t, b.Do(func() error { return nil }))
	require.Error(t, b.Do(func() error { return errProvider }))
	require.Error(t, b.Do(func() error { return errProvider }))

	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	b := newTestBreaker()

	for i := 0; i < 3; i++ {
		b.Do(func() error { return errProvider })
	}
	require.Equal(t, StateOpen, b.State())

	time.Sleep(60 * time.Millisecond)

	// First probe transitions to half-open; two successes close it.
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, b.Do(func() error { return nil }))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := newTestBreaker()

	for i := 0; i < 3; i++ {
		b.Do(func() error { return errProvider })
	}
	time.Sleep(60 * time.Millisecond)

	require.Error(t, b.Do(func() error { return errProvider }))
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerStats(t *testing.T) {
	b := newTestBreaker()

	b.Do(func() error { return nil })
	for i := 0; i < 3; i++ {
		b.Do(func() error { return errProvider })
	}
	b.Do(func() error { return nil })

	stats := b.Stats()
	assert.Equal(t, "test", stats.Name)
	assert.Equal(t, StateOpen, stats.State)
	assert.Equal(t, int64(4), stats.TotalCalls)
	assert.Equal(t, int64(3), stats.TotalFailures)
	assert.Equal(t, int64(1), stats.TotalRejected)
}

func TestBreakerReset(t *testing.T) {
	b := newTestBreaker()

	for i := 0; i < 3; i++ {
		b.Do(func() error { return errProvider })
	}
	require.Equal(t, StateOpen, b.State())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Do(func() error { return nil }))
}

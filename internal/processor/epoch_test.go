package processor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochAdvanceIsMonotonic(t *testing.T) {
	epoch := NewEpoch()

	require.Equal(t, uint64(0), epoch.Current())

	last := uint64(0)
	for i := 0; i < 10; i++ {
		gen := epoch.Advance()
		assert.Greater(t, gen, last)
		assert.Equal(t, gen, epoch.Current())
		last = gen
	}
}

func TestEpochWaitCompletesWhenCurrent(t *testing.T) {
	epoch := NewEpoch()
	gen := epoch.Advance()

	start := time.Now()
	ok := epoch.Wait(context.Background(), gen, 20*time.Millisecond)
	elapsed := time.Since(start)

	assert.True(t, ok)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

func TestEpochWaitReturnsImmediatelyWhenStale(t *testing.T) {
	epoch := NewEpoch()
	gen := epoch.Advance()
	epoch.Advance()

	start := time.Now()
	ok := epoch.Wait(context.Background(), gen, time.Minute)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEpochWaitWakesOnAdvance(t *testing.T) {
	epoch := NewEpoch()
	gen := epoch.Advance()

	go func() {
		time.Sleep(10 * time.Millisecond)
		epoch.Advance()
	}()

	start := time.Now()
	ok := epoch.Wait(context.Background(), gen, time.Minute)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEpochWaitHonorsContext(t *testing.T) {
	epoch := NewEpoch()
	gen := epoch.Advance()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	ok := epoch.Wait(ctx, gen, time.Minute)
	assert.False(t, ok)
}

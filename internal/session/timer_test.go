package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimerCountsDownMonotonically(t *testing.T) {
	tm := NewTimer(5, nil)

	prev := tm.Remaining()
	for i := 0; i < 5; i++ {
		tm.tick()
		cur := tm.Remaining()
		assert.LessOrEqual(t, cur, prev)
		prev = cur
	}
	assert.Equal(t, 0, tm.Remaining())
}

func TestTimerNeverFiresEarly(t *testing.T) {
	fired := 0
	tm := NewTimer(3, func() { fired++ })

	tm.tick()
	tm.tick()
	assert.Equal(t, 0, fired)
	assert.False(t, tm.Expired())
	assert.Equal(t, 1, tm.Remaining())
}

func TestTimerFiresExactlyOnce(t *testing.T) {
	fired := 0
	tm := NewTimer(2, func() { fired++ })

	tm.tick()
	tm.tick()
	assert.Equal(t, 1, fired)
	assert.True(t, tm.Expired())

	// Ticks after expiry change nothing.
	tm.tick()
	tm.tick()
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, tm.Remaining())
}

func TestTimerZeroDurationFiresOnFirstTick(t *testing.T) {
	fired := 0
	tm := NewTimer(0, func() { fired++ })

	tm.tick()
	assert.Equal(t, 1, fired)
	assert.True(t, tm.Expired())
}

func TestTimerStopIsIdempotent(t *testing.T) {
	tm := NewTimer(60, nil)
	tm.Start()
	tm.Stop()
	tm.Stop()
	assert.False(t, tm.Expired())
}

func TestTimerConcurrentTicksFireOnce(t *testing.T) {
	fired := 0
	var fireMu sync.Mutex
	tm := NewTimer(1, func() {
		fireMu.Lock()
		fired++
		fireMu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.tick()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fired)
}

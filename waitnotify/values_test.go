package waitnotify

import (
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/atomiccell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitValue(t *testing.T) {
	e := newTestEngine(t)
	c := atomiccell.New[uint32](7, syncscope.ScopeSystem)

	// different value, returns immediately
	WaitValue(e, c, 3)

	done := make(chan uint32)
	go func() {
		for c.Load(syncscope.Acquire) == 7 {
			WaitValue(e, c, 7)
		}
		done <- c.Load(syncscope.Acquire)
	}()
	waitForWaiters(t, e, KeyOf(c), 1)

	c.Store(8, syncscope.Release)
	assert.Equal(t, 1, NotifyOneValue(e, c))
	assert.Equal(t, uint32(8), <-done)
}

func TestWaitValue_narrowerEngineWokenBySystem(t *testing.T) {
	group := newTestEngine(t, WithScope(syncscope.ScopeGroup))
	system := newTestEngine(t, WithScope(syncscope.ScopeSystem))
	c := atomiccell.New[uint32](0, syncscope.ScopeSystem)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for c.Load(syncscope.Acquire) == 0 {
			WaitValue(group, c, 0)
		}
	}()
	waitForWaiters(t, group, KeyOf(c), 1)

	c.Store(1, syncscope.Release)
	assert.Equal(t, 1, NotifyAllValue(system, c))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("group waiter not woken by system notify")
	}
	assert.Zero(t, group.Waiters(KeyOf(c)))
}

func TestWaitValueUntil(t *testing.T) {
	e := newTestEngine(t)
	c := atomiccell.New[int64](0, syncscope.ScopeSystem)

	start := time.Now()
	assert.False(t, WaitValueUntil(e, c, 0, start.Add(15*time.Millisecond)))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	var wg sync.WaitGroup
	results := make(chan bool, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- WaitValueUntil(e, c, 0, time.Now().Add(time.Minute))
		}()
	}
	waitForWaiters(t, e, KeyOf(c), 3)
	c.FetchAdd(1, syncscope.AcqRel)
	assert.Equal(t, 3, NotifyAllValue(e, c))
	wg.Wait()
	close(results)
	for ok := range results {
		assert.True(t, ok)
	}
}

func TestWaitValue_CellScope(t *testing.T) {
	group := newTestEngine(t, WithScope(syncscope.ScopeGroup))
	c := atomiccell.New[int32](1, syncscope.ScopeDevice)
	WaitValue(group, c, 0)

	var lane atomiccell.Cell[int32]
	expectViolation(t, `waitnotify.wait_value_until`, func() {
		WaitValueUntil(group, &lane, 0, time.Now())
	})

	laneEngine := newTestEngine(t, WithScope(syncscope.ScopeLane))
	require.False(t, WaitValueUntil(laneEngine, &lane, 0, time.Now().Add(time.Millisecond)))
}

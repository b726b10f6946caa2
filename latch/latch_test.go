package latch

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/waitnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		cv := syncscope.AsContractViolation(recover())
		require.NotNil(t, cv, "expected a contract violation")
		assert.Equal(t, `latch.count_down`, cv.Op)
	}()
	fn()
}

func newLatch(t *testing.T, count int64, opts ...waitnotify.Option) *Latch {
	t.Helper()
	l, err := New(count, opts...)
	require.NoError(t, err)
	return l
}

func TestNew(t *testing.T) {
	_, err := New(-1)
	assert.True(t, errors.Is(err, syncscope.ErrInvalidCount))

	l := newLatch(t, 0)
	assert.True(t, l.TryWait())
	l.Wait()
	assert.True(t, l.WaitFor(0))
	expectViolation(t, func() { l.CountDown(0) })
}

func TestCountDown_Violations(t *testing.T) {
	l := newLatch(t, 2)
	expectViolation(t, func() { l.CountDown(-1) })
	expectViolation(t, func() { l.CountDown(3) })
	assert.Equal(t, int64(2), l.Count(), "over-decrement must not commit")

	l.CountDown(0)
	l.CountDown(2)
	assert.True(t, l.TryWait())
	expectViolation(t, func() { l.CountDown(1) })
	assert.Equal(t, int64(0), l.Count())
	assert.Equal(t, int64(2), l.Max())
}

// TestLatch_WaitBeforeCountDowns is the three caller scenario: a waiter that
// starts before any count down is released by the third, never earlier.
func TestLatch_WaitBeforeCountDowns(t *testing.T) {
	l := newLatch(t, 3)
	var released atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Wait()
		released.Store(true)
	}()
	require.Eventually(t, func() bool {
		return l.Engine().Waiters(l.key()) == 1
	}, 5*time.Second, time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.CountDown(1)
		}()
	}
	wg.Wait()
	time.Sleep(10 * time.Millisecond)
	assert.False(t, released.Load(), "released before the third count down")
	assert.False(t, l.TryWait())

	go l.CountDown(1)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("waiter not released")
	}
	assert.True(t, released.Load())
}

func TestLatch_ReleasesEveryWaiterOnce(t *testing.T) {
	const (
		waiters = 10
		count   = 7
	)
	l := newLatch(t, count, waitnotify.WithMetrics(true))
	var returns atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Wait()
			returns.Add(1)
		}()
	}
	for i := 0; i < count; i++ {
		go l.CountDown(1)
	}
	wg.Wait()
	assert.Equal(t, int64(waiters), returns.Load())

	// late waiters return immediately
	l.Wait()
	assert.True(t, l.WaitUntil(time.Now().Add(-time.Hour)))
}

func TestLatch_ArriveAndWait(t *testing.T) {
	const workers = 8
	l := newLatch(t, workers*2)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.ArriveAndWait(2)
			assert.True(t, l.TryWait())
		}()
	}
	wg.Wait()
}

func TestLatch_WaitForTimeout(t *testing.T) {
	l := newLatch(t, 1)
	start := time.Now()
	assert.False(t, l.WaitFor(20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	time.AfterFunc(5*time.Millisecond, func() { l.CountDown(1) })
	assert.True(t, l.WaitFor(5*time.Second))
}

func TestLatch_Scopes(t *testing.T) {
	for _, scope := range syncscope.Scopes() {
		t.Run(scope.String(), func(t *testing.T) {
			l := newLatch(t, 4, waitnotify.WithScope(scope))
			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					l.ArriveAndWait(1)
				}()
			}
			wg.Wait()
			assert.True(t, l.TryWait())
		})
	}
}

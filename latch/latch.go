// Package latch implements a single-use downward counter that releases every
// waiter once it reaches zero.
package latch

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/atomiccell"
	"github.com/joeycumines/go-syncscope/waitnotify"
)

// Latch is a counter, set once at construction, that only decreases. Once
// it reaches zero it is complete, permanently.
//
// A Latch must not be copied after first use.
type Latch struct {
	_      syncscope.NoCopy
	count  atomiccell.Padded[int64]
	engine *waitnotify.Engine
	max    int64
}

// New constructs a Latch with the given count. A zero count constructs a
// latch that is already complete.
func New(count int64, opts ...waitnotify.Option) (*Latch, error) {
	if count < 0 {
		return nil, fmt.Errorf(`latch: count %d: %w`, count, syncscope.ErrInvalidCount)
	}
	engine, err := waitnotify.New(opts...)
	if err != nil {
		return nil, err
	}
	l := &Latch{
		engine: engine,
		max:    count,
	}
	l.count.Init(count, engine.Scope())
	return l, nil
}

// Max returns the count the latch was constructed with.
func (l *Latch) Max() int64 { return l.max }

// Count returns the current count, for diagnostics.
func (l *Latch) Count() int64 { return l.count.Load(syncscope.Relaxed) }

// Engine returns the wait/notify engine of the latch.
func (l *Latch) Engine() *waitnotify.Engine { return l.engine }

// CountDown decrements the count by n. The caller that brings the count to
// zero wakes every waiter.
//
// It is a contract violation to count down by a negative amount, by more
// than the current count, or at all once the latch is complete. A zero
// count down of an incomplete latch does nothing.
func (l *Latch) CountDown(n int64) {
	if n < 0 {
		l.engine.Violate(`latch.count_down`, `negative count down %d`, n)
	}
	c := l.count.Load(syncscope.Relaxed)
	for {
		if c == 0 {
			l.engine.Violate(`latch.count_down`, `count down by %d of a complete latch`, n)
		}
		if n == 0 {
			return
		}
		if n > c {
			l.engine.Violate(`latch.count_down`, `count down by %d exceeds count %d`, n, c)
		}
		if l.count.CompareExchange(&c, c-n, syncscope.Release, syncscope.Relaxed) {
			break
		}
	}
	if c == n {
		l.engine.NotifyAll(l.key())
	}
}

// TryWait reports whether the latch is complete, without waiting.
func (l *Latch) TryWait() bool {
	return l.count.Load(syncscope.Acquire) == 0
}

// Wait blocks until the latch is complete.
func (l *Latch) Wait() {
	l.engine.Await(l.key(), l.TryWait)
}

// WaitUntil blocks until the latch is complete or the deadline passes,
// returning false in the latter case.
func (l *Latch) WaitUntil(deadline time.Time) bool {
	return l.engine.AwaitUntil(l.key(), l.TryWait, deadline)
}

// WaitFor is WaitUntil, with a deadline d from now.
func (l *Latch) WaitFor(d time.Duration) bool {
	return l.WaitUntil(time.Now().Add(d))
}

// ArriveAndWait counts down by n, then waits for completion.
func (l *Latch) ArriveAndWait(n int64) {
	l.CountDown(n)
	l.Wait()
}

func (l *Latch) key() unsafe.Pointer {
	return waitnotify.KeyOf(&l.count.Cell)
}

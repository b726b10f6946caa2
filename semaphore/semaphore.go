// Package semaphore implements a counting semaphore on the scope-aware
// wait/notify engine.
package semaphore

import (
	"fmt"
	"math"
	"time"
	"unsafe"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/atomiccell"
	"github.com/joeycumines/go-syncscope/waitnotify"
)

// Unbounded may be used as the maximum of a semaphore with no practical
// upper bound.
const Unbounded int64 = math.MaxInt64

// tryAcquireRetries bounds the compare-exchange attempts of TryAcquire, made
// only while the count is observed to be positive.
const tryAcquireRetries = 4

// Semaphore is a counting semaphore, with a count in [0, Max].
//
// A Semaphore must not be copied after first use.
type Semaphore struct {
	_      syncscope.NoCopy
	count  atomiccell.Padded[int64]
	engine *waitnotify.Engine
	max    int64
}

// New constructs a Semaphore with the given initial count and maximum. The
// options configure its wait/notify engine, see [waitnotify.New].
func New(initial, max int64, opts ...waitnotify.Option) (*Semaphore, error) {
	if max < 1 || initial < 0 || initial > max {
		return nil, fmt.Errorf(`semaphore: initial %d, max %d: %w`, initial, max, syncscope.ErrInvalidCount)
	}
	engine, err := waitnotify.New(opts...)
	if err != nil {
		return nil, err
	}
	s := &Semaphore{
		engine: engine,
		max:    max,
	}
	s.count.Init(initial, engine.Scope())
	return s, nil
}

// NewBinary constructs a Semaphore with a maximum of 1.
func NewBinary(initial int64, opts ...waitnotify.Option) (*Semaphore, error) {
	return New(initial, 1, opts...)
}

// Max returns the maximum count.
func (s *Semaphore) Max() int64 { return s.max }

// Count returns the current count. It is stale as soon as it is returned,
// and is intended for diagnostics.
func (s *Semaphore) Count() int64 { return s.count.Load(syncscope.Relaxed) }

// Engine returns the wait/notify engine of the semaphore.
func (s *Semaphore) Engine() *waitnotify.Engine { return s.engine }

// Acquire decrements the count, waiting for it to become positive.
func (s *Semaphore) Acquire() {
	for !s.acquire(-1) {
		s.engine.Await(s.key(), s.available)
	}
}

// TryAcquire decrements the count if it is positive, without waiting.
func (s *Semaphore) TryAcquire() bool {
	return s.acquire(tryAcquireRetries)
}

// TryAcquireFor is TryAcquireUntil, with a deadline d from now.
func (s *Semaphore) TryAcquireFor(d time.Duration) bool {
	return s.TryAcquireUntil(time.Now().Add(d))
}

// TryAcquireUntil decrements the count, waiting until the deadline for it to
// become positive. It returns false no earlier than the deadline, and a
// release made before the deadline elapsed is observed.
func (s *Semaphore) TryAcquireUntil(deadline time.Time) bool {
	for !s.acquire(-1) {
		if !s.engine.AwaitUntil(s.key(), s.available, deadline) {
			return false
		}
	}
	return true
}

// Release increments the count by n, waking waiters. Releasing past the
// maximum, or a negative amount, is a contract violation. Releasing zero
// does nothing.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		s.engine.Violate(`semaphore.release`, `negative release %d`, n)
	}
	if n == 0 {
		return
	}
	c := s.count.Load(syncscope.Relaxed)
	for {
		if c > s.max-n {
			s.engine.Violate(`semaphore.release`, `release of %d with count %d exceeds max %d`, n, c, s.max)
		}
		if s.count.CompareExchange(&c, c+n, syncscope.Release, syncscope.Relaxed) {
			break
		}
	}
	// unconditional, as a waiter may have registered against any count
	if n == 1 {
		s.engine.NotifyOne(s.key())
	} else {
		s.engine.NotifyAll(s.key())
	}
}

// acquire decrements a positive count, giving up once the count is observed
// to be zero, or after retries failed attempts (if retries is non-negative).
func (s *Semaphore) acquire(retries int) bool {
	c := s.count.Load(syncscope.Relaxed)
	for i := 0; c > 0 && (retries < 0 || i < retries); i++ {
		if s.count.CompareExchange(&c, c-1, syncscope.Acquire, syncscope.Relaxed) {
			return true
		}
	}
	return false
}

func (s *Semaphore) available() bool {
	return s.count.Load(syncscope.Relaxed) > 0
}

func (s *Semaphore) key() unsafe.Pointer {
	return waitnotify.KeyOf(&s.count.Cell)
}

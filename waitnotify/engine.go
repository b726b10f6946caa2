package waitnotify

import (
	"math"
	"time"
	"unsafe"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/logiface"
)

// Engine blocks and wakes execution units waiting on keys, at one scope.
//
// An Engine holds no waiter state of its own, and any number of engines may
// be used on the same key: engines of the same scope share a wait table, and
// each parked ticket records the platform that must wake it.
type Engine struct {
	platform Platform
	logger   *logiface.Logger[logiface.Event]
	limiter  *catrate.Limiter
	metrics  *metrics
	table    *table
	name     string
	backoff  Backoff
	slowWait time.Duration
	scope    syncscope.Scope
	spin     bool
}

// New constructs an Engine. With no options, the engine waits at
// [syncscope.ScopeSystem], for callers on the [HostPlatform].
func New(opts ...Option) (*Engine, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		platform: cfg.platform,
		logger:   cfg.logger,
		table:    tableFor(cfg.scope),
		name:     cfg.name,
		backoff:  cfg.backoff,
		slowWait: cfg.slowWait,
		scope:    cfg.scope,
		spin:     !cfg.platform.Preemptible() || !cfg.scope.MayPark(),
	}
	if cfg.metricsEnabled {
		e.metrics = newMetrics()
	}
	if e.logger != nil && e.slowWait > 0 {
		e.limiter = newSlowWaitLimiter()
	}
	return e, nil
}

// Scope returns the scope of the engine.
func (e *Engine) Scope() syncscope.Scope { return e.scope }

// Platform returns the platform of the engine's callers.
func (e *Engine) Platform() Platform { return e.platform }

// Spins reports whether waits only ever spin, i.e. the scope is
// [syncscope.ScopeLane] or the platform is not preemptible.
func (e *Engine) Spins() bool { return e.spin }

// Name returns the name set by WithName.
func (e *Engine) Name() string { return e.name }

// Metrics returns a snapshot of the engine's statistics. It returns the zero
// value unless metrics were enabled with WithMetrics.
func (e *Engine) Metrics() Metrics { return e.metrics.snapshot() }

// Wait makes one attempt to wait on key until ready returns true, returning
// the final result of ready. It MAY return false spuriously, after at most
// one park.
//
// The ready function must be a cheap, side-effect free check of state that
// is changed before every corresponding notify of key.
func (e *Engine) Wait(key unsafe.Pointer, ready func() bool) bool {
	return e.attempt(key, ready, time.Time{})
}

// Await waits on key until ready returns true.
func (e *Engine) Await(key unsafe.Pointer, ready func() bool) {
	for !e.attempt(key, ready, time.Time{}) {
	}
}

// AwaitUntil waits on key until ready returns true, or the deadline passes,
// returning false in the latter case. A zero deadline never passes.
//
// The final check of ready happens after the deadline, so a change made
// before the deadline elapsed is always observed.
func (e *Engine) AwaitUntil(key unsafe.Pointer, ready func() bool, deadline time.Time) bool {
	for {
		if e.attempt(key, ready, deadline) {
			return true
		}
		if expired(deadline) {
			return ready()
		}
	}
}

// NotifyOne wakes the longest parked execution unit waiting on key, if any,
// returning the number woken.
func (e *Engine) NotifyOne(key unsafe.Pointer) int {
	return e.Notify(key, 1)
}

// NotifyAll wakes every execution unit parked on key, returning the number
// woken.
func (e *Engine) NotifyAll(key unsafe.Pointer) int {
	return e.Notify(key, math.MaxInt)
}

// Notify wakes up to n execution units parked on key, returning the number
// woken. It reaches units parked at the engine's scope or any narrower one,
// widest scope first, oldest first within a scope. It costs one atomic load
// per scope when no unit is parked on any key sharing the same buckets.
//
// Only units already registered are guaranteed to be woken, so the state
// that callers wait on must be changed before notifying.
func (e *Engine) Notify(key unsafe.Pointer, n int) int {
	if n <= 0 {
		return 0
	}
	syncscope.Fence(e.scope, syncscope.Release)
	var woken int
	for s := e.scope; woken < n; s-- {
		woken += tableFor(s).bucket(key).wake(key, n-woken)
		if s == syncscope.ScopeLane {
			break
		}
	}
	e.metrics.recordNotify(woken)
	return woken
}

// Waiters returns the number of execution units parked on key, that a
// notify through this engine would reach. Spinning waiters are not counted.
func (e *Engine) Waiters(key unsafe.Pointer) (n int) {
	for s := e.scope; ; s-- {
		n += tableFor(s).bucket(key).waiters(key)
		if s == syncscope.ScopeLane {
			return n
		}
	}
}

func (e *Engine) attempt(key unsafe.Pointer, ready func() bool, deadline time.Time) bool {
	if e.spin {
		return e.spinUntil(ready, deadline)
	}

	r := relaxer{max: e.backoff.MaxRelax}
	for i := 0; i < e.backoff.Polls; i++ {
		if ready() {
			e.metrics.recordOutcome(outcomeImmediate)
			return true
		}
		r.relax()
	}
	for i := 0; i < e.backoff.Yields; i++ {
		if ready() {
			e.metrics.recordOutcome(outcomeImmediate)
			return true
		}
		e.platform.Yield()
	}

	if expired(deadline) {
		if ready() {
			e.metrics.recordOutcome(outcomeImmediate)
			return true
		}
		e.metrics.recordOutcome(outcomeTimeout)
		return false
	}

	return e.park(key, ready, deadline)
}

func (e *Engine) park(key unsafe.Pointer, ready func() bool, deadline time.Time) bool {
	b := e.table.bucket(key)

	// registered before the final check, see the package docs
	b.register()
	if ready() {
		b.unregister()
		e.metrics.recordOutcome(outcomeImmediate)
		return true
	}
	t := newTicket(key, e.platform)
	b.enqueue(t)

	start := time.Now()
	e.platform.Park(t, deadline)
	if !t.Notified() {
		b.cancel(t)
	}
	parked := time.Since(start)

	var o outcome
	switch {
	case t.Notified():
		o = outcomeWoken
	case expired(deadline):
		o = outcomeTimeout
	default:
		o = outcomeSpurious
	}
	syncscope.Fence(e.scope, syncscope.Acquire)
	e.metrics.recordPark(parked)
	e.metrics.recordOutcome(o)
	e.logSlowWait(parked, o)

	return ready()
}

// spinUntil is the only strategy legal for non-preemptible callers, and
// never returns spuriously.
func (e *Engine) spinUntil(ready func() bool, deadline time.Time) bool {
	r := relaxer{max: e.backoff.MaxRelax}
	for {
		if ready() {
			e.metrics.recordOutcome(outcomeImmediate)
			return true
		}
		if expired(deadline) {
			if ready() {
				e.metrics.recordOutcome(outcomeImmediate)
				return true
			}
			e.metrics.recordOutcome(outcomeTimeout)
			return false
		}
		if r.relax() {
			e.platform.Yield()
		}
	}
}

func expired(deadline time.Time) bool {
	return !deadline.IsZero() && !time.Now().Before(deadline)
}

package waitnotify

import (
	"runtime"
	"sync/atomic"
	"time"
	"unsafe"
)

// Platform is the capability interface through which the engine suspends and
// resumes execution units. It is implemented by the execution substrate.
type Platform interface {
	// Preemptible reports whether execution units of this platform may
	// block. A non-preemptible platform is only ever asked to Yield.
	Preemptible() bool

	// Yield gives other execution units a chance to run.
	Yield()

	// Park suspends the caller until t is unparked, or the deadline (if
	// non-zero) passes. It may return early. If t has already been notified
	// it must return promptly.
	Park(t *Ticket, deadline time.Time)

	// Unpark makes a concurrent or subsequent Park of t return.
	Unpark(t *Ticket)
}

// ticket states, stored in Ticket.state
const (
	ticketWaiting uint32 = iota
	ticketNotified
	ticketCancelled
)

// Ticket is the registration of one parked execution unit.
//
// Platforms use it to implement Park and Unpark: Ticket.Signal provides a
// buffered channel, and Ticket.Word a 32-bit word suitable for futex style
// primitives, which is zero while the ticket is waiting.
type Ticket struct {
	ch       chan struct{}
	key      unsafe.Pointer
	platform Platform
	parked   time.Time
	state    uint32
}

func newTicket(key unsafe.Pointer, platform Platform) *Ticket {
	return &Ticket{
		ch:       make(chan struct{}, 1),
		key:      key,
		platform: platform,
	}
}

// Notified reports whether the ticket has been claimed by a notifier.
func (t *Ticket) Notified() bool {
	return atomic.LoadUint32(&t.state) == ticketNotified
}

// Waiting reports whether the ticket is still registered, and unclaimed.
func (t *Ticket) Waiting() bool {
	return atomic.LoadUint32(&t.state) == ticketWaiting
}

// Signal returns a channel with a buffer of one, for platforms that park on
// a channel receive.
func (t *Ticket) Signal() chan struct{} {
	return t.ch
}

// Word returns the state word of the ticket. It must only be read
// atomically.
func (t *Ticket) Word() *uint32 {
	return &t.state
}

func (t *Ticket) transition(from, to uint32) bool {
	return atomic.CompareAndSwapUint32(&t.state, from, to)
}

// HostPlatform parks goroutines on a per-ticket channel. It is the default
// platform.
type HostPlatform struct{}

var _ Platform = HostPlatform{}

// Preemptible implements Platform.
func (HostPlatform) Preemptible() bool { return true }

// Yield implements Platform.
func (HostPlatform) Yield() { runtime.Gosched() }

// Park implements Platform.
func (HostPlatform) Park(t *Ticket, deadline time.Time) {
	if !t.Waiting() {
		return
	}
	if deadline.IsZero() {
		<-t.ch
		return
	}
	d := time.Until(deadline)
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.ch:
	case <-timer.C:
	}
}

// Unpark implements Platform.
func (HostPlatform) Unpark(t *Ticket) {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

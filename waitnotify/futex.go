package waitnotify

import (
	"time"
)

// FutexPlatform parks on the ticket word with the futex system call, taking
// the goroutine's OS thread out of the runtime scheduler while it sleeps.
// It is available on Linux only, see NewFutexPlatform.
type FutexPlatform struct{}

var _ Platform = FutexPlatform{}

// NewFutexPlatform returns a FutexPlatform, or an error wrapping
// [syncscope.ErrUnsupported] if the operating system has no futex.
func NewFutexPlatform() (FutexPlatform, error) {
	if err := futexSupported(); err != nil {
		return FutexPlatform{}, err
	}
	return FutexPlatform{}, nil
}

// Preemptible implements Platform.
func (FutexPlatform) Preemptible() bool { return true }

// Yield implements Platform.
func (FutexPlatform) Yield() { osYield() }

// Park implements Platform.
func (FutexPlatform) Park(t *Ticket, deadline time.Time) {
	var timeout time.Duration
	if !deadline.IsZero() {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return
		}
	}
	futexWait(t.Word(), ticketWaiting, timeout)
}

// Unpark implements Platform.
func (FutexPlatform) Unpark(t *Ticket) {
	futexWake(t.Word(), 1)
}

package waitnotify

import (
	"fmt"

	"github.com/joeycumines/go-syncscope"
)

// Backoff configures the escalation ladder of a wait.
//
// The schedule is a tuning choice, not a contract: only eventual wakeup is
// guaranteed, for any valid Backoff.
type Backoff struct {
	// Polls is the number of condition checks made before the first yield.
	// Between checks the CPU is relaxed in bursts that double in length.
	Polls int

	// MaxRelax caps the length of a relax burst. It must be at least 1.
	MaxRelax int

	// Yields is the number of yields made before parking, on platforms that
	// may park.
	Yields int
}

// DefaultBackoff returns the backoff used when none is configured.
func DefaultBackoff() Backoff {
	return Backoff{
		Polls:    16,
		MaxRelax: 64,
		Yields:   4,
	}
}

func (x Backoff) validate() error {
	if x.Polls < 0 || x.Yields < 0 || x.MaxRelax < 1 {
		return fmt.Errorf(`waitnotify: invalid backoff %+v: %w`, x, syncscope.ErrInvalidOption)
	}
	return nil
}

// relaxer produces relax bursts of exponentially increasing length.
type relaxer struct {
	burst int
	max   int
}

// relax spins for one burst, returning true once bursts stop growing.
func (x *relaxer) relax() (saturated bool) {
	if x.burst == 0 {
		x.burst = 1
	}
	for i := 0; i < x.burst; i++ {
		cpuRelax()
	}
	if x.burst < x.max {
		x.burst <<= 1
		if x.burst > x.max {
			x.burst = x.max
		}
		return false
	}
	return true
}

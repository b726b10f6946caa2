package lanes

import (
	"runtime"
	"time"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/waitnotify"
)

type platform struct{}

// Platform returns the waitnotify platform of lanes, which is not
// preemptible. It yields with [runtime.Gosched], and panics with a
// [*syncscope.ContractViolation] if asked to park.
func Platform() waitnotify.Platform { return platform{} }

func (platform) Preemptible() bool { return false }

func (platform) Yield() { runtime.Gosched() }

func (platform) Park(*waitnotify.Ticket, time.Time) {
	syncscope.Violate(`lanes.park`, `lanes must not park`)
}

func (platform) Unpark(*waitnotify.Ticket) {}

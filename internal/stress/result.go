package stress

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joeycumines/go-syncscope/waitnotify"
)

// maxFailures caps the failures retained in a Result, beyond which they are
// only counted.
const maxFailures = 16

// Result summarizes one scenario run.
type Result struct {
	Config     Config
	Elapsed    time.Duration
	Operations int64
	// Metrics is only populated if Config.Metrics is set.
	Metrics waitnotify.Metrics
	// Failures counts invariant failures, Err holds the first few.
	Failures int64
	Err      error
}

// OK reports whether no invariant failed.
func (r *Result) OK() bool { return r.Failures == 0 }

// Throughput is the number of operations per second.
func (r *Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Operations) / r.Elapsed.Seconds()
}

// failures collects invariant failures from concurrent workers.
type failures struct {
	mu    sync.Mutex
	count int64
	err   *multierror.Error
}

func (x *failures) add(format string, args ...any) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.count++
	if x.count <= maxFailures {
		x.err = multierror.Append(x.err, fmt.Errorf(format, args...))
	}
}

func (x *failures) result() (int64, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.count, x.err.ErrorOrNil()
}

package waitnotify

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is an io.Writer safe for concurrent use.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (x *lockedBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.Write(p)
}

func (x *lockedBuffer) String() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.String()
}

func (x *lockedBuffer) Count(substr string) int {
	return strings.Count(x.String(), substr)
}

func newTestLogger(w *lockedBuffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelTrace),
	).Logger()
}

// recordingPlatform counts calls, parking like HostPlatform.
type recordingPlatform struct {
	preemptible bool
	yields      atomic.Int64
	parks       atomic.Int64
	unparks     atomic.Int64
}

func (x *recordingPlatform) Preemptible() bool { return x.preemptible }

func (x *recordingPlatform) Yield() {
	x.yields.Add(1)
	HostPlatform{}.Yield()
}

func (x *recordingPlatform) Park(t *Ticket, deadline time.Time) {
	x.parks.Add(1)
	HostPlatform{}.Park(t, deadline)
}

func (x *recordingPlatform) Unpark(t *Ticket) {
	x.unparks.Add(1)
	HostPlatform{}.Unpark(t)
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func newKey() unsafe.Pointer {
	return unsafe.Pointer(new(uint64))
}

// waitForWaiters blocks until n execution units are parked on key.
func waitForWaiters(t *testing.T, e *Engine, key unsafe.Pointer, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.Waiters(key) == n
	}, 5*time.Second, time.Millisecond, "expected %d waiters", n)
}

func expectViolation(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		cv := syncscope.AsContractViolation(recover())
		require.NotNil(t, cv, "expected a contract violation")
		require.Equal(t, op, cv.Op)
	}()
	fn()
}

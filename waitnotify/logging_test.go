package waitnotify

import (
	"testing"
	"time"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/atomiccell"
	"github.com/stretchr/testify/assert"
)

func TestEngine_SlowWaitLoggingIsRateLimited(t *testing.T) {
	var buf lockedBuffer
	e := newTestEngine(t,
		WithLogger(newTestLogger(&buf)),
		WithSlowWaitThreshold(time.Nanosecond),
		WithName("slow"),
	)
	key := newKey()

	for i := 0; i < 8; i++ {
		assert.False(t, e.AwaitUntil(key, func() bool { return false }, time.Now().Add(5*time.Millisecond)))
	}

	out := buf.String()
	assert.Equal(t, slowWaitRates[time.Second], buf.Count(`waitnotify: slow wait`), out)
	assert.Contains(t, out, `"engine":"slow"`)
	assert.Contains(t, out, `"outcome":"timeout"`)
	assert.Contains(t, out, `"lvl":"warning"`)
}

func TestEngine_SlowWaitLoggingDisabled(t *testing.T) {
	var buf lockedBuffer
	e := newTestEngine(t, WithLogger(newTestLogger(&buf)))
	assert.False(t, e.AwaitUntil(newKey(), func() bool { return false }, time.Now().Add(time.Millisecond)))
	assert.Empty(t, buf.String())
}

func TestEngine_ViolateLogsCritical(t *testing.T) {
	var buf lockedBuffer
	e := newTestEngine(t, WithLogger(newTestLogger(&buf)), WithName("strict"))
	c := atomiccell.New[int64](0, syncscope.ScopeGroup)

	expectViolation(t, `waitnotify.wait_value`, func() { WaitValue(e, c, 0) })

	out := buf.String()
	assert.Contains(t, out, `"lvl":"crit"`)
	assert.Contains(t, out, `"op":"waitnotify.wait_value"`)
	assert.Contains(t, out, `cell scope group does not cover engine scope system`)
}

func TestEngine_ViolateWithoutLogger(t *testing.T) {
	e := newTestEngine(t)
	expectViolation(t, `x`, func() { e.Violate(`x`, `n=%d`, 3) })
}

package stress

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/joeycumines/go-syncscope/waitnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	platforms := []string{PlatformHost, PlatformLane}
	if runtime.GOOS == "linux" {
		platforms = append(platforms, PlatformFutex)
	}
	for _, primitive := range []string{PrimitiveSemaphore, PrimitiveLatch, PrimitiveBarrier} {
		for _, platform := range platforms {
			for _, scope := range []string{"group", "system"} {
				t.Run(primitive+"/"+platform+"/"+scope, func(t *testing.T) {
					cfg := DefaultConfig()
					cfg.Primitive = primitive
					cfg.Platform = platform
					cfg.Scope = scope
					cfg.Workers = 4
					cfg.Groups = 2
					cfg.Iterations = 50
					cfg.Metrics = true
					r, err := Run(context.Background(), cfg, nil)
					require.NoError(t, err)
					require.NoError(t, r.Err)
					assert.True(t, r.OK())
					assert.Equal(t, int64(cfg.Workers*cfg.Iterations), r.Operations)
					assert.Greater(t, r.Throughput(), 0.0)
					if platform == PlatformLane {
						assert.Zero(t, r.Metrics.Parks)
					}
				})
			}
		}
	}
}

func TestRun_invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	r, err := Run(context.Background(), cfg, nil)
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestRun_cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, primitive := range []string{PrimitiveSemaphore, PrimitiveLatch, PrimitiveBarrier} {
		cfg := DefaultConfig()
		cfg.Primitive = primitive
		_, err := Run(ctx, cfg, nil)
		assert.True(t, errors.Is(err, context.Canceled), primitive)
	}
}

func TestFailures(t *testing.T) {
	var f failures
	for i := 0; i < maxFailures+5; i++ {
		f.add("failure %d", i)
	}
	n, err := f.result()
	assert.Equal(t, int64(maxFailures+5), n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failure 0")
	assert.NotContains(t, err.Error(), "failure 20")

	r := Result{Failures: n, Metrics: waitnotify.Metrics{}}
	assert.False(t, r.OK())
	assert.Zero(t, r.Throughput())
}

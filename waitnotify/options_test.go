package waitnotify

import (
	"errors"
	"testing"

	"github.com/joeycumines/go-syncscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOptions_Defaults(t *testing.T) {
	cfg, err := resolveOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, syncscope.ScopeSystem, cfg.scope)
	assert.Equal(t, HostPlatform{}, cfg.platform)
	assert.Equal(t, DefaultBackoff(), cfg.backoff)
	assert.False(t, cfg.metricsEnabled)
	assert.Nil(t, cfg.logger)
	assert.Zero(t, cfg.slowWait)
}

func TestResolveOptions_SkipsNil(t *testing.T) {
	cfg, err := resolveOptions([]Option{nil, WithName("x"), nil, WithMetrics(true)})
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.name)
	assert.True(t, cfg.metricsEnabled)
}

func TestNew_InvalidOptions(t *testing.T) {
	for _, tc := range [...]struct {
		name   string
		option Option
		target error
	}{
		{"scope", WithScope(syncscope.Scope(17)), syncscope.ErrInvalidScope},
		{"platform", WithPlatform(nil), syncscope.ErrInvalidOption},
		{"backoff relax", WithBackoff(Backoff{Polls: 1, MaxRelax: 0}), syncscope.ErrInvalidOption},
		{"backoff polls", WithBackoff(Backoff{Polls: -1, MaxRelax: 1}), syncscope.ErrInvalidOption},
		{"backoff yields", WithBackoff(Backoff{MaxRelax: 1, Yields: -3}), syncscope.ErrInvalidOption},
		{"slow wait", WithSlowWaitThreshold(-1), syncscope.ErrInvalidOption},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e, err := New(tc.option)
			assert.Nil(t, e)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.target), "%v", err)
		})
	}
}

func TestNew_Strategy(t *testing.T) {
	for _, tc := range [...]struct {
		scope       syncscope.Scope
		preemptible bool
		spins       bool
	}{
		{syncscope.ScopeLane, true, true},
		{syncscope.ScopeGroup, true, false},
		{syncscope.ScopeDevice, true, false},
		{syncscope.ScopeSystem, true, false},
		{syncscope.ScopeLane, false, true},
		{syncscope.ScopeGroup, false, true},
		{syncscope.ScopeSystem, false, true},
	} {
		e := newTestEngine(t,
			WithScope(tc.scope),
			WithPlatform(&recordingPlatform{preemptible: tc.preemptible}),
		)
		assert.Equal(t, tc.spins, e.Spins(), "scope=%s preemptible=%v", tc.scope, tc.preemptible)
		assert.Equal(t, tc.scope, e.Scope())
	}
}

func TestBackoff_Relaxer(t *testing.T) {
	require.NoError(t, DefaultBackoff().validate())

	r := relaxer{max: 8}
	var bursts []int
	for i := 0; i < 6; i++ {
		saturated := r.relax()
		bursts = append(bursts, r.burst)
		assert.Equal(t, i >= 3, saturated, "relax %d", i)
	}
	assert.Equal(t, []int{2, 4, 8, 8, 8, 8}, bursts)

	r = relaxer{max: 1}
	assert.True(t, r.relax())
}

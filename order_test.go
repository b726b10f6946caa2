package syncscope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// violation runs fn, returning the contract violation it panicked with, if any.
func violation(fn func()) (cv *ContractViolation) {
	defer func() {
		if r := recover(); r != nil {
			cv = AsContractViolation(r)
			if cv == nil {
				panic(r)
			}
		}
	}()
	fn()
	return nil
}

func TestOrder_Semantics(t *testing.T) {
	tests := []struct {
		order    Order
		name     string
		acquires bool
		releases bool
	}{
		{Relaxed, "relaxed", false, false},
		{Acquire, "acquire", true, false},
		{Release, "release", false, true},
		{AcqRel, "acq_rel", true, true},
		{SeqCst, "seq_cst", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.order.Valid())
			assert.Equal(t, tt.name, tt.order.String())
			assert.Equal(t, tt.acquires, tt.order.Acquires())
			assert.Equal(t, tt.releases, tt.order.Releases())
		})
	}
	assert.False(t, Order(5).Valid())
	assert.Equal(t, "Order(5)", Order(5).String())
}

func TestOrder_Checks(t *testing.T) {
	tests := []struct {
		order Order
		load  bool
		store bool
	}{
		{Relaxed, true, true},
		{Acquire, true, false},
		{Release, false, true},
		{AcqRel, false, false},
		{SeqCst, true, true},
		{Order(7), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			cv := violation(func() { tt.order.CheckLoad("load") })
			assert.Equal(t, !tt.load, cv != nil)
			if cv != nil {
				assert.Equal(t, "load", cv.Op)
			}
			cv = violation(func() { tt.order.CheckStore("store") })
			assert.Equal(t, !tt.store, cv != nil)
			cv = violation(func() { tt.order.CheckRMW("rmw") })
			assert.Equal(t, !tt.order.Valid(), cv != nil)
		})
	}
}

func TestCheckCompareExchange(t *testing.T) {
	assert.Nil(t, violation(func() { CheckCompareExchange("cas", AcqRel, Acquire) }))
	assert.Nil(t, violation(func() { CheckCompareExchange("cas", SeqCst, Relaxed) }))

	cv := violation(func() { CheckCompareExchange("cas", SeqCst, Release) })
	require.NotNil(t, cv)
	assert.Contains(t, cv.Message, "failure ordering release")

	cv = violation(func() { CheckCompareExchange("cas", Order(99), Relaxed) })
	require.NotNil(t, cv)
	assert.Equal(t, "cas", cv.Op)
}

func TestFence(t *testing.T) {
	before := fenceWords[ScopeSystem].v.Load()
	Fence(ScopeSystem, SeqCst)
	Fence(ScopeSystem, Relaxed)
	Fence(ScopeLane, SeqCst)
	Fence(ScopeGroup, AcqRel)
	assert.Equal(t, before+1, fenceWords[ScopeSystem].v.Load())

	before = fenceWords[ScopeDevice].v.Load()
	Fence(ScopeDevice, Release)
	assert.Equal(t, before+1, fenceWords[ScopeDevice].v.Load())

	require.NotNil(t, violation(func() { Fence(ScopeSystem, Order(12)) }))
	require.NotNil(t, violation(func() { Fence(Scope(12), SeqCst) }))
}

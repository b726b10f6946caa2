package syncscope

import (
	"sync/atomic"
)

// fenceWords are the targets of scope fences, one per scope, each on its own
// cache line.
var fenceWords [NumScopes]struct {
	v atomic.Uint64
	_ [cacheLineSize - 8]byte
}

// cacheLineSize is the padding unit used by fenceWords, see also
// atomiccell.Padded.
const cacheLineSize = 128

// Fence emits a fence for the given scope and ordering.
//
// Relaxed fences, and fences at ScopeLane or ScopeGroup, are no-ops: every
// participant at those scopes already shares a coherent view through the
// atomics they synchronize on. Device and system fences perform an atomic
// read-modify-write, which takes a position in the single total order of
// sync/atomic operations.
func Fence(scope Scope, order Order) {
	if !order.Valid() {
		Violate(`fence`, `invalid fence ordering %s`, order)
	}
	if order == Relaxed || scope < ScopeDevice {
		return
	}
	fenceWords[scope.Index()].v.Add(1)
}

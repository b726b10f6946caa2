package atomiccell

import (
	"sync/atomic"

	"github.com/joeycumines/go-syncscope"
	"golang.org/x/exp/constraints"
)

type (
	// Signed is the set of signed value types a Cell may hold. Overflow of
	// these is a contract violation.
	Signed interface {
		constraints.Signed
		~int32 | ~int64
	}

	// Unsigned is the set of unsigned value types a Cell may hold. These wrap
	// on overflow.
	Unsigned interface {
		constraints.Unsigned
		~uint32 | ~uint64 | ~uintptr
	}

	// Integer is the set of value types a Cell may hold.
	Integer interface {
		Signed | Unsigned
	}
)

// Cell is an atomic integer slot tagged with a [syncscope.Scope].
//
// The zero value holds 0 at [syncscope.ScopeLane]. A Cell must not be
// copied after first use.
type Cell[T Integer] struct {
	_     syncscope.NoCopy
	v     atomic.Uint64
	scope syncscope.Scope
}

// New allocates a Cell holding v, tagged with scope s.
func New[T Integer](v T, s syncscope.Scope) *Cell[T] {
	c := new(Cell[T])
	c.Init(v, s)
	return c
}

// Init sets the initial value and scope of an embedded Cell. It must be
// called before the Cell is shared.
func (c *Cell[T]) Init(v T, s syncscope.Scope) {
	if !s.Valid() {
		syncscope.Violate(`atomiccell.init`, `invalid scope %d`, uint8(s))
	}
	c.scope = s
	c.v.Store(uint64(v))
}

// Scope returns the scope the cell was tagged with.
func (c *Cell[T]) Scope() syncscope.Scope {
	return c.scope
}

// Load atomically reads the value.
func (c *Cell[T]) Load(o syncscope.Order) T {
	o.CheckLoad(`atomiccell.load`)
	return T(c.v.Load())
}

// Store atomically writes v.
func (c *Cell[T]) Store(v T, o syncscope.Order) {
	o.CheckStore(`atomiccell.store`)
	c.v.Store(uint64(v))
}

// Exchange atomically writes v, returning the previous value.
func (c *Cell[T]) Exchange(v T, o syncscope.Order) T {
	o.CheckRMW(`atomiccell.exchange`)
	return T(c.v.Swap(uint64(v)))
}

// CompareExchange writes desired if the cell holds *expected, reporting
// success. On failure, *expected is updated with the observed value.
func (c *Cell[T]) CompareExchange(expected *T, desired T, success, failure syncscope.Order) bool {
	syncscope.CheckCompareExchange(`atomiccell.compare_exchange`, success, failure)
	old := uint64(*expected)
	for {
		if c.v.CompareAndSwap(old, uint64(desired)) {
			return true
		}
		// the observed value must differ from expected on failure
		observed := c.v.Load()
		if observed != old {
			*expected = T(observed)
			return false
		}
	}
}

// FetchAdd atomically adds delta, returning the previous value.
//
// Unsigned values wrap on overflow. Signed overflow is a contract violation,
// detected before the store.
func (c *Cell[T]) FetchAdd(delta T, o syncscope.Order) T {
	o.CheckRMW(`atomiccell.fetch_add`)
	return c.update(func(old T) T {
		sum := old + delta
		if isSigned[T]() && (delta > 0 && sum < old || delta < 0 && sum > old) {
			syncscope.Violate(`atomiccell.fetch_add`, `signed overflow adding %d to %d`, int64(delta), int64(old))
		}
		return sum
	})
}

// FetchSub atomically subtracts delta, returning the previous value. Overflow
// is treated as for [Cell.FetchAdd].
func (c *Cell[T]) FetchSub(delta T, o syncscope.Order) T {
	o.CheckRMW(`atomiccell.fetch_sub`)
	return c.update(func(old T) T {
		diff := old - delta
		if isSigned[T]() && (delta > 0 && diff > old || delta < 0 && diff < old) {
			syncscope.Violate(`atomiccell.fetch_sub`, `signed overflow subtracting %d from %d`, int64(delta), int64(old))
		}
		return diff
	})
}

// FetchAnd atomically applies a bitwise and, returning the previous value.
func (c *Cell[T]) FetchAnd(mask T, o syncscope.Order) T {
	o.CheckRMW(`atomiccell.fetch_and`)
	return c.update(func(old T) T { return old & mask })
}

// FetchOr atomically applies a bitwise or, returning the previous value.
func (c *Cell[T]) FetchOr(mask T, o syncscope.Order) T {
	o.CheckRMW(`atomiccell.fetch_or`)
	return c.update(func(old T) T { return old | mask })
}

// FetchXor atomically applies a bitwise xor, returning the previous value.
func (c *Cell[T]) FetchXor(mask T, o syncscope.Order) T {
	o.CheckRMW(`atomiccell.fetch_xor`)
	return c.update(func(old T) T { return old ^ mask })
}

// Addr returns the address of the underlying word, as an identity for wait
// tables. It must not be used to access the value.
func (c *Cell[T]) Addr() *atomic.Uint64 {
	return &c.v
}

func (c *Cell[T]) update(fn func(old T) T) T {
	for {
		raw := c.v.Load()
		old := T(raw)
		if c.v.CompareAndSwap(raw, uint64(fn(old))) {
			return old
		}
	}
}

// isSigned reports whether T is in Signed.
func isSigned[T Integer]() bool {
	var zero T
	return ^zero < zero
}

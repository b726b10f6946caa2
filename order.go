package syncscope

import (
	"fmt"
)

// Order is the memory ordering requested for an atomic operation.
//
// Every legal ordering is implemented with sync/atomic, which is
// sequentially consistent, so an operation is always at least as strong as
// requested. Orderings are still validated: a load may not release, and a
// store may not acquire.
type Order uint8

const (
	Relaxed Order = iota
	Acquire
	Release
	AcqRel
	SeqCst
)

// String returns a human-readable representation of the ordering.
func (o Order) String() string {
	switch o {
	case Relaxed:
		return "relaxed"
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	case AcqRel:
		return "acq_rel"
	case SeqCst:
		return "seq_cst"
	default:
		return fmt.Sprintf("Order(%d)", uint8(o))
	}
}

// Valid reports whether o is one of the defined orderings.
func (o Order) Valid() bool {
	return o <= SeqCst
}

// Acquires reports whether o has acquire semantics.
func (o Order) Acquires() bool {
	return o == Acquire || o == AcqRel || o == SeqCst
}

// Releases reports whether o has release semantics.
func (o Order) Releases() bool {
	return o == Release || o == AcqRel || o == SeqCst
}

// CheckLoad panics with a [*ContractViolation] unless o is legal for a load.
func (o Order) CheckLoad(op string) {
	if !o.Valid() || o == Release || o == AcqRel {
		Violate(op, `invalid load ordering %s`, o)
	}
}

// CheckStore panics with a [*ContractViolation] unless o is legal for a
// store.
func (o Order) CheckStore(op string) {
	if !o.Valid() || o == Acquire || o == AcqRel {
		Violate(op, `invalid store ordering %s`, o)
	}
}

// CheckRMW panics with a [*ContractViolation] unless o is legal for a
// read-modify-write.
func (o Order) CheckRMW(op string) {
	if !o.Valid() {
		Violate(op, `invalid read-modify-write ordering %s`, o)
	}
}

// CheckCompareExchange panics with a [*ContractViolation] unless the pair of
// orderings is legal for a compare-exchange. The failure ordering is a load.
func CheckCompareExchange(op string, success, failure Order) {
	success.CheckRMW(op)
	if !failure.Valid() || failure == Release || failure == AcqRel {
		Violate(op, `invalid compare-exchange failure ordering %s`, failure)
	}
}

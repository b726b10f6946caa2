package syncscope

import (
	"fmt"
)

// Scope is the maximum locality distance between a signaler and a waiter
// that an operation must bridge.
//
// Scopes are ordered, from the narrowest to the widest:
//
//	ScopeLane (0) < ScopeGroup (1) < ScopeDevice (2) < ScopeSystem (3)
//
// A primitive constructed with a given scope is only required to wake
// waiters that share that scope's reach. ScopeLane waiters never park.
type Scope uint8

const (
	// ScopeLane covers a single execution lane and the lanes that share its
	// fast local memory. Waits at this scope are always spins.
	ScopeLane Scope = iota
	// ScopeGroup covers a locality group, e.g. one core group on a device.
	ScopeGroup
	// ScopeDevice covers every execution unit of one device.
	ScopeDevice
	// ScopeSystem covers every execution unit in the process, host and
	// device alike.
	ScopeSystem
)

// NumScopes is the number of valid scopes, for sizing per-scope arrays.
const NumScopes = int(ScopeSystem) + 1

// Scopes returns every valid scope, narrowest first.
func Scopes() []Scope {
	return []Scope{ScopeLane, ScopeGroup, ScopeDevice, ScopeSystem}
}

// String returns a human-readable representation of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeLane:
		return "lane"
	case ScopeGroup:
		return "group"
	case ScopeDevice:
		return "device"
	case ScopeSystem:
		return "system"
	default:
		return fmt.Sprintf("Scope(%d)", uint8(s))
	}
}

// Valid reports whether s is one of the defined scopes.
func (s Scope) Valid() bool {
	return int(s) < NumScopes
}

// Covers reports whether s reaches at least as far as other.
func (s Scope) Covers(other Scope) bool {
	return s >= other
}

// MayPark reports whether waits at this scope may ever park the caller.
func (s Scope) MayPark() bool {
	return s != ScopeLane
}

// Index returns s as a dense, zero-based index, suitable for per-scope
// arrays. It panics with a [*ContractViolation] if s is invalid.
func (s Scope) Index() int {
	if !s.Valid() {
		Violate(`scope`, `invalid scope %d`, uint8(s))
	}
	return int(s)
}

// ParseScope parses the String form of a scope.
func ParseScope(str string) (Scope, error) {
	for _, s := range Scopes() {
		if s.String() == str {
			return s, nil
		}
	}
	return 0, fmt.Errorf(`syncscope: unknown scope %q: %w`, str, ErrInvalidScope)
}

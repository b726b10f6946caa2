package barrier

import (
	"math"
)

// State is the state of a barrier's current generation.
//
// State Machine:
//
//	Filling(phase, remaining) → Completing(phase)   [last arrival, via CAS]
//	Completing(phase) → Filling(phase+1, expected)  [after the completion function]
//
// Both the state and the phase live in a single word, so the phase boundary
// (reset of the remaining count, and advance of the phase) is one atomic
// store.
type State uint8

const (
	// Filling indicates that arrivals are being accepted.
	Filling State = iota
	// Completing indicates that the last participant has arrived, and the
	// completion function is running.
	Completing
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case Filling:
		return "Filling"
	case Completing:
		return "Completing"
	default:
		return "Unknown"
	}
}

// MaxParticipants is the largest supported participant count.
const MaxParticipants = math.MaxInt32

// completing is the value of the remaining half of the word while the
// completion function runs.
const completing = math.MaxUint32

// word is the packed barrier state: the phase in the high 32 bits, and the
// remaining count (or completing) in the low 32 bits.
type word uint64

func packWord(phase uint32, remaining uint32) word {
	return word(uint64(phase)<<32 | uint64(remaining))
}

func (w word) phase() uint32 { return uint32(w >> 32) }

func (w word) remaining() uint32 { return uint32(w) }

func (w word) state() State {
	if w.remaining() == completing {
		return Completing
	}
	return Filling
}

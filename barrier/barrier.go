// Package barrier implements a reusable rendezvous point for a fixed number
// of participants, with an optional completion function run once per
// generation.
package barrier

import (
	"fmt"
	"unsafe"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/atomiccell"
	"github.com/joeycumines/go-syncscope/waitnotify"
)

// Token identifies the generation an arrival was counted in, see
// Barrier.Wait.
type Token struct {
	phase uint32
}

// Phase returns the phase of the generation the arrival was counted in.
func (t Token) Phase() uint32 { return t.phase }

// Barrier is a reusable rendezvous point.
//
// Each generation (phase) completes once the expected number of arrivals
// is counted. The last arriving participant runs the completion function,
// then resets the count and advances the phase, releasing every waiter.
//
// The phase is a 32 bit counter, that wraps. A Barrier must not be copied
// after first use.
type Barrier struct {
	_          syncscope.NoCopy
	word       atomiccell.Padded[uint64]
	expected   atomiccell.Cell[int64]
	completion func()
	engine     *waitnotify.Engine
}

// New constructs a Barrier for the given number of participants, which must
// be in [1, MaxParticipants]. The completion function is optional. It must
// not block indefinitely, or arrive at or wait on the same barrier, and a
// panic from it leaves the barrier unusable.
func New(participants int64, completion func(), opts ...waitnotify.Option) (*Barrier, error) {
	if participants < 1 || participants > MaxParticipants {
		return nil, fmt.Errorf(`barrier: participants %d: %w`, participants, syncscope.ErrInvalidCount)
	}
	engine, err := waitnotify.New(opts...)
	if err != nil {
		return nil, err
	}
	b := &Barrier{
		completion: completion,
		engine:     engine,
	}
	b.word.Init(uint64(packWord(0, uint32(participants))), engine.Scope())
	b.expected.Init(participants, engine.Scope())
	return b, nil
}

// Max returns MaxParticipants.
func (b *Barrier) Max() int64 { return MaxParticipants }

// Phase returns the current phase.
func (b *Barrier) Phase() uint32 { return b.load().phase() }

// State returns the state of the current generation.
func (b *Barrier) State() State { return b.load().state() }

// Remaining returns the number of arrivals the current generation still
// needs, or zero while completing. It is intended for diagnostics.
func (b *Barrier) Remaining() int64 {
	w := b.load()
	if w.state() == Completing {
		return 0
	}
	return int64(w.remaining())
}

// Expected returns the number of participants of the next generation.
func (b *Barrier) Expected() int64 { return b.expected.Load(syncscope.Relaxed) }

// Engine returns the wait/notify engine of the barrier.
func (b *Barrier) Engine() *waitnotify.Engine { return b.engine }

// Arrive counts n arrivals in the current generation, returning a token for
// Wait. It never blocks, though the last arrival runs the completion
// function before returning.
//
// It is a contract violation to arrive with n < 1, with n greater than the
// remaining count of the generation, or while the completion function runs.
func (b *Barrier) Arrive(n int64) Token {
	var committed bool
	return b.arrive(n, &committed)
}

// arrive sets committed once the arrivals are counted, before any completion
// function runs.
func (b *Barrier) arrive(n int64, committed *bool) Token {
	if n < 1 {
		b.engine.Violate(`barrier.arrive`, `invalid arrival count %d`, n)
	}
	raw := b.word.Load(syncscope.Relaxed)
	for {
		w := word(raw)
		if w.state() == Completing {
			b.engine.Violate(`barrier.arrive`, `arrival during completion of phase %d`, w.phase())
		}
		remaining := int64(w.remaining())
		if n > remaining {
			b.engine.Violate(`barrier.arrive`, `arrival of %d exceeds remaining %d in phase %d`, n, remaining, w.phase())
		}
		next := packWord(w.phase(), uint32(remaining-n))
		if remaining == n {
			next = packWord(w.phase(), completing)
		}
		if b.word.CompareExchange(&raw, uint64(next), syncscope.AcqRel, syncscope.Relaxed) {
			*committed = true
			if remaining == n {
				b.complete(w.phase())
			}
			return Token{phase: w.phase()}
		}
	}
}

// Wait blocks until the generation identified by the token has completed.
func (b *Barrier) Wait(token Token) {
	b.engine.Await(b.key(), func() bool { return b.load().phase() != token.phase })
}

// ArriveAndWait arrives once, then waits for the generation to complete.
func (b *Barrier) ArriveAndWait() {
	b.Wait(b.Arrive(1))
}

// ArriveAndDrop arrives once, and removes one participant from every
// following generation. If the arrival is a contract violation, the
// participant is not removed.
func (b *Barrier) ArriveAndDrop() {
	if b.expected.FetchSub(1, syncscope.AcqRel) < 1 {
		b.expected.FetchAdd(1, syncscope.AcqRel)
		b.engine.Violate(`barrier.arrive_and_drop`, `no participants remain to drop`)
	}
	// expected must be reduced before the arrival, which may complete the
	// generation and read it
	var committed bool
	defer func() {
		if !committed {
			b.expected.FetchAdd(1, syncscope.AcqRel)
		}
	}()
	b.arrive(1, &committed)
}

func (b *Barrier) complete(phase uint32) {
	if b.completion != nil {
		b.completion()
	}
	// the next generation's count and phase are published together
	expected := b.expected.Load(syncscope.Acquire)
	b.word.Store(uint64(packWord(phase+1, uint32(expected))), syncscope.Release)
	b.engine.NotifyAll(b.key())
}

func (b *Barrier) load() word {
	return word(b.word.Load(syncscope.Acquire))
}

func (b *Barrier) key() unsafe.Pointer {
	return waitnotify.KeyOf(&b.word.Cell)
}

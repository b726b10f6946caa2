package waitnotify

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/eapache/queue"
	"github.com/joeycumines/go-syncscope"
	"golang.org/x/sys/cpu"
)

const (
	tableBits    = 8
	tableBuckets = 1 << tableBits
)

// tables holds one wait table per scope. Tickets register in the table of
// their engine's scope, and notification at a scope walks that table and
// every narrower one.
var tables [syncscope.NumScopes]table

type (
	table [tableBuckets]bucket

	// bucket is a FIFO of parked tickets for every key hashing to it.
	// The waiter count is read without the lock by notifiers.
	bucket struct { // betteralign:ignore
		_     cpu.CacheLinePad
		nwait atomic.Int64
		mu    sync.Mutex
		q     *queue.Queue
	}
)

func tableFor(s syncscope.Scope) *table {
	return &tables[s.Index()]
}

func (x *table) bucket(key unsafe.Pointer) *bucket {
	// fibonacci hashing, so keys of adjacent words spread out
	h := uint64(uintptr(key)) * 0x9E3779B97F4A7C15
	return &x[h>>(64-tableBits)]
}

// register prepares to park, and must be followed by enqueue or unregister,
// with the lock still held.
func (x *bucket) register() {
	x.mu.Lock()
	x.nwait.Add(1)
}

func (x *bucket) unregister() {
	x.nwait.Add(-1)
	x.mu.Unlock()
}

func (x *bucket) enqueue(t *Ticket) {
	if x.q == nil {
		x.q = queue.New()
	}
	x.q.Add(t)
	x.mu.Unlock()
}

// cancel withdraws a ticket that is still waiting, returning false if a
// notifier claimed it first.
func (x *bucket) cancel(t *Ticket) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !t.transition(ticketWaiting, ticketCancelled) {
		return false
	}
	for n := x.q.Length(); n > 0; n-- {
		if v := x.q.Remove(); v != t {
			x.q.Add(v)
		}
	}
	x.nwait.Add(-1)
	return true
}

// wake claims and unparks up to n tickets registered on key, oldest first.
func (x *bucket) wake(key unsafe.Pointer, n int) (woken int) {
	if x.nwait.Load() == 0 {
		return 0
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.q == nil {
		return 0
	}
	for l := x.q.Length(); l > 0; l-- {
		t := x.q.Remove().(*Ticket)
		if woken < n && t.key == key && t.transition(ticketWaiting, ticketNotified) {
			x.nwait.Add(-1)
			t.platform.Unpark(t)
			woken++
			continue
		}
		x.q.Add(t)
	}
	return woken
}

// waiters returns the number of tickets parked on key, for diagnostics.
func (x *bucket) waiters(key unsafe.Pointer) (n int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.q == nil {
		return 0
	}
	for i := 0; i < x.q.Length(); i++ {
		if x.q.Get(i).(*Ticket).key == key {
			n++
		}
	}
	return n
}

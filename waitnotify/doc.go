// Package waitnotify implements the scope-aware wait/notify engine that every
// blocking primitive in this module is built on.
//
// An [Engine] is bound to one [syncscope.Scope] and one [Platform] at
// construction. Together they select the wait strategy:
//
//   - spin: poll, relax the CPU with exponentially growing bursts, then
//     yield, forever or until a deadline. Used for [syncscope.ScopeLane],
//     and for any platform that reports itself as non-preemptible.
//   - block: a bounded poll, a bounded number of yields, then the caller
//     registers a [Ticket] in the wait table of its scope and parks.
//
// Waiters are identified by key, the address of the word they watch. Keys
// hash into fixed per-scope tables of buckets, each holding a FIFO queue of
// parked tickets. Notification wakes tickets registered on exactly the
// notified key, at the notifier's scope or narrower, in arrival order per
// scope. It costs one atomic load per covered scope when nobody is parked.
// A narrower notify may miss waiters of a wider scope, but a
// [syncscope.ScopeSystem] notify reaches every parked waiter.
//
// The low-level [Engine.Wait] and [WaitValue] may return spuriously, and
// callers must re-check their condition in a loop. [Engine.Await] and
// [Engine.AwaitUntil] perform that loop.
//
// # Missed wakeups
//
// A parking waiter increments its bucket's waiter count under the bucket
// lock, then re-checks its condition, and only then enqueues itself. A
// notifier changes the watched word first, then loads the waiter count. As
// both sides use sequentially consistent atomics, either the waiter observes
// the change, or the notifier observes the waiter and serializes on the
// bucket lock behind its registration.
package waitnotify

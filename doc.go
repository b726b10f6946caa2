// Package syncscope holds the vocabulary shared by the synchronization
// primitives in this module: thread scopes, memory orderings, scope fences,
// and the contract violation panic value.
//
// # Layout
//
// The module is organized leaf-first:
//   - [github.com/joeycumines/go-syncscope/atomiccell]: atomic storage
//   - [github.com/joeycumines/go-syncscope/waitnotify]: the scope-aware
//     wait/notify engine, and the platforms it parks on
//   - [github.com/joeycumines/go-syncscope/semaphore],
//     [github.com/joeycumines/go-syncscope/latch] and
//     [github.com/joeycumines/go-syncscope/barrier]: the primitives
//   - [github.com/joeycumines/go-syncscope/lanes]: a device of
//     non-preemptible execution lanes, for code that must never block
//
// # Execution Substrates
//
// Every blocking operation is routed through a [waitnotify.Engine], which is
// bound to a platform at construction time. A preemptible platform (a plain
// goroutine) spins briefly, yields, then parks. A non-preemptible platform
// (a lane) only ever spins with back-off, since parking a lane would stall
// the siblings it cooperatively shares an execution resource with.
//
// # Contract Violations
//
// Misuse that would otherwise leave a waiter stuck forever, e.g. releasing a
// semaphore past its maximum, or counting a latch down past zero, panics with
// a [*ContractViolation]. These are never corrected silently. Timeouts are not
// errors: bounded operations report them as a false return.
package syncscope

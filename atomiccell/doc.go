// Package atomiccell implements fixed-width integer slots with an explicit
// memory ordering contract, tagged with the thread scope they must be
// visible across.
//
// Every operation accepts a [syncscope.Order], validated per operation kind.
// Storage is a single [sync/atomic.Uint64], so each legal ordering is
// realized at full sequential consistency.
package atomiccell

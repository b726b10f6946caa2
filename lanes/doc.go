// Package lanes simulates a device of cooperatively scheduled,
// non-preemptible execution lanes, organized into groups.
//
// Each lane runs on its own goroutine. Lanes must never block: primitives
// used by lanes are constructed with [Platform], which makes their
// wait/notify engine spin, and turns any attempt to park into a contract
// violation. The locality of two lanes determines the narrowest scope at
// which they can synchronize, see [Device.Scope].
//
// With [WithAffinity], every lane of a group is locked to an OS thread
// pinned to the same CPU, so siblings really do compete for one core.
package lanes

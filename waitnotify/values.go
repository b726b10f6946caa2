package waitnotify

import (
	"time"
	"unsafe"

	"github.com/joeycumines/go-syncscope"
	"github.com/joeycumines/go-syncscope/atomiccell"
)

// KeyOf returns the wait key identifying c.
func KeyOf[T atomiccell.Integer](c *atomiccell.Cell[T]) unsafe.Pointer {
	return unsafe.Pointer(c.Addr())
}

// WaitValue blocks while c holds old. It MAY return spuriously, while c
// still holds old.
//
// The scope of c must cover the scope of the engine.
func WaitValue[T atomiccell.Integer](e *Engine, c *atomiccell.Cell[T], old T) {
	checkCellScope(e, c, `waitnotify.wait_value`)
	e.Wait(KeyOf(c), func() bool { return c.Load(syncscope.Relaxed) != old })
}

// WaitValueUntil blocks while c holds old, until the deadline, returning
// false if c still held old at the deadline. It never returns spuriously.
func WaitValueUntil[T atomiccell.Integer](e *Engine, c *atomiccell.Cell[T], old T, deadline time.Time) bool {
	checkCellScope(e, c, `waitnotify.wait_value_until`)
	return e.AwaitUntil(KeyOf(c), func() bool { return c.Load(syncscope.Relaxed) != old }, deadline)
}

// NotifyOneValue wakes one execution unit waiting on c.
func NotifyOneValue[T atomiccell.Integer](e *Engine, c *atomiccell.Cell[T]) int {
	return e.NotifyOne(KeyOf(c))
}

// NotifyAllValue wakes every execution unit waiting on c.
func NotifyAllValue[T atomiccell.Integer](e *Engine, c *atomiccell.Cell[T]) int {
	return e.NotifyAll(KeyOf(c))
}

func checkCellScope[T atomiccell.Integer](e *Engine, c *atomiccell.Cell[T], op string) {
	if !c.Scope().Covers(e.scope) {
		e.Violate(op, `cell scope %s does not cover engine scope %s`, c.Scope(), e.scope)
	}
}

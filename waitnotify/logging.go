package waitnotify

import (
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-syncscope"
)

// slowWaitRates bounds slow wait warnings, per engine.
var slowWaitRates = map[time.Duration]int{
	time.Second: 2,
	time.Minute: 20,
}

func newSlowWaitLimiter() *catrate.Limiter {
	return catrate.NewLimiter(slowWaitRates)
}

func (e *Engine) logSlowWait(parked time.Duration, o outcome) {
	if e.logger == nil || e.slowWait <= 0 || parked < e.slowWait {
		return
	}
	if _, ok := e.limiter.Allow(o); !ok {
		return
	}
	e.logger.Warning().
		Str(`engine`, e.name).
		Str(`scope`, e.scope.String()).
		Str(`outcome`, o.String()).
		Dur(`parked`, parked).
		Dur(`threshold`, e.slowWait).
		Log(`waitnotify: slow wait`)
}

// Violate panics with a [*syncscope.ContractViolation], logging it first, at
// the critical level, if the engine has a logger. Primitives built on the
// engine report misuse through it.
func (e *Engine) Violate(op string, format string, args ...any) {
	if e.logger != nil {
		e.logger.Crit().
			Str(`engine`, e.name).
			Str(`scope`, e.scope.String()).
			Str(`op`, op).
			Log(`syncscope: contract violation: ` + fmt.Sprintf(format, args...))
	}
	syncscope.Violate(op, format, args...)
}

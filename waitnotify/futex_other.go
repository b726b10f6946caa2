//go:build !linux

package waitnotify

import (
	"fmt"
	"runtime"
	"time"

	"github.com/joeycumines/go-syncscope"
)

func futexSupported() error {
	return fmt.Errorf(`waitnotify: futex platform on %s: %w`, runtime.GOOS, syncscope.ErrUnsupported)
}

func futexWait(*uint32, uint32, time.Duration) {
	panic(futexSupported())
}

func futexWake(*uint32, int) {
	panic(futexSupported())
}

func osYield() {
	runtime.Gosched()
}

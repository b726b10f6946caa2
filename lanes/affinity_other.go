//go:build !linux

package lanes

import (
	"fmt"
	"runtime"

	"github.com/joeycumines/go-syncscope"
)

func pinToCPU(int) error {
	return fmt.Errorf(`lanes: cpu affinity on %s: %w`, runtime.GOOS, syncscope.ErrUnsupported)
}

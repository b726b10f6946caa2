//go:build linux

package lanes

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// pinToCPU pins the calling OS thread to the n-th CPU (modulo the count) of
// the process's allowed set. The caller must have locked its OS thread.
func pinToCPU(n int) error {
	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		return fmt.Errorf(`lanes: get affinity: %w`, err)
	}
	count := allowed.Count()
	if count == 0 {
		return fmt.Errorf(`lanes: empty affinity set`)
	}
	n %= count
	for cpu := 0; cpu < len(allowed)*64; cpu++ {
		if !allowed.IsSet(cpu) {
			continue
		}
		if n > 0 {
			n--
			continue
		}
		var set unix.CPUSet
		set.Set(cpu)
		if err := unix.SchedSetaffinity(0, &set); err != nil {
			return fmt.Errorf(`lanes: set affinity to cpu %d: %w`, cpu, err)
		}
		return nil
	}
	return fmt.Errorf(`lanes: cpu index out of range`)
}

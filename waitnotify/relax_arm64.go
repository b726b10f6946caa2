//go:build arm64 && !noasm

package waitnotify

// cpuRelax executes YIELD, hinting to the core that the caller is spinning.
func cpuRelax()

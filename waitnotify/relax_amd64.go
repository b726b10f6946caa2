//go:build amd64 && !noasm

package waitnotify

// cpuRelax executes PAUSE, hinting to the core that the caller is spinning.
func cpuRelax()

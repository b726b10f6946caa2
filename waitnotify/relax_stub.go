//go:build (!amd64 && !arm64) || noasm

package waitnotify

func cpuRelax() {}

//go:build linux

package waitnotify

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	futexOpWait      = 0
	futexOpWake      = 1
	futexPrivateFlag = 128
	futexWaitPrivate = futexOpWait | futexPrivateFlag
	futexWakePrivate = futexOpWake | futexPrivateFlag
)

func futexSupported() error { return nil }

// futexWait sleeps while *addr == val, for at most timeout, if positive.
// Every outcome (wake, EAGAIN, EINTR, ETIMEDOUT) is reported to the caller
// through the word itself.
func futexWait(addr *uint32, val uint32, timeout time.Duration) {
	var ts *unix.Timespec
	if timeout > 0 {
		v := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &v
	}
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWaitPrivate,
		uintptr(val),
		uintptr(unsafe.Pointer(ts)),
		0,
		0,
	)
}

func futexWake(addr *uint32, n int) {
	_, _, _ = unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(addr)),
		futexWakePrivate,
		uintptr(n),
		0,
		0,
		0,
	)
}

func osYield() {
	_, _, _ = unix.RawSyscall(unix.SYS_SCHED_YIELD, 0, 0, 0)
}

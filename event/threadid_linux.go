//go:build linux

package event

import "golang.org/x/sys/unix"

// currentThreadID returns the kernel thread id of the calling goroutine's
// OS thread. Goroutines migrate between threads, so this identifies the
// thread at event-build time, which is what the packed metadata records.
func currentThreadID() uint32 {
	return uint32(unix.Gettid())
}

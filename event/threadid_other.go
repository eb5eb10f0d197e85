//go:build !linux

package event

import "os"

// currentThreadID falls back to the process id on platforms without a cheap
// thread-id syscall. Only 13 bits survive packing either way.
func currentThreadID() uint32 {
	return uint32(os.Getpid())
}

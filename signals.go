package ttlog

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// fatalSignals are the signals that trigger an emergency snapshot. SIGSEGV
// is owned by the Go runtime and cannot be trapped from user code; crashes
// of that class are covered by CapturePanic where recoverable.
var fatalSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	syscall.SIGHUP,
}

// installSignalHooks routes fatal signals to the handle's writer task. The
// runtime delivers them through a buffered channel, which is the platform's
// async-signal-safe wakeup: the handler itself performs no allocation and
// takes no locks. The writer treats each delivery as an immediate snapshot
// request with reason "signal:<NAME>".
func (h *Handle) installSignalHooks() {
	signal.Notify(h.sigCh, fatalSignals...)
}

// signalName maps a signal to the short name used in snapshot reasons,
// e.g. SIGTERM -> "TERM".
func signalName(sig os.Signal) string {
	switch sig {
	case syscall.SIGINT:
		return "INT"
	case syscall.SIGTERM:
		return "TERM"
	case syscall.SIGQUIT:
		return "QUIT"
	case syscall.SIGHUP:
		return "HUP"
	default:
		return strings.TrimPrefix(strings.ToUpper(sig.String()), "SIG")
	}
}

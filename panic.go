package ttlog

import (
	"time"

	"go.uber.org/zap"

	"github.com/gentleeduck/duck-ttlog/internal/diag"
)

// panicGrace is how long a panicking goroutine waits for the writer task to
// persist the emergency snapshot before unwinding continues.
const panicGrace = 150 * time.Millisecond

// CapturePanic persists an emergency snapshot when the calling goroutine is
// unwinding, then re-panics. Use it as a deferred call at goroutine entry:
//
//	defer handle.CapturePanic()
//
// The capture path never blocks on the control channel: if the channel is
// full a pending flag is set for the writer's next wake, and if the writer
// is already gone the snapshot is taken directly on this goroutine,
// bypassing listener dispatch.
func (h *Handle) CapturePanic() {
	r := recover()
	if r == nil {
		return
	}
	if !h.cfg.InstallPanicHook {
		panic(r)
	}
	diag.Error("panic captured", zap.Any("panic", r), zap.String("service", h.cfg.ServiceName))

	select {
	case <-h.writerDone:
		// Writer task is gone; single-consumer invariant is ours now.
		h.emergencyPersist("panic")
		panic(r)
	default:
	}

	select {
	case h.ctrl <- message{kind: msgSnapshot, reason: "panic"}:
	default:
		h.panicPending.Store(true)
	}

	// Give the writer a bounded window to drain before the process dies.
	time.Sleep(panicGrace)
	panic(r)
}

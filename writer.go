package ttlog

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gentleeduck/duck-ttlog/internal/diag"
	"github.com/gentleeduck/duck-ttlog/snapshot"
)

// dispatchBatch caps how many listener-queue events one writer wake handles,
// so a burst cannot starve control messages.
const dispatchBatch = 64

// writerLoop is the single consumer. It owns the ring buffer, the listener
// registry and queue, and all snapshot I/O. It multiplexes the control
// channel, the periodic ticker and signal notifications.
func (h *Handle) writerLoop() {
	defer close(h.writerDone)

	ticker := time.NewTicker(h.cfg.PeriodicInterval)
	defer ticker.Stop()

	reg := newRegistry(&h.stats)
	queue := newEventQueue(h.cfg.ListenerBufferCapacity)

	var lastActivity uint64
	for {
		exiting := false

		select {
		case m := <-h.ctrl:
			switch m.kind {
			case msgEvent:
				h.buf.PushOverwrite(m.ev)
				if !queue.push(m.ev) {
					h.stats.listenerDropped.Add(1)
				}
			case msgSnapshot:
				h.persist(m.reason)
			case msgAddListener:
				reg.add(m.sinkID, m.sink)
			case msgRemoveListener:
				reg.remove(m.sinkID)
			case msgFlushAndExit:
				exiting = true
			}
		case <-ticker.C:
			activity := h.buf.Pushed() + h.buf.Dropped()
			if activity != lastActivity {
				h.persist("periodic")
				lastActivity = activity
			}
		case sig := <-h.sigCh:
			h.persist("signal:" + signalName(sig))
		}

		if h.panicPending.Swap(false) {
			h.persist("panic")
		}

		reg.dispatch(queue, h.interner, dispatchBatch)

		if exiting {
			h.persist("shutdown")
			for queue.len() > 0 {
				reg.dispatch(queue, h.interner, dispatchBatch)
			}
			reg.flushAll()
			return
		}
	}
}

// alwaysPersist reports whether a snapshot must be written even when the
// buffer drained empty.
func alwaysPersist(reason string) bool {
	return reason == "shutdown" || reason == "panic" || strings.HasPrefix(reason, "signal:")
}

// persist drains the ring buffer and writes one snapshot file. I/O failures
// are logged and counted; the writer continues.
func (h *Handle) persist(reason string) {
	events := h.buf.TakeSnapshot()
	if len(events) == 0 && !alwaysPersist(reason) {
		return
	}
	now := time.Now()
	snap := snapshot.Build(h.cfg.ServiceName, reason, now, events, h.interner)
	path, err := h.snapWriter.Write(snap, now)
	if err != nil {
		h.stats.ioErrors.Add(1)
		diag.Error("snapshot write failed",
			zap.String("service", h.cfg.ServiceName),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	h.stats.snapshots.Add(1)
	diag.Warn("snapshot written",
		zap.String("path", path),
		zap.String("reason", reason),
		zap.Int("events", len(events)))
}

// emergencyPersist is the direct path used when the writer task is gone:
// it drains and writes synchronously on the calling goroutine, bypassing
// listener dispatch. Callers must only use it after writerDone is closed,
// since TakeSnapshot is single-consumer.
func (h *Handle) emergencyPersist(reason string) {
	h.emergencyMu.Lock()
	defer h.emergencyMu.Unlock()
	h.persist(reason)
}

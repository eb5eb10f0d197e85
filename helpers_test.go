package ttlog

import (
	"os/signal"
	"testing"
)

func resetGlobal(t *testing.T) {
	t.Helper()
	globalMu.Lock()
	defer globalMu.Unlock()
	globalHandle = nil
}

func stopSignalHooks(h *Handle) {
	signal.Stop(h.sigCh)
}

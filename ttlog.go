// Package ttlog is an in-process structured logging engine that keeps a
// rolling window of recent events in a lock-free ring buffer and persists it
// as a compressed snapshot on crash, fatal signal, periodic tick or explicit
// request.
//
// Producers never block and never perform I/O: the hot path interns strings,
// packs a fixed-size record and hands it to a single writer task through a
// bounded channel (falling back to a direct ring-buffer push under
// backpressure). The writer task owns the buffer, real-time listener
// dispatch and all snapshot I/O.
//
//	h, err := ttlog.Init(ttlog.NewConfig("checkout"))
//	if err != nil { ... }
//	defer h.Shutdown(5 * time.Second)
//
//	h.Log(event.LevelInfo, "payments", "charge accepted",
//	    event.Position{}, event.Str("order", id), event.Int("cents", 1250))
package ttlog

import (
	"sync"
)

var (
	globalMu     sync.Mutex
	globalHandle *Handle
	hookOnce     sync.Once
)

// Init creates the process-wide handle, spawns its writer task and installs
// the signal hooks. It is idempotent: the first call wins and later calls
// return the existing handle regardless of their config.
func Init(cfg Config) (*Handle, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalHandle != nil {
		return globalHandle, nil
	}
	FromEnv(&cfg)
	h, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.InstallSignalHooks {
		hookOnce.Do(h.installSignalHooks)
	}
	globalHandle = h
	return h, nil
}

// Default returns the process-wide handle, or nil before Init.
func Default() *Handle {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalHandle
}

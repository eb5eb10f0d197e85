package ttlog

import (
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/intern"
	"github.com/gentleeduck/duck-ttlog/internal/diag"
	"github.com/gentleeduck/duck-ttlog/kv"
	"github.com/gentleeduck/duck-ttlog/listener"
	"github.com/gentleeduck/duck-ttlog/ring"
	"github.com/gentleeduck/duck-ttlog/snapshot"
)

// ErrShutdownTimeout is returned when the writer task does not drain within
// the shutdown deadline. The writer is detached, not killed.
var ErrShutdownTimeout = errors.New("ttlog: shutdown timed out, writer detached")

// Handle is one logging engine instance: interner, ring buffer, control
// channel and writer task. Most programs use the process-wide handle from
// Init; tests construct local handles with New.
type Handle struct {
	cfg      Config
	interner *intern.Interner
	buf      *ring.Buffer[event.Event]
	ctrl     chan message
	sigCh    chan os.Signal

	level        atomic.Int32
	closing      atomic.Bool
	panicPending atomic.Bool

	snapWriter *snapshot.Writer
	stats      counters

	writerDone  chan struct{}
	emergencyMu sync.Mutex
}

// New creates a standalone handle and spawns its writer task. It installs no
// process-wide state; use Init for the global handle with hooks.
func New(cfg Config) (*Handle, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	h := &Handle{
		cfg:        cfg,
		interner:   intern.New(),
		buf:        ring.New[event.Event](cfg.Capacity),
		ctrl:       make(chan message, cfg.ChannelCapacity),
		sigCh:      make(chan os.Signal, 4),
		snapWriter: snapshot.NewWriter(cfg.ServiceName, cfg.StoragePath, cfg.Compression),
		writerDone: make(chan struct{}),
	}
	h.level.Store(int32(cfg.MinLevel))
	go h.writerLoop()
	return h, nil
}

// SetLevel changes the minimum level at runtime.
func (h *Handle) SetLevel(l event.Level) { h.level.Store(int32(l)) }

// Level returns the current minimum level.
func (h *Handle) Level() event.Level { return event.Level(h.level.Load()) }

// Enabled reports whether events at level l pass the filter.
func (h *Handle) Enabled(l event.Level) bool { return l >= h.Level() }

// Interner exposes the engine's interner for listeners and bridges.
func (h *Handle) Interner() *intern.Interner { return h.interner }

// Log is the hot-path entry point. The event is built, committed to the
// control channel or, when the channel is full, pushed straight into the
// ring buffer so it stays visible to crash snapshots.
func (h *Handle) Log(level event.Level, target, msg string, pos event.Position, fields ...event.Attr) {
	if !h.Enabled(level) {
		return
	}
	h.commit(event.Build(h.interner, level, target, msg, pos, nil, fields))
}

// LogKV is Log with an additional key/value map serialised to a blob,
// interned once and referenced by the event's kv handle.
func (h *Handle) LogKV(level event.Level, target, msg string, pos event.Position, kvs map[string]any, fields ...event.Attr) {
	if !h.Enabled(level) {
		return
	}
	blob, err := kv.Encode(kvs)
	if err != nil {
		blob = nil
	}
	h.commit(event.Build(h.interner, level, target, msg, pos, blob, fields))
}

func (h *Handle) commit(ev event.Event) {
	if h.closing.Load() {
		// Writer is draining or gone; keep the event crash-visible.
		h.buf.PushOverwrite(ev)
		return
	}
	select {
	case h.ctrl <- message{kind: msgEvent, ev: ev}:
	default:
		h.buf.PushOverwrite(ev)
		h.stats.channelOverflow.Add(1)
	}
}

// RequestSnapshot asks the writer to persist the current buffer contents.
// Non-blocking; the request is dropped if the control channel is full.
func (h *Handle) RequestSnapshot(reason string) {
	select {
	case h.ctrl <- message{kind: msgSnapshot, reason: reason}:
	default:
	}
}

// AddListener registers a sink and returns its id. The registration is
// serialised through the writer task.
func (h *Handle) AddListener(l listener.Listener) uuid.UUID {
	id := uuid.New()
	select {
	case h.ctrl <- message{kind: msgAddListener, sink: l, sinkID: id}:
	case <-h.writerDone:
	}
	return id
}

// RemoveListener unregisters a sink by id.
func (h *Handle) RemoveListener(id uuid.UUID) {
	select {
	case h.ctrl <- message{kind: msgRemoveListener, sinkID: id}:
	case <-h.writerDone:
	}
}

// Shutdown performs a final snapshot, drains the listener queue and joins
// the writer task. If the writer does not finish within timeout it is
// detached and ErrShutdownTimeout returned.
func (h *Handle) Shutdown(timeout time.Duration) error {
	if !h.closing.Swap(true) {
		select {
		case h.ctrl <- message{kind: msgFlushAndExit}:
		case <-h.writerDone:
			return nil
		case <-time.After(timeout):
			diag.Warn("shutdown enqueue timed out", zap.String("service", h.cfg.ServiceName))
			return ErrShutdownTimeout
		}
	}
	select {
	case <-h.writerDone:
		return nil
	case <-time.After(timeout):
		diag.Warn("shutdown join timed out, detaching writer",
			zap.String("service", h.cfg.ServiceName))
		return ErrShutdownTimeout
	}
}

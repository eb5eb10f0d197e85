package ttlog

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/intern"
	"github.com/gentleeduck/duck-ttlog/internal/diag"
	"github.com/gentleeduck/duck-ttlog/listener"
)

// eventQueue is the bounded fan-out queue between the ring-buffer path and
// listener dispatch. It is owned by the writer goroutine; no locking.
type eventQueue struct {
	buf   []event.Event
	head  int
	count int
}

func newEventQueue(capacity int) *eventQueue {
	return &eventQueue{buf: make([]event.Event, capacity)}
}

func (q *eventQueue) push(ev event.Event) bool {
	if q.count == len(q.buf) {
		return false
	}
	q.buf[(q.head+q.count)%len(q.buf)] = ev
	q.count++
	return true
}

func (q *eventQueue) pop() (event.Event, bool) {
	if q.count == 0 {
		return event.Event{}, false
	}
	ev := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return ev, true
}

func (q *eventQueue) len() int { return q.count }

type sinkEntry struct {
	id       uuid.UUID
	sink     listener.Listener
	disabled bool
}

// registry holds the listener set. Mutation and dispatch both happen on the
// writer goroutine only.
type registry struct {
	entries []sinkEntry
	stats   *counters
}

func newRegistry(stats *counters) *registry {
	return &registry{stats: stats}
}

func (r *registry) add(id uuid.UUID, l listener.Listener) {
	r.entries = append(r.entries, sinkEntry{id: id, sink: l})
}

func (r *registry) remove(id uuid.UUID) {
	for i := range r.entries {
		if r.entries[i].id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// dispatch pops up to max events and hands each to every enabled listener in
// registration order. A panicking listener is disabled and counted; the loop
// carries on.
func (r *registry) dispatch(q *eventQueue, in *intern.Interner, max int) {
	for n := 0; n < max; n++ {
		ev, ok := q.pop()
		if !ok {
			return
		}
		for i := range r.entries {
			e := &r.entries[i]
			if e.disabled {
				continue
			}
			if !r.safeHandle(e.sink, &ev, in) {
				e.disabled = true
				r.stats.listenerFailures.Add(1)
				diag.Error("listener panicked, disabled", zap.String("id", e.id.String()))
			}
		}
	}
}

func (r *registry) safeHandle(l listener.Listener, ev *event.Event, in *intern.Interner) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	l.Handle(ev, in)
	return true
}

// flushAll gives buffering listeners a final flush before shutdown.
func (r *registry) flushAll() {
	for i := range r.entries {
		if r.entries[i].disabled {
			continue
		}
		if f, okf := r.entries[i].sink.(listener.Flusher); okf {
			if err := f.Flush(); err != nil {
				diag.Warn("listener flush failed", zap.Error(err))
			}
		}
	}
}

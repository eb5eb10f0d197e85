// Package listener defines the real-time sink interface and the built-in
// stdout and file sinks. Listeners run exclusively on the writer task.
package listener

import (
	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/intern"
)

// Listener receives events on the writer goroutine in dispatch order.
// Implementations must be fast and must not panic; a panicking listener is
// disabled by the writer.
type Listener interface {
	Handle(ev *event.Event, in *intern.Interner)
}

// Flusher is implemented by listeners that buffer output and want a final
// flush before shutdown.
type Flusher interface {
	Flush() error
}

package ttlog

import (
	"github.com/google/uuid"

	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/listener"
)

type msgKind uint8

const (
	msgEvent msgKind = iota
	msgSnapshot
	msgFlushAndExit
	msgAddListener
	msgRemoveListener
)

// message is the control-channel union. Produced by any thread, consumed
// only by the writer task.
type message struct {
	kind   msgKind
	ev     event.Event
	reason string
	sink   listener.Listener
	sinkID uuid.UUID
}

package ttlog

import "sync/atomic"

// counters are the engine's silent-and-counted error tallies. Producer-path
// failures never surface as errors; they land here.
type counters struct {
	channelOverflow  atomic.Uint64
	listenerDropped  atomic.Uint64
	listenerFailures atomic.Uint64
	ioErrors         atomic.Uint64
	snapshots        atomic.Uint64
}

// Stats is a point-in-time copy of all engine counters.
type Stats struct {
	// Pushed is the total number of events committed to the ring buffer.
	Pushed uint64
	// Dropped counts events evicted by overwrite.
	Dropped uint64
	// ChannelOverflow counts events that bypassed the control channel.
	ChannelOverflow uint64
	// ListenerDropped counts events lost to a full listener queue.
	ListenerDropped uint64
	// ListenerFailures counts listener panics; each also disables the
	// offending listener.
	ListenerFailures uint64
	// InternOverflows counts intern calls that hit the 16-bit limit.
	InternOverflows uint64
	// IOErrors counts failed snapshot writes.
	IOErrors uint64
	// Snapshots counts snapshot files successfully persisted.
	Snapshots uint64
}

// Stats returns the current counter values.
func (h *Handle) Stats() Stats {
	return Stats{
		Pushed:           h.buf.Pushed(),
		Dropped:          h.buf.Dropped(),
		ChannelOverflow:  h.stats.channelOverflow.Load(),
		ListenerDropped:  h.stats.listenerDropped.Load(),
		ListenerFailures: h.stats.listenerFailures.Load(),
		InternOverflows:  h.interner.Overflows(),
		IOErrors:         h.stats.ioErrors.Load(),
		Snapshots:        h.stats.snapshots.Load(),
	}
}

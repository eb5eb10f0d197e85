// Package snapshot builds, encodes and persists the self-contained crash
// records extracted from the ring buffer.
//
// On disk a snapshot is an LZ4 block (or optionally a zstd frame) wrapping a
// CBOR map with exactly these top-level keys: service, hostname, pid,
// created_at, reason, interner, events. Decoding needs no external state:
// every handle referenced by an event resolves inside the embedded tables.
package snapshot

import (
	"os"
	"time"

	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/intern"
)

// Tables mirrors the interner namespaces, indexed by handle.
type Tables struct {
	Targets   []string `cbor:"targets"`
	Messages  []string `cbor:"messages"`
	FieldKeys []string `cbor:"field_keys"`
}

// Snapshot is the persisted record. CreatedAt is RFC-3339 UTC.
type Snapshot struct {
	Service   string         `cbor:"service"`
	Hostname  string         `cbor:"hostname"`
	PID       uint32         `cbor:"pid"`
	CreatedAt string         `cbor:"created_at"`
	Reason    string         `cbor:"reason"`
	Interner  Tables         `cbor:"interner"`
	Events    []EncodedEvent `cbor:"events"`
}

// EncodedEvent is the wire form of one event: a fixed-order CBOR array
// [packed_meta, target_id, message_id_or_null, kv_id_or_null, file_id,
// line, column, fields].
type EncodedEvent struct {
	_          struct{} `cbor:",toarray"`
	PackedMeta uint64
	TargetID   uint16
	MessageID  *uint16
	KVID       *uint16
	FileID     uint16
	Line       uint16
	Column     uint16
	Fields     []EncodedField
}

// EncodedField is the wire form of one structured field: [key_id, value].
type EncodedField struct {
	_     struct{} `cbor:",toarray"`
	KeyID uint16
	Value TaggedValue
}

// Build assembles a Snapshot from drained events and the current interner
// state. The full tables are embedded rather than the referenced subset;
// this is a correctness-preserving simplification.
func Build(service, reason string, createdAt time.Time, events []event.Event, in *intern.Interner) *Snapshot {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	tables := in.Export()
	s := &Snapshot{
		Service:   service,
		Hostname:  hostname,
		PID:       uint32(os.Getpid()),
		CreatedAt: createdAt.UTC().Format(time.RFC3339),
		Reason:    reason,
		Interner: Tables{
			Targets:   tables.Targets,
			Messages:  tables.Messages,
			FieldKeys: tables.FieldKeys,
		},
		Events: make([]EncodedEvent, 0, len(events)),
	}
	for i := range events {
		s.Events = append(s.Events, encodeEvent(&events[i]))
	}
	return s
}

func encodeEvent(ev *event.Event) EncodedEvent {
	out := EncodedEvent{
		PackedMeta: ev.PackedMeta,
		TargetID:   ev.TargetID,
		FileID:     ev.FileID,
		Line:       ev.Line,
		Column:     ev.Column,
	}
	if ev.MessageID != 0 {
		id := ev.MessageID
		out.MessageID = &id
	}
	if ev.KVID != 0 {
		id := ev.KVID
		out.KVID = &id
	}
	n := int(ev.FieldCount)
	if n > event.MaxFields {
		n = event.MaxFields
	}
	out.Fields = make([]EncodedField, 0, n)
	for i := 0; i < n; i++ {
		f := ev.Fields[i]
		out.Fields = append(out.Fields, EncodedField{
			KeyID: f.KeyID,
			Value: TaggedValue(f.Value),
		})
	}
	return out
}

// Target resolves an event's target against the embedded tables.
func (s *Snapshot) Target(e *EncodedEvent) string {
	return lookup(s.Interner.Targets, e.TargetID)
}

// Message resolves an event's message, or "" when absent.
func (s *Snapshot) Message(e *EncodedEvent) string {
	if e.MessageID == nil {
		return ""
	}
	return lookup(s.Interner.Messages, *e.MessageID)
}

// KVBlob returns the serialized key/value blob, or nil when absent.
func (s *Snapshot) KVBlob(e *EncodedEvent) []byte {
	if e.KVID == nil {
		return nil
	}
	if v := lookup(s.Interner.FieldKeys, *e.KVID); v != "" {
		return []byte(v)
	}
	return nil
}

// File resolves an event's source file, or "" when absent. Files share the
// target namespace.
func (s *Snapshot) File(e *EncodedEvent) string {
	if e.FileID == 0 {
		return ""
	}
	return lookup(s.Interner.Targets, e.FileID)
}

// FieldKey resolves a structured-field key.
func (s *Snapshot) FieldKey(f *EncodedField) string {
	return lookup(s.Interner.FieldKeys, f.KeyID)
}

// FieldString resolves a KindString field value.
func (s *Snapshot) FieldString(f *EncodedField) string {
	return lookup(s.Interner.FieldKeys, event.Value(f.Value).StringID())
}

func lookup(table []string, id uint16) string {
	if int(id) >= len(table) {
		return ""
	}
	return table[id]
}

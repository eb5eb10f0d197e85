package snapshot

import (
	"encoding/json"
	"os"

	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/kv"
)

// ResolvedEvent is an event with every handle replaced by the string it
// referenced, ready for display or export. Produced by Snapshot.Resolve.
type ResolvedEvent struct {
	Timestamp uint64            `json:"timestamp"`
	Level     string            `json:"level"`
	ThreadID  uint32            `json:"thread_id"`
	Target    string            `json:"target"`
	Message   string            `json:"message,omitempty"`
	File      string            `json:"file,omitempty"`
	Line      uint16            `json:"line,omitempty"`
	Column    uint16            `json:"column,omitempty"`
	KV        map[string]string `json:"kv,omitempty"`
	Fields    map[string]any    `json:"fields,omitempty"`
}

// DecodeFile reads and decodes a snapshot file.
func DecodeFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Resolve expands all events against the embedded tables.
func (s *Snapshot) Resolve() []ResolvedEvent {
	out := make([]ResolvedEvent, 0, len(s.Events))
	for i := range s.Events {
		out = append(out, s.resolveOne(&s.Events[i]))
	}
	return out
}

func (s *Snapshot) resolveOne(e *EncodedEvent) ResolvedEvent {
	ts, tid, level := event.UnpackMeta(e.PackedMeta)
	r := ResolvedEvent{
		Timestamp: ts,
		Level:     level.String(),
		ThreadID:  tid,
		Target:    s.Target(e),
		Message:   s.Message(e),
		File:      s.File(e),
		Line:      e.Line,
		Column:    e.Column,
	}
	if blob := s.KVBlob(e); blob != nil {
		r.KV = kv.ToMap(blob)
	}
	if len(e.Fields) > 0 {
		r.Fields = make(map[string]any, len(e.Fields))
		for j := range e.Fields {
			f := &e.Fields[j]
			r.Fields[s.FieldKey(f)] = s.fieldAny(f)
		}
	}
	return r
}

func (s *Snapshot) fieldAny(f *EncodedField) any {
	v := event.Value(f.Value)
	switch v.Kind {
	case event.KindBool:
		return v.Bool()
	case event.KindF32:
		return v.Float32()
	case event.KindF64:
		return v.Float64()
	case event.KindI8, event.KindI16, event.KindI32, event.KindI64:
		return v.Int64()
	case event.KindString:
		return s.FieldString(f)
	default:
		return v.Uint64()
	}
}

// MarshalJSON exports the snapshot in resolved, human-readable form. The
// binary CBOR form remains the storage format; this is for tooling that
// wants plain JSON.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	type jsonSnapshot struct {
		Service   string          `json:"service"`
		Hostname  string          `json:"hostname"`
		PID       uint32          `json:"pid"`
		CreatedAt string          `json:"created_at"`
		Reason    string          `json:"reason"`
		Events    []ResolvedEvent `json:"events"`
	}
	return json.Marshal(jsonSnapshot{
		Service:   s.Service,
		Hostname:  s.Hostname,
		PID:       s.PID,
		CreatedAt: s.CreatedAt,
		Reason:    s.Reason,
		Events:    s.Resolve(),
	})
}

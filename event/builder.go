package event

import (
	"time"

	"github.com/gentleeduck/duck-ttlog/intern"
)

// Position is a source location attached to an event.
type Position struct {
	File   string
	Line   uint16
	Column uint16
}

// Build constructs an Event in a single pass: metadata is packed, strings are
// interned and attrs are coerced to typed fields. Attrs beyond MaxFields are
// dropped silently. kvBlob, when non-nil, is a serialized key/value blob that
// is interned in the field-key namespace and referenced by KVID.
//
// Level filtering happens in the caller before any of this work; Build
// itself never fails and never panics.
func Build(in *intern.Interner, level Level, target, msg string, pos Position, kvBlob []byte, attrs []Attr) Event {
	var ev Event
	ev.PackedMeta = PackMeta(uint64(time.Now().UnixNano()), currentThreadID(), level)
	ev.TargetID = in.InternTarget(target)
	if msg != "" {
		ev.MessageID = in.InternMessage(msg)
	}
	if len(kvBlob) > 0 {
		ev.KVID = in.InternFieldKey(string(kvBlob))
	}
	if pos.File != "" {
		ev.FileID = in.InternFile(pos.File)
	}
	ev.Line = pos.Line
	ev.Column = pos.Column

	for i := range attrs {
		if ev.FieldCount >= MaxFields {
			break
		}
		a := &attrs[i]
		v := Value{Kind: a.kind, Bits: a.bits}
		if a.kind == KindString {
			v.Bits = uint64(in.InternFieldKey(a.str))
		}
		ev.AddField(in.InternFieldKey(a.Key), v)
	}
	return ev
}

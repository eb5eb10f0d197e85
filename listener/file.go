package listener

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/intern"
	"github.com/gentleeduck/duck-ttlog/kv"
)

// File appends one JSON object per event (NDJSON) to a log file.
type File struct {
	mu   sync.Mutex
	f    *os.File
	w    *bufio.Writer
	line fileLine
}

type fileLine struct {
	Timestamp uint64          `json:"timestamp"`
	Level     string          `json:"level"`
	ThreadID  uint32          `json:"thread_id"`
	Target    string          `json:"target"`
	Message   string          `json:"message,omitempty"`
	File      string          `json:"file,omitempty"`
	Line      uint16          `json:"line,omitempty"`
	Column    uint16          `json:"column,omitempty"`
	KV        json.RawMessage `json:"kv,omitempty"`
	Fields    map[string]any  `json:"fields,omitempty"`
}

// NewFile opens (or creates) path for appending, creating parent
// directories as needed.
func NewFile(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &File{f: f, w: bufio.NewWriter(f)}, nil
}

func (l *File) Handle(ev *event.Event, in *intern.Interner) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts, tid, level := event.UnpackMeta(ev.PackedMeta)
	line := &l.line
	*line = fileLine{
		Timestamp: ts,
		Level:     level.String(),
		ThreadID:  tid,
		Line:      ev.Line,
		Column:    ev.Column,
	}
	line.Target, _ = in.ResolveTarget(ev.TargetID)
	if ev.MessageID != 0 {
		line.Message, _ = in.ResolveMessage(ev.MessageID)
	}
	if ev.FileID != 0 {
		line.File, _ = in.ResolveFile(ev.FileID)
	}
	if ev.KVID != 0 {
		if blob, ok := in.ResolveFieldKey(ev.KVID); ok && kv.Valid([]byte(blob)) {
			line.KV = json.RawMessage(blob)
		}
	}
	if ev.FieldCount > 0 {
		line.Fields = make(map[string]any, ev.FieldCount)
		for i := 0; i < int(ev.FieldCount); i++ {
			f := ev.Fields[i]
			key, _ := in.ResolveFieldKey(f.KeyID)
			line.Fields[key] = fieldValue(f.Value, in)
		}
	}

	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	_, _ = l.w.Write(data)
	_ = l.w.WriteByte('\n')
}

func fieldValue(v event.Value, in *intern.Interner) any {
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
		s, _ := in.ResolveFieldKey(v.StringID())
		return s
	default:
		return v.Uint64()
	}
}

// Flush drains the buffered writer to disk.
func (l *File) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Flush(); err != nil {
		return err
	}
	return l.f.Sync()
}

// Close flushes and closes the underlying file.
func (l *File) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Flush(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

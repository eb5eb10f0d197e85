// Package slogbridge adapts a ttlog Handle to the standard library's
// log/slog, so applications already written against slog feed the crash
// buffer without code changes:
//
//	slog.SetDefault(slog.New(slogbridge.New(handle, "myapp")))
package slogbridge

import (
	"context"
	"log/slog"
	"runtime"

	ttlog "github.com/gentleeduck/duck-ttlog"
	"github.com/gentleeduck/duck-ttlog/event"
)

// Handler forwards slog records into the engine. The first three
// scalar-typed attributes become inline event fields; any remainder is
// serialised into the event's key/value blob.
type Handler struct {
	h      *ttlog.Handle
	target string
	attrs  []slog.Attr
	groups []string
}

// New creates a bridge handler. target becomes the interned target of every
// event emitted through it.
func New(h *ttlog.Handle, target string) *Handler {
	return &Handler{h: h, target: target}
}

func (b *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return b.h.Enabled(mapLevel(level))
}

func (b *Handler) Handle(_ context.Context, r slog.Record) error {
	level := mapLevel(r.Level)

	var pos event.Position
	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		pos.File = f.File
		if f.Line > 0 && f.Line <= 0xFFFF {
			pos.Line = uint16(f.Line)
		}
	}

	var fields []event.Attr
	var overflow map[string]any

	add := func(key string, v slog.Value) {
		if attr, ok := toAttr(key, v); ok && len(fields) < event.MaxFields {
			fields = append(fields, attr)
			return
		}
		if overflow == nil {
			overflow = make(map[string]any)
		}
		overflow[key] = v.Resolve().Any()
	}

	// Stored attrs carry keys prefixed at WithAttrs time; only record
	// attrs pick up the currently open groups.
	for _, a := range b.attrs {
		add(a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(b.prefixed(a.Key), a.Value)
		return true
	})

	if overflow != nil {
		b.h.LogKV(level, b.target, r.Message, pos, overflow, fields...)
	} else {
		b.h.Log(level, b.target, r.Message, pos, fields...)
	}
	return nil
}

func (b *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	b2 := *b
	pre := append([]slog.Attr(nil), b.attrs...)
	for _, a := range attrs {
		a.Key = b.prefixed(a.Key)
		pre = append(pre, a)
	}
	b2.attrs = pre
	return &b2
}

func (b *Handler) WithGroup(name string) slog.Handler {
	b2 := *b
	b2.groups = append(append([]string(nil), b.groups...), name)
	return &b2
}

func (b *Handler) prefixed(key string) string {
	for i := len(b.groups) - 1; i >= 0; i-- {
		key = b.groups[i] + "." + key
	}
	return key
}

func toAttr(key string, v slog.Value) (event.Attr, bool) {
	switch v.Kind() {
	case slog.KindBool:
		return event.Bool(key, v.Bool()), true
	case slog.KindInt64:
		return event.Int64(key, v.Int64()), true
	case slog.KindUint64:
		return event.Uint64(key, v.Uint64()), true
	case slog.KindFloat64:
		return event.Float64(key, v.Float64()), true
	case slog.KindString:
		return event.Str(key, v.String()), true
	default:
		return event.Attr{}, false
	}
}

func mapLevel(l slog.Level) event.Level {
	switch {
	case l < slog.LevelDebug:
		return event.LevelTrace
	case l < slog.LevelInfo:
		return event.LevelDebug
	case l < slog.LevelWarn:
		return event.LevelInfo
	case l < slog.LevelError:
		return event.LevelWarn
	default:
		return event.LevelError
	}
}

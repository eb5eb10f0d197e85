package listener

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/intern"
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

// Stdout writes human-readable coloured lines. It reuses one scratch buffer;
// the writer task serialises all calls so a plain mutex suffices for tests
// that poke it directly.
type Stdout struct {
	mu  sync.Mutex
	out io.Writer
	buf []byte
}

// NewStdout creates a stdout listener.
func NewStdout() *Stdout {
	return &Stdout{out: os.Stdout}
}

func (s *Stdout) Handle(ev *event.Event, in *intern.Interner) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, _ := in.ResolveTarget(ev.TargetID)
	var message string
	if ev.MessageID != 0 {
		message, _ = in.ResolveMessage(ev.MessageID)
	}

	ts, tid, level := event.UnpackMeta(ev.PackedMeta)
	clock := time.Unix(0, int64(ts)).UTC().Format("15:04:05.000")

	s.buf = s.buf[:0]
	s.buf = append(s.buf, ansiGreen...)
	s.buf = append(s.buf, '[')
	s.buf = append(s.buf, clock...)
	s.buf = append(s.buf, ']')
	s.buf = append(s.buf, ansiReset...)
	s.buf = append(s.buf, ' ')
	s.buf = append(s.buf, colorLevel(level)...)
	s.buf = fmt.Appendf(s.buf, " %st%d%s %s%s%s:%d:%d %s",
		ansiCyan, tid, ansiReset, ansiMagenta, target, ansiReset, ev.Line, ev.Column, message)

	for i := 0; i < int(ev.FieldCount); i++ {
		f := ev.Fields[i]
		key, _ := in.ResolveFieldKey(f.KeyID)
		s.buf = append(s.buf, ' ')
		s.buf = append(s.buf, ansiBlue...)
		s.buf = append(s.buf, key...)
		s.buf = append(s.buf, '=')
		s.buf = appendValue(s.buf, f.Value, in)
		s.buf = append(s.buf, ansiReset...)
	}
	s.buf = append(s.buf, '\n')
	_, _ = s.out.Write(s.buf)
}

func appendValue(buf []byte, v event.Value, in *intern.Interner) []byte {
	switch v.Kind {
	case event.KindBool:
		return fmt.Appendf(buf, "%t", v.Bool())
	case event.KindF32:
		return fmt.Appendf(buf, "%g", v.Float32())
	case event.KindF64:
		return fmt.Appendf(buf, "%g", v.Float64())
	case event.KindI8, event.KindI16, event.KindI32, event.KindI64:
		return fmt.Appendf(buf, "%d", v.Int64())
	case event.KindString:
		s, _ := in.ResolveFieldKey(v.StringID())
		return append(buf, s...)
	default:
		return fmt.Appendf(buf, "%d", v.Uint64())
	}
}

func colorLevel(l event.Level) string {
	switch l {
	case event.LevelError:
		return ansiRed + "[ERROR]" + ansiReset
	case event.LevelWarn:
		return ansiYellow + "[WARN]" + ansiReset
	case event.LevelInfo:
		return ansiGreen + "[INFO]" + ansiReset
	case event.LevelDebug:
		return ansiBlue + "[DEBUG]" + ansiReset
	default:
		return ansiCyan + "[TRACE]" + ansiReset
	}
}

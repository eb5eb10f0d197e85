// Package intern deduplicates strings into stable 16-bit handles across
// three independent namespaces: targets, messages and field keys.
//
// The hit path is a single sync.Map lookup and performs no locking; inserts
// take a namespace mutex and are rare after warmup. Go has no cheap
// thread-local storage, so the shared table doubles as the cache tier;
// handle stability is unaffected.
package intern

import (
	"sync"
	"sync/atomic"
)

// OverflowSentinel is returned once a namespace exhausts the 16-bit handle
// space. It resolves to OverflowString, so events stay encodable.
const OverflowSentinel uint16 = 1

// OverflowString is the literal the overflow sentinel resolves to.
const OverflowString = "<intern-overflow>"

const maxHandles = 1 << 16

// table is one namespace. Handle 0 is the empty string and handle 1 the
// overflow sentinel; real strings start at handle 2.
type table struct {
	lookup  sync.Map // string -> uint16
	mu      sync.Mutex
	strings atomic.Pointer[[]string]
}

func newTable() *table {
	t := &table{}
	seed := []string{"", OverflowString}
	t.strings.Store(&seed)
	t.lookup.Store("", uint16(0))
	t.lookup.Store(OverflowString, OverflowSentinel)
	return t
}

func (t *table) intern(s string, overflowed *atomic.Uint64) uint16 {
	if v, ok := t.lookup.Load(s); ok {
		return v.(uint16)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.lookup.Load(s); ok {
		return v.(uint16)
	}
	cur := *t.strings.Load()
	if len(cur) >= maxHandles {
		overflowed.Add(1)
		return OverflowSentinel
	}
	id := uint16(len(cur))
	// Appending may grow in place; readers of the old header never index
	// past their own length, so publishing the new header is the only
	// synchronization needed.
	next := append(cur, s)
	t.strings.Store(&next)
	t.lookup.Store(s, id)
	return id
}

func (t *table) resolve(id uint16) (string, bool) {
	cur := *t.strings.Load()
	if int(id) >= len(cur) {
		return "", false
	}
	return cur[id], true
}

func (t *table) export() []string {
	cur := *t.strings.Load()
	out := make([]string, len(cur))
	copy(out, cur)
	return out
}

func (t *table) len() int {
	return len(*t.strings.Load())
}

// Interner owns the three namespaces. A single instance is shared by all
// producers for the lifetime of the process; handles are never reused.
type Interner struct {
	targets   *table
	messages  *table
	fieldKeys *table

	overflows atomic.Uint64
}

func New() *Interner {
	return &Interner{
		targets:   newTable(),
		messages:  newTable(),
		fieldKeys: newTable(),
	}
}

// InternTarget interns a log target. Returns 0 for the empty string.
func (in *Interner) InternTarget(s string) uint16 {
	return in.targets.intern(s, &in.overflows)
}

// InternMessage interns a message. The returned handle is never 0 for a
// non-empty message; 0 is the "absent" sentinel in event records.
func (in *Interner) InternMessage(s string) uint16 {
	return in.messages.intern(s, &in.overflows)
}

// InternFieldKey interns a structured-field key. Field string values and
// serialized kv blobs share this namespace by convention.
func (in *Interner) InternFieldKey(s string) uint16 {
	return in.fieldKeys.intern(s, &in.overflows)
}

// InternFile interns a source-file path. Files share the target namespace:
// both are module-path-like strings with high reuse.
func (in *Interner) InternFile(s string) uint16 {
	return in.targets.intern(s, &in.overflows)
}

func (in *Interner) ResolveTarget(id uint16) (string, bool)   { return in.targets.resolve(id) }
func (in *Interner) ResolveMessage(id uint16) (string, bool)  { return in.messages.resolve(id) }
func (in *Interner) ResolveFieldKey(id uint16) (string, bool) { return in.fieldKeys.resolve(id) }
func (in *Interner) ResolveFile(id uint16) (string, bool)     { return in.targets.resolve(id) }

// Overflows reports how many intern calls hit the 16-bit handle limit.
func (in *Interner) Overflows() uint64 { return in.overflows.Load() }

// Tables is a point-in-time copy of all three namespaces, indexed by handle.
type Tables struct {
	Targets   []string
	Messages  []string
	FieldKeys []string
}

// Export copies the tables for snapshot embedding. Snapshots embed the full
// tables rather than the referenced subset; handles stay valid either way.
func (in *Interner) Export() Tables {
	return Tables{
		Targets:   in.targets.export(),
		Messages:  in.messages.export(),
		FieldKeys: in.fieldKeys.export(),
	}
}

// Counts returns the number of entries per namespace, sentinels included.
func (in *Interner) Counts() (targets, messages, fieldKeys int) {
	return in.targets.len(), in.messages.len(), in.fieldKeys.len()
}

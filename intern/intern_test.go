package intern

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterner_HandleStability(t *testing.T) {
	in := New()

	a := in.InternTarget("db::connection")
	b := in.InternTarget("db::connection")
	assert.Equal(t, a, b, "same string must yield the same handle")

	c := in.InternTarget("http::server")
	assert.NotEqual(t, a, c)

	s, ok := in.ResolveTarget(a)
	require.True(t, ok)
	assert.Equal(t, "db::connection", s)
}

func TestInterner_NamespacesAreIndependent(t *testing.T) {
	in := New()
	tID := in.InternTarget("shared")
	mID := in.InternMessage("shared")
	fID := in.InternFieldKey("shared")

	// All first real handles, each in its own namespace.
	assert.Equal(t, uint16(2), tID)
	assert.Equal(t, uint16(2), mID)
	assert.Equal(t, uint16(2), fID)
}

func TestInterner_ReservedHandles(t *testing.T) {
	in := New()

	assert.Equal(t, uint16(0), in.InternTarget(""), "empty string is handle 0")

	s, ok := in.ResolveTarget(OverflowSentinel)
	require.True(t, ok)
	assert.Equal(t, OverflowString, s)
}

func TestInterner_FilesShareTargetNamespace(t *testing.T) {
	in := New()
	id := in.InternFile("cmd/server/main.go")
	s, ok := in.ResolveTarget(id)
	require.True(t, ok)
	assert.Equal(t, "cmd/server/main.go", s)
}

func TestInterner_ResolveUnknown(t *testing.T) {
	in := New()
	_, ok := in.ResolveMessage(9999)
	assert.False(t, ok)
}

func TestInterner_Overflow(t *testing.T) {
	if testing.Short() {
		t.Skip("fills an entire namespace")
	}
	in := New()

	var last uint16
	for i := 0; i < maxHandles-2; i++ {
		last = in.InternMessage(fmt.Sprintf("m%d", i))
	}
	assert.Equal(t, uint16(maxHandles-1), last, "last insert takes the final handle")

	got := in.InternMessage("one-too-many")
	assert.Equal(t, OverflowSentinel, got)
	assert.Equal(t, uint64(1), in.Overflows())

	// The sentinel still resolves, so events stay encodable.
	s, ok := in.ResolveMessage(got)
	require.True(t, ok)
	assert.Equal(t, OverflowString, s)

	// Other namespaces are unaffected.
	assert.NotEqual(t, OverflowSentinel, in.InternTarget("still-fine"))
}

func TestInterner_ConcurrentIntern(t *testing.T) {
	in := New()
	const goroutines = 16
	const strings = 200

	results := make([][]uint16, goroutines)
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids := make([]uint16, strings)
			for i := 0; i < strings; i++ {
				ids[i] = in.InternFieldKey(fmt.Sprintf("key-%d", i))
			}
			results[g] = ids
		}(g)
	}
	wg.Wait()

	for g := 1; g < goroutines; g++ {
		assert.Equal(t, results[0], results[g], "goroutine %d saw different handles", g)
	}
}

func TestInterner_Export(t *testing.T) {
	in := New()
	tID := in.InternTarget("payments")
	mID := in.InternMessage("charge accepted")
	fID := in.InternFieldKey("order_id")

	tables := in.Export()
	assert.Equal(t, "payments", tables.Targets[tID])
	assert.Equal(t, "charge accepted", tables.Messages[mID])
	assert.Equal(t, "order_id", tables.FieldKeys[fID])

	// Export is a copy: later inserts do not affect it.
	in.InternTarget("late")
	assert.Len(t, tables.Targets, 3)
}

package slogbridge

import (
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ttlog "github.com/gentleeduck/duck-ttlog"
	"github.com/gentleeduck/duck-ttlog/event"
	"github.com/gentleeduck/duck-ttlog/intern"
	"github.com/gentleeduck/duck-ttlog/kv"
)

type capture struct {
	count atomic.Uint64
	last  atomic.Pointer[event.Event]
}

func (c *capture) Handle(ev *event.Event, _ *intern.Interner) {
	clone := *ev
	c.last.Store(&clone)
	c.count.Add(1)
}

func newTestHandle(t *testing.T) *ttlog.Handle {
	t.Helper()
	cfg := ttlog.NewConfig("bridge-test")
	cfg.StoragePath = t.TempDir()
	cfg.InstallSignalHooks = false
	cfg.MinLevel = event.LevelDebug
	h, err := ttlog.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { h.Shutdown(time.Second) })
	return h
}

func TestHandler_ForwardsRecords(t *testing.T) {
	h := newTestHandle(t)
	sink := &capture{}
	h.AddListener(sink)

	logger := slog.New(New(h, "bridge"))
	logger.Info("user logged in", "user", "u1", "attempts", int64(2), "mfa", true)

	require.Eventually(t, func() bool { return sink.count.Load() == 1 },
		2*time.Second, time.Millisecond)

	ev := sink.last.Load()
	require.NotNil(t, ev)
	assert.Equal(t, event.LevelInfo, ev.Level())

	target, _ := h.Interner().ResolveTarget(ev.TargetID)
	assert.Equal(t, "bridge", target)

	msg, _ := h.Interner().ResolveMessage(ev.MessageID)
	assert.Equal(t, "user logged in", msg)

	require.Equal(t, uint8(3), ev.FieldCount)
	key, _ := h.Interner().ResolveFieldKey(ev.Fields[0].KeyID)
	assert.Equal(t, "user", key)
}

func TestHandler_OverflowAttrsBecomeKV(t *testing.T) {
	h := newTestHandle(t)
	sink := &capture{}
	h.AddListener(sink)

	logger := slog.New(New(h, "bridge"))
	logger.Warn("too many attrs",
		"a", 1, "b", 2, "c", 3, "d", 4, "e", 5)

	require.Eventually(t, func() bool { return sink.count.Load() == 1 },
		2*time.Second, time.Millisecond)

	ev := sink.last.Load()
	require.NotNil(t, ev)
	assert.Equal(t, uint8(event.MaxFields), ev.FieldCount)
	require.NotZero(t, ev.KVID, "overflow attrs must land in the kv blob")

	blob, ok := h.Interner().ResolveFieldKey(ev.KVID)
	require.True(t, ok)
	got := kv.ToMap([]byte(blob))
	assert.Equal(t, map[string]string{"d": "4", "e": "5"}, got)
}

func TestHandler_EnabledTracksHandleLevel(t *testing.T) {
	h := newTestHandle(t)
	h.SetLevel(event.LevelWarn)
	b := New(h, "bridge")

	assert.False(t, b.Enabled(nil, slog.LevelInfo))
	assert.True(t, b.Enabled(nil, slog.LevelError))
}

func TestHandler_WithAttrsAndGroups(t *testing.T) {
	h := newTestHandle(t)
	sink := &capture{}
	h.AddListener(sink)

	logger := slog.New(New(h, "bridge")).With("region", "eu").WithGroup("req")
	logger.Info("handled", "id", "r-1")

	require.Eventually(t, func() bool { return sink.count.Load() == 1 },
		2*time.Second, time.Millisecond)

	ev := sink.last.Load()
	require.NotNil(t, ev)
	require.GreaterOrEqual(t, ev.FieldCount, uint8(2))

	k0, _ := h.Interner().ResolveFieldKey(ev.Fields[0].KeyID)
	assert.Equal(t, "region", k0)
	k1, _ := h.Interner().ResolveFieldKey(ev.Fields[1].KeyID)
	assert.Equal(t, "req.id", k1, "group names prefix record attrs")
}

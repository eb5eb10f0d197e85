package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gentleeduck/duck-ttlog/intern"
)

func TestSnapshot_Resolve(t *testing.T) {
	in := intern.New()
	events := buildEvents(t, in)
	snap := Build("svc", "r", time.Now(), events, in)

	resolved := snap.Resolve()
	require.Len(t, resolved, 3)

	r0 := resolved[0]
	assert.Equal(t, "INFO", r0.Level)
	assert.Equal(t, "payments", r0.Target)
	assert.Equal(t, "charge accepted", r0.Message)
	assert.Equal(t, "charge.go", r0.File)
	assert.Equal(t, uint16(10), r0.Line)
	assert.Equal(t, int64(1250), r0.Fields["cents"])
	assert.Equal(t, "ord-1", r0.Fields["order"])
	assert.Equal(t, false, r0.Fields["retry"])

	r1 := resolved[1]
	assert.Equal(t, "ERROR", r1.Level)
	assert.Equal(t, map[string]string{"card": "4242"}, r1.KV)

	r2 := resolved[2]
	assert.Empty(t, r2.Message)
	assert.Nil(t, r2.Fields)
}

func TestSnapshot_ResolveSurvivesRoundTrip(t *testing.T) {
	in := intern.New()
	events := buildEvents(t, in)
	data, err := Encode(Build("svc", "r", time.Now(), events, in), CompressionLZ4)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	resolved := got.Resolve()
	require.Len(t, resolved, 3)
	assert.Equal(t, "charge accepted", resolved[0].Message)
}

func TestSnapshot_MarshalJSON(t *testing.T) {
	in := intern.New()
	snap := Build("svc", "r", time.Now(), buildEvents(t, in), in)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "svc", doc["service"])
	assert.Equal(t, "r", doc["reason"])
	evs, ok := doc["events"].([]any)
	require.True(t, ok)
	assert.Len(t, evs, 3)
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	in := intern.New()
	now := time.Now()
	w := NewWriter("svc", dir, CompressionZstd)

	path, err := w.Write(Build("svc", "r", now, buildEvents(t, in), in), now)
	require.NoError(t, err)

	got, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, "r", got.Reason)

	_, err = DecodeFile(path + ".missing")
	assert.Error(t, err)
}

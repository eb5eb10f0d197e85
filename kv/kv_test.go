package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Deterministic(t *testing.T) {
	m := map[string]any{"b": 2, "a": "x", "c": true}
	first, err := Encode(m)
	require.NoError(t, err)
	second, err := Encode(m)
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical maps must produce identical blobs")
}

func TestEncode_Empty(t *testing.T) {
	blob, err := Encode(nil)
	require.NoError(t, err)
	assert.Nil(t, blob)

	blob, err = Encode(map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestGet(t *testing.T) {
	blob, err := Encode(map[string]any{"user": "u1", "count": 7, "ok": true})
	require.NoError(t, err)

	v, ok := Get(blob, "user")
	require.True(t, ok)
	assert.Equal(t, "u1", v)

	v, ok = Get(blob, "count")
	require.True(t, ok)
	assert.Equal(t, "7", v)

	_, ok = Get(blob, "missing")
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	blob, err := Encode(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, Keys(blob))

	assert.Nil(t, Keys([]byte("not json")))
	assert.Nil(t, Keys([]byte(`[1,2]`)), "non-object blobs have no keys")
}

func TestToMap(t *testing.T) {
	blob, err := Encode(map[string]any{"svc": "api", "retries": 3})
	require.NoError(t, err)
	got := ToMap(blob)
	assert.Equal(t, map[string]string{"svc": "api", "retries": "3"}, got)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid([]byte(`{"a":1}`)))
	assert.False(t, Valid([]byte(`{"a":`)))
}

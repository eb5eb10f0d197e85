// Package kv serialises key/value maps into compact JSON blobs that the
// interner stores once and events reference by handle.
package kv

import (
	"encoding/json"
	"fmt"

	"github.com/valyala/fastjson"
)

// Encode marshals m into a compact JSON object. Keys are emitted in sorted
// order so identical maps produce identical blobs and intern to the same
// handle.
func Encode(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	return json.Marshal(m)
}

// Valid reports whether blob is a well-formed JSON document.
func Valid(blob []byte) bool {
	return fastjson.ValidateBytes(blob) == nil
}

// Keys lists the top-level keys of the blob. Returns nil for malformed or
// non-object blobs.
func Keys(blob []byte) []string {
	var p fastjson.Parser
	v, err := p.ParseBytes(blob)
	if err != nil {
		return nil
	}
	obj, err := v.Object()
	if err != nil {
		return nil
	}
	out := make([]string, 0, obj.Len())
	obj.Visit(func(key []byte, _ *fastjson.Value) {
		out = append(out, string(key))
	})
	return out
}

// Get extracts the value under key as its string representation. The second
// return is false when the key is absent or the blob is malformed.
func Get(blob []byte, key string) (string, bool) {
	var p fastjson.Parser
	v, err := p.ParseBytes(blob)
	if err != nil {
		return "", false
	}
	item := v.Get(key)
	if item == nil {
		return "", false
	}
	return valueString(item), true
}

// ToMap flattens the blob's top level into string form.
func ToMap(blob []byte) map[string]string {
	var p fastjson.Parser
	v, err := p.ParseBytes(blob)
	if err != nil {
		return nil
	}
	obj, err := v.Object()
	if err != nil {
		return nil
	}
	out := make(map[string]string, obj.Len())
	obj.Visit(func(key []byte, item *fastjson.Value) {
		out[string(key)] = valueString(item)
	})
	return out
}

func valueString(v *fastjson.Value) string {
	switch v.Type() {
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}

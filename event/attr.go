package event

import "math"

// Attr is a producer-side key/value pair before interning. The builder
// converts attrs into Fields, replacing the key (and any string value) with
// interner handles.
type Attr struct {
	Key  string
	kind Kind
	bits uint64
	str  string
}

func Bool(key string, v bool) Attr {
	var b uint64
	if v {
		b = 1
	}
	return Attr{Key: key, kind: KindBool, bits: b}
}

func Int(key string, v int) Attr     { return Int64(key, int64(v)) }
func Int64(key string, v int64) Attr { return Attr{Key: key, kind: KindI64, bits: uint64(v)} }
func Int32(key string, v int32) Attr {
	return Attr{Key: key, kind: KindI32, bits: uint64(uint32(v))}
}
func Int16(key string, v int16) Attr {
	return Attr{Key: key, kind: KindI16, bits: uint64(uint16(v))}
}
func Int8(key string, v int8) Attr { return Attr{Key: key, kind: KindI8, bits: uint64(uint8(v))} }

func Uint(key string, v uint) Attr     { return Uint64(key, uint64(v)) }
func Uint64(key string, v uint64) Attr { return Attr{Key: key, kind: KindU64, bits: v} }
func Uint32(key string, v uint32) Attr { return Attr{Key: key, kind: KindU32, bits: uint64(v)} }
func Uint16(key string, v uint16) Attr { return Attr{Key: key, kind: KindU16, bits: uint64(v)} }
func Uint8(key string, v uint8) Attr   { return Attr{Key: key, kind: KindU8, bits: uint64(v)} }

func Float64(key string, v float64) Attr {
	return Attr{Key: key, kind: KindF64, bits: math.Float64bits(v)}
}
func Float32(key string, v float32) Attr {
	return Attr{Key: key, kind: KindF32, bits: uint64(math.Float32bits(v))}
}

// Str attaches a string value. The value is interned in the field-key
// namespace when the event is built.
func Str(key, v string) Attr { return Attr{Key: key, kind: KindString, str: v} }

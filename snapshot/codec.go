package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/gentleeduck/duck-ttlog/event"
)

// Compression selects the codec wrapped around the CBOR payload.
type Compression string

const (
	// CompressionLZ4 is the default: an LZ4 block prefixed with the
	// uncompressed size as a little-endian uint32.
	CompressionLZ4 Compression = "lz4"
	// CompressionZstd wraps the payload in a zstd frame. Frames are
	// self-identifying by magic, so Decode handles both transparently.
	CompressionZstd Compression = "zstd"
)

// ErrDecode wraps any failure while reading a snapshot: truncated input,
// corrupt compression payload or malformed CBOR.
var ErrDecode = errors.New("snapshot: decode failed")

// maxDecodedSize guards against corrupted size prefixes.
const maxDecodedSize = 1 << 30

var zstdMagic = [4]byte{0x28, 0xB5, 0x2F, 0xFD}

// taggedValueBase is the CBOR tag number for event.KindBool; the remaining
// kinds follow in declaration order.
const taggedValueBase = 1000

// TaggedValue is an event.Value that encodes as a CBOR-tagged scalar, the
// tag number identifying the subtype.
type TaggedValue event.Value

func (t TaggedValue) MarshalCBOR() ([]byte, error) {
	v := event.Value(t)
	var content any
	switch v.Kind {
	case event.KindBool:
		content = v.Bool()
	case event.KindU8, event.KindU16, event.KindU32, event.KindU64:
		content = v.Uint64()
	case event.KindI8, event.KindI16, event.KindI32, event.KindI64:
		content = v.Int64()
	case event.KindF32:
		content = v.Float32()
	case event.KindF64:
		content = v.Float64()
	case event.KindString:
		content = v.StringID()
	default:
		return nil, fmt.Errorf("snapshot: unknown field kind %d", v.Kind)
	}
	return cbor.Marshal(cbor.Tag{Number: taggedValueBase + uint64(v.Kind), Content: content})
}

func (t *TaggedValue) UnmarshalCBOR(data []byte) error {
	var raw cbor.RawTag
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Number < taggedValueBase || raw.Number > taggedValueBase+uint64(event.KindString) {
		return fmt.Errorf("snapshot: unknown value tag %d", raw.Number)
	}
	kind := event.Kind(raw.Number - taggedValueBase)
	switch kind {
	case event.KindBool:
		var b bool
		if err := cbor.Unmarshal(raw.Content, &b); err != nil {
			return err
		}
		*t = TaggedValue(event.BoolValue(b))
	case event.KindU8, event.KindU16, event.KindU32, event.KindU64:
		var u uint64
		if err := cbor.Unmarshal(raw.Content, &u); err != nil {
			return err
		}
		*t = TaggedValue(event.Value{Kind: kind, Bits: u})
	case event.KindI8, event.KindI16, event.KindI32, event.KindI64:
		var i int64
		if err := cbor.Unmarshal(raw.Content, &i); err != nil {
			return err
		}
		*t = TaggedValue(event.Value{Kind: kind, Bits: signedBits(kind, i)})
	case event.KindF32:
		var f float32
		if err := cbor.Unmarshal(raw.Content, &f); err != nil {
			return err
		}
		*t = TaggedValue(event.F32Value(f))
	case event.KindF64:
		var f float64
		if err := cbor.Unmarshal(raw.Content, &f); err != nil {
			return err
		}
		*t = TaggedValue(event.F64Value(f))
	case event.KindString:
		var id uint16
		if err := cbor.Unmarshal(raw.Content, &id); err != nil {
			return err
		}
		*t = TaggedValue(event.StringValue(id))
	}
	return nil
}

// signedBits stores a signed value in the truncated bit pattern its kind
// expects, so Value.Int64 round-trips exactly.
func signedBits(kind event.Kind, v int64) uint64 {
	switch kind {
	case event.KindI8:
		return uint64(uint8(int8(v)))
	case event.KindI16:
		return uint64(uint16(int16(v)))
	case event.KindI32:
		return uint64(uint32(int32(v)))
	default:
		return uint64(v)
	}
}

var (
	zstdEncOnce sync.Once
	zstdEnc     *zstd.Encoder
	zstdDecOnce sync.Once
	zstdDec     *zstd.Decoder
)

func zstdEncoder() *zstd.Encoder {
	zstdEncOnce.Do(func() { zstdEnc, _ = zstd.NewWriter(nil) })
	return zstdEnc
}

func zstdDecoder() *zstd.Decoder {
	zstdDecOnce.Do(func() { zstdDec, _ = zstd.NewReader(nil) })
	return zstdDec
}

// Encode serialises the snapshot to CBOR and compresses it.
func Encode(s *Snapshot, comp Compression) ([]byte, error) {
	raw, err := cbor.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	switch comp {
	case CompressionZstd:
		return zstdEncoder().EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
	default:
		dst := make([]byte, 4+lz4.CompressBlockBound(len(raw)))
		binary.LittleEndian.PutUint32(dst[:4], uint32(len(raw)))
		var c lz4.Compressor
		n, err := c.CompressBlock(raw, dst[4:])
		if err != nil || n == 0 {
			return nil, fmt.Errorf("snapshot: lz4 compress: %w", err)
		}
		return dst[:4+n], nil
	}
}

// Decode reads a snapshot from its compressed byte form. The codec is
// detected from the payload: zstd frames by magic, everything else treated
// as a size-prefixed LZ4 block. All failures wrap ErrDecode.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("%w: payload too short", ErrDecode)
	}

	var raw []byte
	if [4]byte(data[:4]) == zstdMagic {
		out, err := zstdDecoder().DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrDecode, err)
		}
		raw = out
	} else {
		size := binary.LittleEndian.Uint32(data[:4])
		if size == 0 || size > maxDecodedSize {
			return nil, fmt.Errorf("%w: implausible size prefix %d", ErrDecode, size)
		}
		buf := make([]byte, size)
		n, err := lz4.UncompressBlock(data[4:], buf)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrDecode, err)
		}
		if n != int(size) {
			return nil, fmt.Errorf("%w: size prefix mismatch (%d != %d)", ErrDecode, n, size)
		}
		raw = buf
	}

	var s Snapshot
	if err := cbor.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: cbor: %v", ErrDecode, err)
	}
	return &s, nil
}

package varcodec

import (
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// widthOf returns the size of T in bits.
func widthOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}

type byteCodec struct{}

// Byte returns a codec that writes a byte as itself, with no varint framing.
func Byte() Codec[byte] { return byteCodec{} }

func (byteCodec) Shape() Shape { return Shape{Kind: KindByte, Type: "byte"} }
func (byteCodec) Size(byte) int { return 1 }
func (byteCodec) Put(b *Buffer, v byte) { b.PutByte(v) }
func (byteCodec) Get(c *Cursor, v *byte) bool {
	x, ok := c.GetByte()
	if ok {
		*v = x
	}
	return ok
}

type boolCodec struct{}

// Bool returns a codec that writes false as varint 0 and true as varint 1.
// Any non-zero value decodes as true.
func Bool() Codec[bool] { return boolCodec{} }

func (boolCodec) Shape() Shape { return Shape{Kind: KindVarint32, Type: "bool"} }
func (boolCodec) Size(bool) int { return 1 }
func (boolCodec) Put(b *Buffer, v bool) {
	if v {
		b.PutByte(1)
	} else {
		b.PutByte(0)
	}
}
func (boolCodec) Get(c *Cursor, v *bool) bool {
	x, ok := c.GetVarint32()
	if ok {
		*v = x != 0
	}
	return ok
}

// varint32Codec carries integers of at most 32 bits through the 32-bit varint path.
type varint32Codec[T constraints.Integer] struct {
	kind Kind
	name string
}

func (c varint32Codec[T]) Shape() Shape { return Shape{Kind: c.kind, Type: c.name} }

// uint32(v) sign-extends negative values, so they always take 5 bytes.
func (varint32Codec[T]) Size(v T) int { return VarintLength(uint64(uint32(v))) }
func (varint32Codec[T]) Put(b *Buffer, v T) { b.PutVarint32(uint32(v)) }
func (varint32Codec[T]) Get(c *Cursor, v *T) bool {
	x, ok := c.GetVarint32()
	if ok {
		*v = T(x)
	}
	return ok
}

type varint64Codec[T constraints.Integer] struct{ name string }

func (c varint64Codec[T]) Shape() Shape { return Shape{Kind: KindVarint64, Type: c.name} }
func (varint64Codec[T]) Size(v T) int { return VarintLength(uint64(v)) }
func (varint64Codec[T]) Put(b *Buffer, v T) { b.PutVarint64(uint64(v)) }
func (varint64Codec[T]) Get(c *Cursor, v *T) bool {
	x, ok := c.GetVarint64()
	if ok {
		*v = T(x)
	}
	return ok
}

// integer picks the varint path from the width of T.
func integer[T constraints.Integer](name string) Codec[T] {
	if widthOf[T]() <= 32 {
		return varint32Codec[T]{kind: KindVarint32, name: name}
	}
	return varint64Codec[T]{name: name}
}

// Int returns a varint codec for a signed integer type.
//
// The two's-complement bit pattern is encoded directly, without zig-zag,
// so every negative value occupies the maximum length for its path:
// 5 bytes for types of 32 bits or fewer, 10 bytes for 64-bit types.
func Int[T constraints.Signed]() Codec[T] {
	return integer[T](fmt.Sprintf("int%d", widthOf[T]()))
}

// Uint returns a varint codec for an unsigned integer type.
func Uint[T constraints.Unsigned]() Codec[T] {
	return integer[T](fmt.Sprintf("uint%d", widthOf[T]()))
}

// Enum returns a codec for an enumeration whose underlying type is an
// integer of at most 32 bits. The value travels as a 32-bit varint.
//
// The shape's type is "enum" for signed T and "uenum" for unsigned T, so
// run-time decoders know how to read the high bit.
//
// Enum panics if T is wider than 32 bits, since the 32-bit wire path
// would silently drop the high bits.
func Enum[T constraints.Integer]() Codec[T] {
	if w := widthOf[T](); w > 32 {
		panic(fmt.Sprintf("varcodec: enum type %T is %d bits wide, enums are limited to 32 bits", *new(T), w))
	}
	if ^T(0) > 0 {
		return varint32Codec[T]{kind: KindEnum, name: "uenum"}
	}
	return varint32Codec[T]{kind: KindEnum, name: "enum"}
}

type fixed32Codec[T ~int32 | ~uint32] struct{ name string }

// Fixed32 returns a codec writing a 32-bit integer as 4 little-endian bytes.
func Fixed32[T ~int32 | ~uint32]() Codec[T] {
	var zero T
	if ^zero < 0 {
		return fixed32Codec[T]{name: "sfixed32"}
	}
	return fixed32Codec[T]{name: "fixed32"}
}

func (c fixed32Codec[T]) Shape() Shape { return Shape{Kind: KindFixed32, Type: c.name} }
func (fixed32Codec[T]) Size(T) int { return 4 }
func (fixed32Codec[T]) Put(b *Buffer, v T) { b.PutFixed32(uint32(v)) }
func (fixed32Codec[T]) Get(c *Cursor, v *T) bool {
	x, ok := c.GetFixed32()
	if ok {
		*v = T(x)
	}
	return ok
}

type fixed64Codec[T ~int64 | ~uint64] struct{ name string }

// Fixed64 returns a codec writing a 64-bit integer as 8 little-endian bytes.
func Fixed64[T ~int64 | ~uint64]() Codec[T] {
	var zero T
	if ^zero < 0 {
		return fixed64Codec[T]{name: "sfixed64"}
	}
	return fixed64Codec[T]{name: "fixed64"}
}

func (c fixed64Codec[T]) Shape() Shape { return Shape{Kind: KindFixed64, Type: c.name} }
func (fixed64Codec[T]) Size(T) int { return 8 }
func (fixed64Codec[T]) Put(b *Buffer, v T) { b.PutFixed64(uint64(v)) }
func (fixed64Codec[T]) Get(c *Cursor, v *T) bool {
	x, ok := c.GetFixed64()
	if ok {
		*v = T(x)
	}
	return ok
}

type float32Codec struct{}

// Float32 returns a codec writing the IEEE-754 bit pattern of a float32 as
// fixed32. Round trips are bit-exact, NaN payloads included.
func Float32() Codec[float32] { return float32Codec{} }

func (float32Codec) Shape() Shape { return Shape{Kind: KindFixed32, Type: "float32"} }
func (float32Codec) Size(float32) int { return 4 }
func (float32Codec) Put(b *Buffer, v float32) { b.PutFixed32(math.Float32bits(v)) }
func (float32Codec) Get(c *Cursor, v *float32) bool {
	x, ok := c.GetFixed32()
	if ok {
		*v = math.Float32frombits(x)
	}
	return ok
}

type float64Codec struct{}

// Float64 returns a codec writing the IEEE-754 bit pattern of a float64 as fixed64.
func Float64() Codec[float64] { return float64Codec{} }

func (float64Codec) Shape() Shape { return Shape{Kind: KindFixed64, Type: "float64"} }
func (float64Codec) Size(float64) int { return 8 }
func (float64Codec) Put(b *Buffer, v float64) { b.PutFixed64(math.Float64bits(v)) }
func (float64Codec) Get(c *Cursor, v *float64) bool {
	x, ok := c.GetFixed64()
	if ok {
		*v = math.Float64frombits(x)
	}
	return ok
}

type stringCodec struct{}

// String returns a codec writing a varint32 byte count followed by the raw
// bytes of the string. Contents are not validated as UTF-8.
func String() Codec[string] { return stringCodec{} }

func (stringCodec) Shape() Shape { return Shape{Kind: KindString, Type: "string"} }
func (stringCodec) Size(v string) int { return VarintLength(uint64(len(v))) + len(v) }
func (stringCodec) Put(b *Buffer, v string) { b.PutString(v) }
func (stringCodec) Get(c *Cursor, v *string) bool {
	x, ok := c.GetString()
	if ok {
		*v = x
	}
	return ok
}

type bytesCodec struct{}

// Bytes returns a codec for byte slices with the same layout as String.
// Decoded slices are copies and never alias the input.
func Bytes() Codec[[]byte] { return bytesCodec{} }

func (bytesCodec) Shape() Shape { return Shape{Kind: KindString, Type: "bytes"} }
func (bytesCodec) Size(v []byte) int { return VarintLength(uint64(len(v))) + len(v) }
func (bytesCodec) Put(b *Buffer, v []byte) {
	b.PutVarint32(uint32(len(v)))
	b.PutRaw(v)
}
func (bytesCodec) Get(c *Cursor, v *[]byte) bool {
	start := c.N
	n, ok := c.GetVarint32()
	if !ok {
		return false
	}
	raw, ok := c.GetRaw(int(n))
	if !ok {
		c.N = start
		return false
	}
	*v = append([]byte(nil), raw...)
	return true
}

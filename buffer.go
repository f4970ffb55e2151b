package varcodec

import "io"

// Buffer is an append-only output buffer for one encode pass.
// It grows as needed, so none of its Put methods can fail.
type Buffer struct {
	B []byte // encoded bytes, len(B) is the write position
}

// NewBuffer creates a Buffer with room for sizeHint bytes.
func NewBuffer(sizeHint int) *Buffer {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Buffer{B: make([]byte, 0, sizeHint)}
}

// Grow ensures there is room for at least n more bytes without reallocating.
func (b *Buffer) Grow(n int) {
	if cap(b.B)-len(b.B) < n {
		grown := make([]byte, len(b.B), 2*cap(b.B)+n)
		copy(grown, b.B)
		b.B = grown
	}
}

// PutByte appends a single raw byte.
func (b *Buffer) PutByte(v byte) { b.B = append(b.B, v) }

// PutVarint32 appends the varint encoding of v.
func (b *Buffer) PutVarint32(v uint32) {
	var scratch [MaxVarintLen32]byte
	n := EncodeVarint32(scratch[:], v)
	b.B = append(b.B, scratch[:n]...)
}

// PutVarint64 appends the varint encoding of v.
func (b *Buffer) PutVarint64(v uint64) {
	var scratch [MaxVarintLen64]byte
	n := EncodeVarint64(scratch[:], v)
	b.B = append(b.B, scratch[:n]...)
}

// PutFixed32 appends v as 4 little-endian bytes.
func (b *Buffer) PutFixed32(v uint32) { b.B = Order.AppendUint32(b.B, v) }

// PutFixed64 appends v as 8 little-endian bytes.
func (b *Buffer) PutFixed64(v uint64) { b.B = Order.AppendUint64(b.B, v) }

// PutRaw appends p verbatim, without a length prefix.
func (b *Buffer) PutRaw(p []byte) { b.B = append(b.B, p...) }

// PutString appends a varint32 byte count followed by the bytes of s.
// The content is not checked for UTF-8 validity.
func (b *Buffer) PutString(s string) {
	b.PutVarint32(uint32(len(s)))
	b.B = append(b.B, s...)
}

// Write implements the io.Writer interface. It always consumes all of p.
func (b *Buffer) Write(p []byte) (int, error) {
	b.B = append(b.B, p...)
	return len(p), nil
}

// WriteByte implements the io.ByteWriter interface.
func (b *Buffer) WriteByte(c byte) error {
	b.B = append(b.B, c)
	return nil
}

// WriteString implements the io.StringWriter interface.
func (b *Buffer) WriteString(s string) (int, error) {
	b.B = append(b.B, s...)
	return len(s), nil
}

// WriteTo implements the io.WriterTo interface, writing everything encoded so far.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	if w == nil {
		return 0, ErrWriteToNil
	}
	n, err := w.Write(b.B)
	if n < 0 || n > len(b.B) {
		return 0, ErrInvalidWrite
	}
	if err == nil && n < len(b.B) {
		err = io.ErrShortWrite
	}
	return int64(n), err
}

// Reset empties the buffer but keeps its storage for reuse.
func (b *Buffer) Reset() { b.B = b.B[:0] }

// Len returns the number of bytes written.
func (b *Buffer) Len() int { return len(b.B) }

// Bytes returns a slice view of the written data.
func (b *Buffer) Bytes() []byte { return b.B }

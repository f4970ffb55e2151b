package varcodec

import (
	"bytes"
	"fmt"
	"io"
)

// Marshal encodes v with c into a new byte slice sized exactly for it.
// Encoding cannot fail.
func Marshal[T any](c Codec[T], v T) []byte {
	b := NewBuffer(c.Size(v))
	c.Put(b, v)
	return b.Bytes()
}

// Append encodes v with c and appends it to dst.
func Append[T any](dst []byte, c Codec[T], v T) []byte {
	b := &Buffer{B: dst}
	b.Grow(c.Size(v))
	c.Put(b, v)
	return b.Bytes()
}

// Unmarshal decodes exactly one value from data into v.
//
// It returns an error wrapping ErrTruncatedData if data does not hold a
// complete value, and ErrTrailingData if bytes are left over afterwards.
// After a failed decode v may be partially populated and should be discarded.
func Unmarshal[T any](c Codec[T], data []byte, v *T) error {
	cur := NewCursor(data)
	if err := Decode(c, cur, v); err != nil {
		return err
	}
	if !cur.Empty() {
		return fmt.Errorf("%w: %d of %d bytes unread", ErrTrailingData, cur.Remaining(), cur.Size())
	}
	return nil
}

// Decode decodes one value from cur into v, leaving any following bytes unread.
func Decode[T any](c Codec[T], cur *Cursor, v *T) error {
	start := cur.Offset()
	if !c.Get(cur, v) {
		return fmt.Errorf("%w: decoding %s at offset %d (%d bytes available)",
			ErrTruncatedData, c.Shape(), start, cur.Size()-start)
	}
	return nil
}

// ReadAll reads r to EOF and decodes a single value from it with Unmarshal.
// WARNING: This is NOT a streaming implementation. It reads the entire `io.Reader`
// into a memory buffer before decoding. It is unsuitable for very large inputs.
func ReadAll[T any](c Codec[T], r io.Reader, v *T) (int64, error) {
	if r == nil {
		return 0, ErrReadFromNil
	}
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer putBytesBuf(buf)

	n, err := buf.ReadFrom(r)
	if err != nil {
		return n, err
	}
	return n, Unmarshal(c, buf.Bytes(), v)
}

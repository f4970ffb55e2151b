package varcodec

import (
	"io"
)

// Message binds a value to its Codec so it satisfies the standard library's
// binary marshaling interfaces (see Binary).
type Message[T any] struct {
	Codec Codec[T]
	Value T
}

// Statically assert that Message implements Binary.
var _ Binary = (*Message[struct{}])(nil)

// NewMessage returns a Message holding v.
func NewMessage[T any](c Codec[T], v T) *Message[T] {
	return &Message[T]{Codec: c, Value: v}
}

// Size returns the encoded size of the held value.
func (m *Message[T]) Size() int { return m.Codec.Size(m.Value) }

// MarshalBinary implements the standard `encoding.BinaryMarshaler` interface.
// Note: This method allocates a new byte slice. For performance-critical paths,
// use `MarshalTo` instead.
func (m *Message[T]) MarshalBinary() ([]byte, error) {
	return Marshal(m.Codec, m.Value), nil
}

// MarshalTo encodes the held value into p without allocating when p is
// large enough. It returns io.ErrShortBuffer, writing nothing, otherwise.
func (m *Message[T]) MarshalTo(p []byte) (int, error) {
	size := m.Size()
	if len(p) < size {
		return 0, io.ErrShortBuffer
	}
	b := &Buffer{B: p[:0:size]}
	m.Codec.Put(b, m.Value)
	return b.Len(), nil
}

// WriteTo implements `io.WriterTo`.
func (m *Message[T]) WriteTo(w io.Writer) (int64, error) {
	if w == nil {
		return 0, ErrWriteToNil
	}
	b := NewBuffer(m.Size())
	m.Codec.Put(b, m.Value)
	return b.WriteTo(w)
}

// UnmarshalBinary implements the standard `encoding.BinaryUnmarshaler` interface.
// It rejects truncated input and input with unread trailing bytes.
func (m *Message[T]) UnmarshalBinary(data []byte) error {
	var v T
	if err := Unmarshal(m.Codec, data, &v); err != nil {
		return err
	}
	m.Value = v
	return nil
}

// ReadFrom implements `io.ReaderFrom` by reading r to EOF and decoding the result.
func (m *Message[T]) ReadFrom(r io.Reader) (int64, error) {
	var v T
	n, err := ReadAll(m.Codec, r, &v)
	if err != nil {
		return n, err
	}
	m.Value = v
	return n, nil
}

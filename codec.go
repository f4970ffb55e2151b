package varcodec

import (
	"encoding"
	"io"
)

// Codec encodes and decodes values of type T for one static shape.
//
// Put appends v to b and never fails. Get decodes into *v from c and
// reports whether the input held a complete, well-formed value; there is
// no finer failure detail. The stream carries no type information, so the
// reader must use a Codec of the same shape as the writer.
type Codec[T any] interface {
	// Shape describes the wire layout produced by this codec.
	Shape() Shape
	// Size returns the number of bytes Put would append for v.
	Size(v T) int
	Put(b *Buffer, v T)
	Get(c *Cursor, v *T) bool
}

// Sizer is an interface for types that can report their binary size.
// This is useful for pre-allocating buffers before encoding.
type Sizer interface {
	// Size returns the size of the type in bytes when binary encoded.
	Size() int
}

// Marshaler defines the core methods for encoding an object into a byte stream.
type Marshaler interface {
	// encoding.BinaryMarshaler provides the primary encoding method.
	// It allocates and returns a new byte slice.
	encoding.BinaryMarshaler // Method: MarshalBinary() ([]byte, error)
	// io.WriterTo writes the encoding to a stream.
	io.WriterTo // Method: WriteTo(writer io.Writer) (int64, error)

	// MarshalTo encodes the object into a pre-allocated buffer, returning
	// io.ErrShortBuffer if the buffer is too small.
	MarshalTo(buf []byte) (int, error)
}

// Unmarshaler defines the core methods for decoding a byte stream into an object.
type Unmarshaler interface {
	// encoding.BinaryUnmarshaler decodes data from a byte slice.
	encoding.BinaryUnmarshaler // Method: UnmarshalBinary(data []byte) error
	// io.ReaderFrom reads the whole stream, then decodes it.
	io.ReaderFrom // Method: ReadFrom(r io.Reader) (int64, error)
}

// Binary aggregates all binary serialization and deserialization interfaces.
// Message implements it for any value with a Codec.
type Binary interface {
	Sizer
	Marshaler
	Unmarshaler
}

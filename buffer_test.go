package varcodec

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Mocks and Helpers ---

// shortWriter accepts at most limit bytes per call.
type shortWriter struct {
	bytes.Buffer
	limit int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		p = p[:w.limit]
	}
	return w.Buffer.Write(p)
}

// badWriter reports a byte count it could not have written.
type badWriter struct{ n int }

func (w badWriter) Write([]byte) (int, error) { return w.n, nil }

// --- Buffer Test Suite ---

type BufferTestSuite struct {
	suite.Suite
	buf *Buffer
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *BufferTestSuite) SetupTest() {
	s.buf = NewBuffer(0)
}

func (s *BufferTestSuite) TestPrimitivePuts() {
	s.buf.PutByte(0xAA)
	s.buf.PutVarint32(300)
	s.buf.PutVarint64(1 << 35)
	s.buf.PutFixed32(0xDDEEFF00)
	s.buf.PutFixed64(0x0102030405060708)
	s.buf.PutRaw([]byte{5, 6, 7})
	s.buf.PutString("hi")

	expected := []byte{
		0xAA,       // PutByte
		0xAC, 0x02, // PutVarint32(300)
		0x80, 0x80, 0x80, 0x80, 0x80, 0x01, // PutVarint64(1<<35)
		0x00, 0xFF, 0xEE, 0xDD, // PutFixed32 (Little Endian)
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // PutFixed64 (Little Endian)
		5, 6, 7, // PutRaw
		0x02, 'h', 'i', // PutString
	}
	s.Assert().Equal(expected, s.buf.Bytes())
	s.Assert().Equal(len(expected), s.buf.Len())
}

func (s *BufferTestSuite) TestEmptyString() {
	s.buf.PutString("")
	s.Assert().Equal([]byte{0x00}, s.buf.Bytes())
}

func (s *BufferTestSuite) TestGrowKeepsContents() {
	s.buf.PutRaw([]byte{1, 2, 3})
	s.buf.Grow(100)
	s.Assert().GreaterOrEqual(cap(s.buf.B)-s.buf.Len(), 100)
	s.Assert().Equal([]byte{1, 2, 3}, s.buf.Bytes())
}

func (s *BufferTestSuite) TestResetKeepsStorage() {
	s.buf.PutRaw(make([]byte, 64))
	before := cap(s.buf.B)
	s.buf.Reset()
	s.Assert().Zero(s.buf.Len())
	s.Assert().Equal(before, cap(s.buf.B))
}

func (s *BufferTestSuite) TestIOInterfaces() {
	n, err := s.buf.Write([]byte{1, 2})
	s.Require().NoError(err)
	s.Assert().Equal(2, n)
	s.Require().NoError(s.buf.WriteByte(3))
	n, err = s.buf.WriteString("ab")
	s.Require().NoError(err)
	s.Assert().Equal(2, n)
	s.Assert().Equal([]byte{1, 2, 3, 'a', 'b'}, s.buf.Bytes())
}

func (s *BufferTestSuite) TestWriteTo() {
	s.buf.PutRaw([]byte{1, 2, 3, 4})

	s.T().Run("Success", func(t *testing.T) {
		var out bytes.Buffer
		n, err := s.buf.WriteTo(&out)
		require.NoError(t, err)
		assert.EqualValues(t, 4, n)
		assert.Equal(t, []byte{1, 2, 3, 4}, out.Bytes())
	})

	s.T().Run("NilWriter", func(t *testing.T) {
		_, err := s.buf.WriteTo(nil)
		assert.ErrorIs(t, err, ErrWriteToNil)
	})

	s.T().Run("ShortWrite", func(t *testing.T) {
		w := &shortWriter{limit: 3}
		n, err := s.buf.WriteTo(w)
		assert.ErrorIs(t, err, io.ErrShortWrite)
		assert.EqualValues(t, 3, n)
	})

	s.T().Run("InvalidCount", func(t *testing.T) {
		_, err := s.buf.WriteTo(badWriter{n: 99})
		assert.ErrorIs(t, err, ErrInvalidWrite)
	})
}

// TestBuffer runs the BufferTestSuite.
func TestBuffer(t *testing.T) {
	suite.Run(t, new(BufferTestSuite))
}

// --- Cursor Test Suite ---

type CursorTestSuite struct {
	suite.Suite
}

func (s *CursorTestSuite) TestSuccessfulReads() {
	data := []byte{
		0xAA,       // byte
		0xAC, 0x02, // varint32
		0x80, 0x80, 0x80, 0x80, 0x80, 0x01, // varint64
		0x00, 0xFF, 0xEE, 0xDD, // fixed32
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // fixed64
		0x02, 'h', 'i', // string
		0x11, 0x22, // raw bytes
	}
	c := NewCursor(data)

	b, ok := c.GetByte()
	s.Require().True(ok)
	s.Assert().Equal(byte(0xAA), b)

	v32, ok := c.GetVarint32()
	s.Require().True(ok)
	s.Assert().Equal(uint32(300), v32)

	v64, ok := c.GetVarint64()
	s.Require().True(ok)
	s.Assert().Equal(uint64(1<<35), v64)

	f32, ok := c.GetFixed32()
	s.Require().True(ok)
	s.Assert().Equal(uint32(0xDDEEFF00), f32)

	f64, ok := c.GetFixed64()
	s.Require().True(ok)
	s.Assert().Equal(uint64(0x0102030405060708), f64)

	str, ok := c.GetString()
	s.Require().True(ok)
	s.Assert().Equal("hi", str)

	peek, ok := c.Peek(2)
	s.Require().True(ok)
	s.Assert().Equal([]byte{0x11, 0x22}, peek)
	s.Assert().Equal(2, c.Remaining(), "Peek must not consume")

	raw, ok := c.GetRaw(2)
	s.Require().True(ok)
	s.Assert().Equal([]byte{0x11, 0x22}, raw)

	s.Assert().True(c.Empty())
	s.Assert().Equal(len(data), c.Offset())
	s.Assert().Nil(c.Rest())

	_, ok = c.GetByte()
	s.Assert().False(ok)
}

// Every failed Get must leave the cursor exactly where it was.
func (s *CursorTestSuite) TestFailedReadsDoNotAdvance() {
	cases := []struct {
		name string
		data []byte
		get  func(*Cursor) bool
	}{
		{"Byte", nil, func(c *Cursor) bool { _, ok := c.GetByte(); return ok }},
		{"Varint32", []byte{0x80, 0x80}, func(c *Cursor) bool { _, ok := c.GetVarint32(); return ok }},
		{"Varint64", []byte{0xff}, func(c *Cursor) bool { _, ok := c.GetVarint64(); return ok }},
		{"Fixed32", []byte{1, 2, 3}, func(c *Cursor) bool { _, ok := c.GetFixed32(); return ok }},
		{"Fixed64", []byte{1, 2, 3, 4, 5, 6, 7}, func(c *Cursor) bool { _, ok := c.GetFixed64(); return ok }},
		{"StringBody", []byte{0x05, 'a', 'b'}, func(c *Cursor) bool { _, ok := c.GetString(); return ok }},
		{"StringLength", []byte{0x85}, func(c *Cursor) bool { _, ok := c.GetString(); return ok }},
		{"Raw", []byte{1}, func(c *Cursor) bool { _, ok := c.GetRaw(2); return ok }},
		{"NegativeRaw", []byte{1}, func(c *Cursor) bool { _, ok := c.GetRaw(-1); return ok }},
	}
	for _, tc := range cases {
		s.T().Run(tc.name, func(t *testing.T) {
			// A leading byte is consumed first so the rewind target is not zero.
			c := NewCursor(append([]byte{0x00}, tc.data...))
			_, ok := c.GetByte()
			require.True(t, ok)

			assert.False(t, tc.get(c))
			assert.Equal(t, 1, c.Offset())
		})
	}
}

func (s *CursorTestSuite) TestStringIsCopied() {
	data := []byte{0x03, 'a', 'b', 'c'}
	c := NewCursor(data)
	str, ok := c.GetString()
	s.Require().True(ok)
	data[1] = 'z'
	s.Assert().Equal("abc", str)
}

func (s *CursorTestSuite) TestMultibyteString() {
	b := NewBuffer(0)
	b.PutString("héllo, 世界")
	s.Assert().Equal(byte(len("héllo, 世界")), b.Bytes()[0], "length counts bytes, not runes")

	str, ok := NewCursor(b.Bytes()).GetString()
	s.Require().True(ok)
	s.Assert().Equal("héllo, 世界", str)
}

// TestCursor runs the CursorTestSuite.
func TestCursor(t *testing.T) {
	suite.Run(t, new(CursorTestSuite))
}

func TestErrorsAreDistinct(t *testing.T) {
	all := []error{
		ErrTruncatedData, ErrTrailingData, ErrUnregisteredType, ErrNilValue,
		ErrNotPointer, ErrWriteToNil, ErrReadFromNil, ErrInvalidWrite,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v must not match %v", a, b)
			}
		}
	}
}

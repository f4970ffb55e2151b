package varcodec

// Cursor is a read-only view over an encoded byte region.
//
// Every Get method either consumes exactly the bytes of one value and
// reports true, or reports false and leaves the cursor where it was.
// A Cursor never reads past the end of its region. It must not be shared
// between goroutines without external synchronization; independent
// Cursors over the same region are safe.
type Cursor struct {
	B []byte // viewed region
	N int    // current read position
}

// NewCursor creates a Cursor positioned at the start of data.
// The Cursor does not copy data; data must not be modified while it is in use.
func NewCursor(data []byte) *Cursor {
	return &Cursor{B: data}
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	if c.N >= len(c.B) {
		return 0
	}
	return len(c.B) - c.N
}

// Empty reports whether every byte has been consumed.
func (c *Cursor) Empty() bool { return c.Remaining() == 0 }

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int { return c.N }

// Size returns the length of the whole viewed region.
func (c *Cursor) Size() int { return len(c.B) }

// Rest returns the unread part of the region without consuming it.
func (c *Cursor) Rest() []byte {
	if c.N >= len(c.B) {
		return nil
	}
	return c.B[c.N:]
}

// Peek returns the next n bytes without consuming them.
func (c *Cursor) Peek(n int) ([]byte, bool) {
	if n < 0 || c.Remaining() < n {
		return nil, false
	}
	return c.B[c.N : c.N+n], true
}

// GetByte consumes a single raw byte.
func (c *Cursor) GetByte() (byte, bool) {
	if c.N >= len(c.B) {
		return 0, false
	}
	v := c.B[c.N]
	c.N++
	return v, true
}

// GetVarint32 consumes a varint-encoded 32-bit integer.
func (c *Cursor) GetVarint32() (uint32, bool) {
	v, n := DecodeVarint32(c.Rest())
	if n == 0 {
		return 0, false
	}
	c.N += n
	return v, true
}

// GetVarint64 consumes a varint-encoded 64-bit integer.
func (c *Cursor) GetVarint64() (uint64, bool) {
	v, n := DecodeVarint64(c.Rest())
	if n == 0 {
		return 0, false
	}
	c.N += n
	return v, true
}

// GetFixed32 consumes 4 little-endian bytes.
func (c *Cursor) GetFixed32() (uint32, bool) {
	v, ok := DecodeFixed32(c.Rest())
	if ok {
		c.N += 4
	}
	return v, ok
}

// GetFixed64 consumes 8 little-endian bytes.
func (c *Cursor) GetFixed64() (uint64, bool) {
	v, ok := DecodeFixed64(c.Rest())
	if ok {
		c.N += 8
	}
	return v, ok
}

// GetRaw consumes n bytes and returns them. The returned slice aliases the
// viewed region; copy it if it must outlive the region.
func (c *Cursor) GetRaw(n int) ([]byte, bool) {
	p, ok := c.Peek(n)
	if ok {
		c.N += n
	}
	return p, ok
}

// GetString consumes a varint32 byte count and that many bytes, returning a copy.
// On failure nothing is consumed, including the count.
func (c *Cursor) GetString() (string, bool) {
	start := c.N
	n, ok := c.GetVarint32()
	if !ok {
		return "", false
	}
	// int(n) is negative only on 32-bit platforms.
	if int(n) < 0 || uint64(n) > uint64(c.Remaining()) {
		c.N = start
		return "", false
	}
	s := string(c.B[c.N : c.N+int(n)])
	c.N += int(n)
	return s, true
}

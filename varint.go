package varcodec

const (
	// MaxVarintLen32 is the maximum length of a varint-encoded 32-bit integer.
	MaxVarintLen32 = 5
	// MaxVarintLen64 is the maximum length of a varint-encoded 64-bit integer.
	MaxVarintLen64 = 10
)

const continuation = 0x80

// VarintLength returns the number of bytes the varint encoding of v occupies.
// The result is in the range [1, MaxVarintLen64].
func VarintLength(v uint64) int {
	n := 1
	for v >= continuation {
		v >>= 7
		n++
	}
	return n
}

// EncodeVarint32 writes the varint encoding of v into dst and returns the
// number of bytes written. dst must have room for MaxVarintLen32 bytes.
//
// Groups of 7 bits are emitted least-significant first; every byte except
// the last has its high bit set.
func EncodeVarint32(dst []byte, v uint32) int {
	switch {
	case v < 1<<7:
		dst[0] = byte(v)
		return 1
	case v < 1<<14:
		_ = dst[1]
		dst[0] = byte(v) | continuation
		dst[1] = byte(v >> 7)
		return 2
	case v < 1<<21:
		_ = dst[2]
		dst[0] = byte(v) | continuation
		dst[1] = byte(v>>7) | continuation
		dst[2] = byte(v >> 14)
		return 3
	case v < 1<<28:
		_ = dst[3]
		dst[0] = byte(v) | continuation
		dst[1] = byte(v>>7) | continuation
		dst[2] = byte(v>>14) | continuation
		dst[3] = byte(v >> 21)
		return 4
	default:
		_ = dst[4]
		dst[0] = byte(v) | continuation
		dst[1] = byte(v>>7) | continuation
		dst[2] = byte(v>>14) | continuation
		dst[3] = byte(v>>21) | continuation
		dst[4] = byte(v >> 28)
		return 5
	}
}

// EncodeVarint64 writes the varint encoding of v into dst and returns the
// number of bytes written. dst must have room for MaxVarintLen64 bytes.
func EncodeVarint64(dst []byte, v uint64) int {
	i := 0
	for v >= continuation {
		dst[i] = byte(v) | continuation
		v >>= 7
		i++
	}
	dst[i] = byte(v)
	return i + 1
}

// DecodeVarint32 decodes a varint-encoded 32-bit integer from the start of p.
// It returns the value and the number of bytes consumed. n == 0 means p ended
// before a terminating byte, or no terminating byte appeared within
// MaxVarintLen32 bytes. Payload bits of the fifth byte beyond bit 31 are
// discarded.
func DecodeVarint32(p []byte) (v uint32, n int) {
	// A lone byte below 0x80 is by far the common case (small counts, lengths).
	if len(p) > 0 && p[0] < continuation {
		return uint32(p[0]), 1
	}
	var result uint32
	for shift, i := uint(0), 0; shift <= 28 && i < len(p); shift, i = shift+7, i+1 {
		b := uint32(p[i])
		if b&continuation == 0 {
			return result | b<<shift, i + 1
		}
		result |= (b & 0x7f) << shift
	}
	return 0, 0
}

// DecodeVarint64 decodes a varint-encoded 64-bit integer from the start of p.
// It returns the value and the number of bytes consumed, or n == 0 if p is
// exhausted or no terminating byte appears within MaxVarintLen64 bytes.
func DecodeVarint64(p []byte) (v uint64, n int) {
	var result uint64
	for shift, i := uint(0), 0; shift <= 63 && i < len(p); shift, i = shift+7, i+1 {
		b := uint64(p[i])
		if b&continuation == 0 {
			return result | b<<shift, i + 1
		}
		result |= (b & 0x7f) << shift
	}
	return 0, 0
}

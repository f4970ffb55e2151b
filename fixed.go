package varcodec

import "encoding/binary"

// Order is the byte order of every fixed-width value on the wire.
// It is not configurable; readers and writers must agree on it statically.
var Order = binary.LittleEndian

// EncodeFixed32 writes v into the first 4 bytes of buf in little-endian order.
func EncodeFixed32(buf []byte, v uint32) { Order.PutUint32(buf, v) }

// EncodeFixed64 writes v into the first 8 bytes of buf in little-endian order.
func EncodeFixed64(buf []byte, v uint64) { Order.PutUint64(buf, v) }

// DecodeFixed32 reads a little-endian uint32 from the start of p.
// It reports false if fewer than 4 bytes are available.
func DecodeFixed32(p []byte) (uint32, bool) {
	if len(p) < 4 {
		return 0, false
	}
	return Order.Uint32(p), true
}

// DecodeFixed64 reads a little-endian uint64 from the start of p.
// It reports false if fewer than 8 bytes are available.
func DecodeFixed64(p []byte) (uint64, bool) {
	if len(p) < 8 {
		return 0, false
	}
	return Order.Uint64(p), true
}

package varcodec

import (
	"maps"
	"slices"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// maxPrealloc is the most memory, in bytes, a container reserves before
// its elements have actually decoded. Larger containers grow by appending.
const maxPrealloc = 64 << 10

// capHint bounds a count read from the input by the bytes left to read and
// by maxPrealloc, given the in-memory size of one element.
func capHint(count uint32, remaining int, elemSize uintptr) int {
	n := min(uint64(count), uint64(max(remaining, 0)))
	if elemSize > 0 {
		n = min(n, uint64(maxPrealloc/elemSize))
	}
	return int(n)
}

// sliceCodec is a length-prefixed homogeneous sequence.
type sliceCodec[T any] struct {
	elem Codec[T]
}

// Slice returns a codec for []T: a varint32 element count followed by each
// element encoded with elem, back to back, with no per-element framing.
//
// Get appends decoded elements to the destination. If an element fails to
// decode, Get returns false and the destination keeps every element that
// decoded before it.
func Slice[T any](elem Codec[T]) Codec[[]T] {
	return &sliceCodec[T]{elem: elem}
}

func (s *sliceCodec[T]) Shape() Shape {
	elem := s.elem.Shape()
	return Shape{Kind: KindSequence, Elem: &elem}
}

func (s *sliceCodec[T]) Size(v []T) int {
	n := VarintLength(uint64(len(v)))
	for _, e := range v {
		n += s.elem.Size(e)
	}
	return n
}

func (s *sliceCodec[T]) Put(b *Buffer, v []T) {
	b.PutVarint32(uint32(len(v)))
	for _, e := range v {
		s.elem.Put(b, e)
	}
}

func (s *sliceCodec[T]) Get(c *Cursor, v *[]T) bool {
	count, ok := c.GetVarint32()
	if !ok {
		return false
	}
	var zero T
	*v = slices.Grow(*v, capHint(count, c.Remaining(), unsafe.Sizeof(zero)))
	for i := uint32(0); i < count; i++ {
		var e T
		if !s.elem.Get(c, &e) {
			return false
		}
		*v = append(*v, e)
	}
	return true
}

// mapCodec is a length-prefixed sequence of key/value pairs.
type mapCodec[K comparable, V any] struct {
	key   Codec[K]
	value Codec[V]
	// keys, when set, fixes the order pairs are written in.
	keys func(map[K]V) []K
}

// Map returns a codec for map[K]V: a varint32 pair count followed by each
// key and its value. Pairs are written in Go's map iteration order, so two
// encodings of the same map may differ; use SortedMap when output must be
// reproducible.
//
// Get allocates a nil destination and inserts pairs as they decode; a key
// seen twice keeps the last value. On failure the pairs inserted so far remain.
func Map[K comparable, V any](key Codec[K], value Codec[V]) Codec[map[K]V] {
	return &mapCodec[K, V]{key: key, value: value}
}

// SortedMap is Map with pairs written in ascending key order. The wire
// format is identical, so either codec decodes the other's output.
func SortedMap[K constraints.Ordered, V any](key Codec[K], value Codec[V]) Codec[map[K]V] {
	return &mapCodec[K, V]{key: key, value: value, keys: sortedKeys[K, V]}
}

func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

func (m *mapCodec[K, V]) Shape() Shape {
	key, value := m.key.Shape(), m.value.Shape()
	return Shape{Kind: KindMap, Key: &key, Elem: &value}
}

func (m *mapCodec[K, V]) Size(v map[K]V) int {
	n := VarintLength(uint64(len(v)))
	for k, e := range v {
		n += m.key.Size(k) + m.value.Size(e)
	}
	return n
}

func (m *mapCodec[K, V]) Put(b *Buffer, v map[K]V) {
	b.PutVarint32(uint32(len(v)))
	if m.keys != nil {
		for _, k := range m.keys(v) {
			m.key.Put(b, k)
			m.value.Put(b, v[k])
		}
		return
	}
	for k, e := range v {
		m.key.Put(b, k)
		m.value.Put(b, e)
	}
}

func (m *mapCodec[K, V]) Get(c *Cursor, v *map[K]V) bool {
	count, ok := c.GetVarint32()
	if !ok {
		return false
	}
	if *v == nil {
		var k K
		var e V
		*v = make(map[K]V, capHint(count, c.Remaining(), unsafe.Sizeof(k)+unsafe.Sizeof(e)))
	}
	for i := uint32(0); i < count; i++ {
		var k K
		var e V
		if !m.key.Get(c, &k) || !m.value.Get(c, &e) {
			return false
		}
		(*v)[k] = e
	}
	return true
}

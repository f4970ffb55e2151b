package varcodec

import "fmt"

// field is one registered member of a Record: how to reach it from the
// enclosing value and how to encode it.
type field[T any] struct {
	info FieldInfo
	size func(*T) int
	put  func(*Buffer, *T)
	get  func(*Cursor, *T) bool
}

// Record is the Codec for a composite type T. It is built once per type by
// NewRecord, Extend and Field, and is safe for concurrent use afterwards.
//
// A Record writes its parent's fields (recursively, oldest ancestor first)
// followed by its own fields in registration order. Nothing else is
// written: no tag, no field number, no length. Decoding assumes the
// writer used a Record of exactly the same layout.
type Record[T any] struct {
	desc   *Descriptor
	parent *field[T]
	fields []field[T]
}

// NewRecord starts the description of composite type T under the given name.
func NewRecord[T any](name string) *Record[T] {
	return &Record[T]{desc: &Descriptor{Name: name}}
}

// Extend declares that T inherits the fields of parent. base returns the
// part of a T that the parent codec reads and writes, typically the address
// of an embedded struct. A Record has at most one parent.
func Extend[T, P any](r *Record[T], parent *Record[P], base func(*T) *P) *Record[T] {
	if r.parent != nil {
		panic(fmt.Sprintf("varcodec: %s already extends %s", r.desc.Name, r.desc.Parent.Name))
	}
	if parent == nil || base == nil {
		panic(fmt.Sprintf("varcodec: %s: Extend needs a parent record and a base accessor", r.desc.Name))
	}
	for d := parent.desc; d != nil; d = d.Parent {
		if d == r.desc {
			panic(fmt.Sprintf("varcodec: %s cannot extend %s: inheritance cycle", r.desc.Name, parent.desc.Name))
		}
	}
	r.desc.Parent = parent.desc
	r.parent = &field[T]{
		size: func(v *T) int { return parent.size(base(v)) },
		put:  func(b *Buffer, v *T) { parent.put(b, base(v)) },
		get:  func(c *Cursor, v *T) bool { return parent.get(c, base(v)) },
	}
	return r
}

// Field appends a field to T's wire layout. access returns the address of
// the field inside a T and is used for both encoding and decoding.
func Field[T, F any](r *Record[T], name string, codec Codec[F], access func(*T) *F) *Record[T] {
	if codec == nil || access == nil {
		panic(fmt.Sprintf("varcodec: %s.%s: Field needs a codec and an accessor", r.desc.Name, name))
	}
	for _, f := range r.fields {
		if f.info.Name == name {
			panic(fmt.Sprintf("varcodec: %s.%s registered twice", r.desc.Name, name))
		}
	}
	info := FieldInfo{Name: name, Shape: codec.Shape()}
	r.desc.Fields = append(r.desc.Fields, info)
	r.fields = append(r.fields, field[T]{
		info: info,
		size: func(v *T) int { return codec.Size(*access(v)) },
		put:  func(b *Buffer, v *T) { codec.Put(b, *access(v)) },
		get:  func(c *Cursor, v *T) bool { return codec.Get(c, access(v)) },
	})
	return r
}

// Descriptor returns the schema of T. Callers must not modify it.
func (r *Record[T]) Descriptor() *Descriptor { return r.desc }

func (r *Record[T]) Shape() Shape {
	return Shape{Kind: KindComposite, Type: r.desc.Name, Record: r.desc}
}

func (r *Record[T]) Size(v T) int { return r.size(&v) }

func (r *Record[T]) Put(b *Buffer, v T) { r.put(b, &v) }

// Get decodes T's fields into *v in wire order and stops at the first
// field that fails, leaving that field and every later one as they were.
// A failure in an inherited field fails the whole decode before any own
// field is attempted.
func (r *Record[T]) Get(c *Cursor, v *T) bool { return r.get(c, v) }

func (r *Record[T]) size(v *T) int {
	n := 0
	if r.parent != nil {
		n += r.parent.size(v)
	}
	for i := range r.fields {
		n += r.fields[i].size(v)
	}
	return n
}

func (r *Record[T]) put(b *Buffer, v *T) {
	if r.parent != nil {
		r.parent.put(b, v)
	}
	for i := range r.fields {
		r.fields[i].put(b, v)
	}
}

func (r *Record[T]) get(c *Cursor, v *T) bool {
	if r.parent != nil && !r.parent.get(c, v) {
		return false
	}
	for i := range r.fields {
		if !r.fields[i].get(c, v) {
			return false
		}
	}
	return true
}

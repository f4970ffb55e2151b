package varcodec

import (
	"fmt"
	"strings"
)

// Kind is the wire shape of a value. The set is closed: every value the
// engine handles maps to exactly one Kind, known before encoding starts.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindByte
	KindVarint32
	KindVarint64
	KindFixed32
	KindFixed64
	KindEnum
	KindString
	KindSequence
	KindMap
	KindComposite
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindByte:      "byte",
	KindVarint32:  "varint32",
	KindVarint64:  "varint64",
	KindFixed32:   "fixed32",
	KindFixed64:   "fixed64",
	KindEnum:      "enum",
	KindString:    "string",
	KindSequence:  "sequence",
	KindMap:       "map",
	KindComposite: "composite",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Scalar reports whether values of this kind carry no nested shapes.
func (k Kind) Scalar() bool {
	return k >= KindByte && k <= KindString
}

// Shape describes how one value is laid out on the wire.
//
// Type names the in-memory representation for scalar kinds ("int16",
// "float32", "bool", "bytes", ...). It does not change the wire format of
// the Kind; it tells dynamic decoders how to present the value.
type Shape struct {
	Kind   Kind
	Type   string
	Key    *Shape      // map key
	Elem   *Shape      // sequence element or map value
	Record *Descriptor // composite
}

// String renders the shape as a Go-like type expression, e.g. "[]string"
// or "map[string]Person".
func (s Shape) String() string {
	switch s.Kind {
	case KindSequence:
		return "[]" + s.Elem.String()
	case KindMap:
		return "map[" + s.Key.String() + "]" + s.Elem.String()
	case KindComposite:
		if s.Record != nil {
			return s.Record.Name
		}
	}
	if s.Type != "" {
		return s.Type
	}
	return s.Kind.String()
}

// Descriptor is the schema of a composite type: its name, the composite it
// extends (if any), and its own fields in wire order.
type Descriptor struct {
	Name   string
	Parent *Descriptor
	Fields []FieldInfo
}

// FieldInfo names one declared field of a composite.
type FieldInfo struct {
	Name  string
	Shape Shape
}

// Chain returns the descriptor's ancestry, oldest ancestor first and d last.
// This is the order in which field groups appear on the wire.
func (d *Descriptor) Chain() []*Descriptor {
	var chain []*Descriptor
	for cur := d; cur != nil; cur = cur.Parent {
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Layout lists every field that is encoded for d, inherited fields first,
// each qualified with the name of the descriptor that declares it.
func (d *Descriptor) Layout() []string {
	var out []string
	for _, desc := range d.Chain() {
		for _, f := range desc.Fields {
			out = append(out, desc.Name+"."+f.Name+" "+f.Shape.String())
		}
	}
	return out
}

func (d *Descriptor) String() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	if d.Parent != nil {
		sb.WriteString(" : ")
		sb.WriteString(d.Parent.Name)
	}
	sb.WriteString(" {")
	for i, f := range d.Fields {
		if i > 0 {
			sb.WriteString(";")
		}
		sb.WriteString(" ")
		sb.WriteString(f.Name)
		sb.WriteString(" ")
		sb.WriteString(f.Shape.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

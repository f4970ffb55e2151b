package dynamic

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oy3o/varcodec"
)

var (
	// ErrSchema indicates a schema document that cannot describe a valid layout.
	ErrSchema = errors.New("dynamic: invalid schema")

	// ErrValue indicates a value that does not fit the shape it is encoded as.
	ErrValue = errors.New("dynamic: value does not match shape")
)

// scalars maps type names usable in a schema to their wire shape. The
// shapes are the ones the typed codecs of package varcodec report, so
// streams written by either side decode with the other.
var scalars = map[string]varcodec.Shape{
	"byte":     {Kind: varcodec.KindByte, Type: "byte"},
	"bool":     {Kind: varcodec.KindVarint32, Type: "bool"},
	"int8":     {Kind: varcodec.KindVarint32, Type: "int8"},
	"int16":    {Kind: varcodec.KindVarint32, Type: "int16"},
	"int32":    {Kind: varcodec.KindVarint32, Type: "int32"},
	"int64":    {Kind: varcodec.KindVarint64, Type: "int64"},
	"int":      {Kind: varcodec.KindVarint64, Type: "int64"},
	"uint8":    {Kind: varcodec.KindVarint32, Type: "uint8"},
	"uint16":   {Kind: varcodec.KindVarint32, Type: "uint16"},
	"uint32":   {Kind: varcodec.KindVarint32, Type: "uint32"},
	"uint64":   {Kind: varcodec.KindVarint64, Type: "uint64"},
	"uint":     {Kind: varcodec.KindVarint64, Type: "uint64"},
	"float32":  {Kind: varcodec.KindFixed32, Type: "float32"},
	"float64":  {Kind: varcodec.KindFixed64, Type: "float64"},
	"fixed32":  {Kind: varcodec.KindFixed32, Type: "fixed32"},
	"sfixed32": {Kind: varcodec.KindFixed32, Type: "sfixed32"},
	"fixed64":  {Kind: varcodec.KindFixed64, Type: "fixed64"},
	"sfixed64": {Kind: varcodec.KindFixed64, Type: "sfixed64"},
	"enum":     {Kind: varcodec.KindEnum, Type: "enum"},
	"uenum":    {Kind: varcodec.KindEnum, Type: "uenum"},
	"string":   {Kind: varcodec.KindString, Type: "string"},
	"bytes":    {Kind: varcodec.KindString, Type: "bytes"},
}

// schemaFile is the YAML layout of a schema document:
//
//	types:
//	  Actor:
//	    fields:
//	      - {name: country, type: enum}
//	  Person:
//	    parent: Actor
//	    fields:
//	      - {name: name, type: string}
//	      - {name: tags, type: "[]string"}
type schemaFile struct {
	Types map[string]typeSpec `yaml:"types"`
}

type typeSpec struct {
	Parent string      `yaml:"parent"`
	Fields []fieldSpec `yaml:"fields"`
}

type fieldSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Schema is a set of composite descriptors loaded from a document rather
// than registered in code.
type Schema struct {
	types map[string]*varcodec.Descriptor
}

// LoadSchema reads and parses the schema document at path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema %s: %w", path, err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSchema parses a YAML schema document. Unknown keys, unknown type
// names, duplicate fields, inheritance cycles and types that contain
// themselves without an intervening sequence or map are rejected.
func ParseSchema(data []byte) (*Schema, error) {
	var file schemaFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if len(file.Types) == 0 {
		return nil, fmt.Errorf("%w: no types declared", ErrSchema)
	}

	s := &Schema{types: make(map[string]*varcodec.Descriptor, len(file.Types))}
	for name := range file.Types {
		if _, clash := scalars[name]; clash || !validName(name) {
			return nil, fmt.Errorf("%w: %q is not a usable type name", ErrSchema, name)
		}
		s.types[name] = &varcodec.Descriptor{Name: name}
	}

	// Parents first, so field name checks can see the whole chain.
	for name, def := range file.Types {
		if def.Parent == "" {
			continue
		}
		parent, ok := s.types[def.Parent]
		if !ok {
			return nil, fmt.Errorf("%w: %s extends unknown type %q", ErrSchema, name, def.Parent)
		}
		s.types[name].Parent = parent
	}
	for name := range s.types {
		seen := map[*varcodec.Descriptor]bool{}
		for d := s.types[name]; d != nil; d = d.Parent {
			if seen[d] {
				return nil, fmt.Errorf("%w: inheritance cycle through %s", ErrSchema, name)
			}
			seen[d] = true
		}
	}

	for name, def := range file.Types {
		desc := s.types[name]
		for _, f := range def.Fields {
			if !validName(f.Name) {
				return nil, fmt.Errorf("%w: %s has a field with invalid name %q", ErrSchema, name, f.Name)
			}
			shape, err := s.parseType(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrSchema, name, f.Name, err)
			}
			desc.Fields = append(desc.Fields, varcodec.FieldInfo{Name: f.Name, Shape: shape})
		}
	}

	verified := map[*varcodec.Descriptor]bool{}
	for name, desc := range s.types {
		seen := map[string]string{}
		for _, d := range desc.Chain() {
			for _, f := range d.Fields {
				if owner, dup := seen[f.Name]; dup {
					return nil, fmt.Errorf("%w: %s: field %q declared by both %s and %s", ErrSchema, name, f.Name, owner, d.Name)
				}
				seen[f.Name] = d.Name
			}
		}
		if err := checkContainment(desc, nil, verified); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, "[] \t\n")
}

// parseType resolves a type expression: a scalar name, a type name,
// "[]T", or "map[K]V" with a scalar K.
func (s *Schema) parseType(expr string) (varcodec.Shape, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "":
		return varcodec.Shape{}, errors.New("missing type")

	case strings.HasPrefix(expr, "[]"):
		elem, err := s.parseType(expr[2:])
		if err != nil {
			return varcodec.Shape{}, err
		}
		return varcodec.Shape{Kind: varcodec.KindSequence, Elem: &elem}, nil

	case strings.HasPrefix(expr, "map["):
		end := matchBracket(expr, len("map"))
		if end < 0 {
			return varcodec.Shape{}, fmt.Errorf("unbalanced brackets in %q", expr)
		}
		key, err := s.parseType(expr[len("map["):end])
		if err != nil {
			return varcodec.Shape{}, err
		}
		if !key.Kind.Scalar() {
			return varcodec.Shape{}, fmt.Errorf("map key %s is not a scalar type", key)
		}
		value, err := s.parseType(expr[end+1:])
		if err != nil {
			return varcodec.Shape{}, err
		}
		return varcodec.Shape{Kind: varcodec.KindMap, Key: &key, Elem: &value}, nil
	}

	if shape, ok := scalars[expr]; ok {
		return shape, nil
	}
	if desc, ok := s.types[expr]; ok {
		return varcodec.Shape{Kind: varcodec.KindComposite, Type: desc.Name, Record: desc}, nil
	}
	return varcodec.Shape{}, fmt.Errorf("unknown type %q", expr)
}

// matchBracket returns the index of the ']' closing the '[' at open.
func matchBracket(expr string, open int) int {
	depth := 0
	for i := open; i < len(expr); i++ {
		switch expr[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// checkContainment rejects a composite that holds itself directly, through
// fields or parents, since neither encoding nor zero-filling it would end.
// Sequences and maps break the chain because they may be empty.
// Descriptors in verified are known to be acyclic and are not walked again.
func checkContainment(desc *varcodec.Descriptor, path []*varcodec.Descriptor, verified map[*varcodec.Descriptor]bool) error {
	if verified[desc] {
		return nil
	}
	if i := slices.Index(path, desc); i >= 0 {
		var names []string
		for _, d := range path[i:] {
			names = append(names, d.Name)
		}
		names = append(names, desc.Name)
		return fmt.Errorf("%w: %s contains itself (%s)", ErrSchema, desc.Name, strings.Join(names, " -> "))
	}
	path = append(path, desc)
	for _, d := range desc.Chain() {
		for _, f := range d.Fields {
			if f.Shape.Kind == varcodec.KindComposite {
				if err := checkContainment(f.Shape.Record, path, verified); err != nil {
					return err
				}
			}
		}
	}
	verified[desc] = true
	return nil
}

// Lookup returns the descriptor of the named type.
func (s *Schema) Lookup(name string) (*varcodec.Descriptor, bool) {
	desc, ok := s.types[name]
	return desc, ok
}

// Shape resolves a type expression against the schema, e.g. "Person" or
// "[]Person" or "map[string]int32".
func (s *Schema) Shape(expr string) (varcodec.Shape, error) {
	shape, err := s.parseType(expr)
	if err != nil {
		return varcodec.Shape{}, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return shape, nil
}

// Types returns the declared type names in sorted order.
func (s *Schema) Types() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParseShape resolves a type expression made only of scalar types,
// sequences and maps, such as "map[string][]int32".
func ParseShape(expr string) (varcodec.Shape, error) {
	return (&Schema{}).Shape(expr)
}

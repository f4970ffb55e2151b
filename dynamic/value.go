// Package dynamic encodes and decodes values whose layout is only known at
// run time, described by a varcodec.Shape. Composites come either from a
// typed varcodec.Record or from a Schema loaded from YAML.
//
// Decoded values use plain Go types so they can be handed to any generic
// serializer:
//
//	byte, unsigned integers, fixed32, fixed64  uint64
//	uenum                                      uint64
//	signed integers, enum, sfixed32, sfixed64  int64
//	bool                                       bool
//	float32, float64                           float32, float64
//	string                                     string
//	bytes                                      []byte
//	sequence                                   []any
//	map                                        map[string]any, keys formatted
//	composite                                  map[string]any, by field name
package dynamic

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/oy3o/varcodec"
)

// Decode reads one value of shape s from c. On failure it reports false and
// the cursor position is unspecified.
func Decode(c *varcodec.Cursor, s varcodec.Shape) (any, bool) {
	switch s.Kind {
	case varcodec.KindByte:
		x, ok := c.GetByte()
		return uint64(x), ok

	case varcodec.KindVarint32, varcodec.KindEnum:
		x, ok := c.GetVarint32()
		if !ok {
			return nil, false
		}
		return narrow32(s.Type, x), true

	case varcodec.KindVarint64:
		x, ok := c.GetVarint64()
		if !ok {
			return nil, false
		}
		if s.Type == "uint64" {
			return x, true
		}
		return int64(x), true

	case varcodec.KindFixed32:
		x, ok := c.GetFixed32()
		if !ok {
			return nil, false
		}
		switch s.Type {
		case "float32":
			return math.Float32frombits(x), true
		case "sfixed32":
			return int64(int32(x)), true
		}
		return uint64(x), true

	case varcodec.KindFixed64:
		x, ok := c.GetFixed64()
		if !ok {
			return nil, false
		}
		switch s.Type {
		case "float64":
			return math.Float64frombits(x), true
		case "sfixed64":
			return int64(x), true
		}
		return x, true

	case varcodec.KindString:
		x, ok := c.GetString()
		if !ok {
			return nil, false
		}
		if s.Type == "bytes" {
			return []byte(x), true
		}
		return x, true

	case varcodec.KindSequence:
		n, ok := c.GetVarint32()
		if !ok {
			return nil, false
		}
		out := make([]any, 0, min(uint64(n), uint64(c.Remaining())))
		for range n {
			elem, ok := Decode(c, *s.Elem)
			if !ok {
				return out, false
			}
			out = append(out, elem)
		}
		return out, true

	case varcodec.KindMap:
		n, ok := c.GetVarint32()
		if !ok {
			return nil, false
		}
		out := make(map[string]any)
		for range n {
			key, ok := Decode(c, *s.Key)
			if !ok {
				return out, false
			}
			value, ok := Decode(c, *s.Elem)
			if !ok {
				return out, false
			}
			out[formatKey(key)] = value
		}
		return out, true

	case varcodec.KindComposite:
		out := make(map[string]any)
		for _, d := range s.Record.Chain() {
			for _, f := range d.Fields {
				value, ok := Decode(c, f.Shape)
				if !ok {
					return out, false
				}
				out[f.Name] = value
			}
		}
		return out, true
	}
	return nil, false
}

// narrow32 applies the truncation a typed codec of the named type performs.
func narrow32(typ string, x uint32) any {
	switch typ {
	case "bool":
		return x != 0
	case "int8":
		return int64(int8(x))
	case "int16":
		return int64(int16(x))
	case "int32", "enum":
		return int64(int32(x))
	case "uint8":
		return uint64(uint8(x))
	case "uint16":
		return uint64(uint16(x))
	}
	return uint64(x)
}

func formatKey(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case []byte:
		return string(k)
	case int64:
		return strconv.FormatInt(k, 10)
	case uint64:
		return strconv.FormatUint(k, 10)
	case bool:
		return strconv.FormatBool(k)
	case float32:
		return strconv.FormatFloat(float64(k), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(k, 'g', -1, 64)
	}
	return fmt.Sprint(key)
}

// Encode appends v to b laid out as shape s. It accepts the values Decode
// produces and the values encoding/json produces, json.Number included.
// Bytes may be given as []byte or as a standard base64 string. Missing
// composite fields are written as their zero value; unknown ones are
// rejected. On error b may hold a partial encoding.
func Encode(b *varcodec.Buffer, s varcodec.Shape, v any) error {
	return encodeValue(b, s, v, shapeRoot(s))
}

func shapeRoot(s varcodec.Shape) string {
	if s.Kind == varcodec.KindComposite && s.Record != nil {
		return s.Record.Name
	}
	return "value"
}

func mismatch(path string, s varcodec.Shape, v any, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: %s: cannot encode %T as %s", ErrValue, path, v, s)
	}
	return fmt.Errorf("%w: %s: %s", ErrValue, path, reason)
}

func encodeValue(b *varcodec.Buffer, s varcodec.Shape, v any, path string) error {
	switch s.Kind {
	case varcodec.KindByte:
		x, err := toUint(v, 8)
		if err != nil {
			return mismatch(path, s, v, err.Error())
		}
		b.PutByte(byte(x))

	case varcodec.KindVarint32, varcodec.KindEnum:
		if s.Type == "bool" {
			x, ok := v.(bool)
			if !ok {
				return mismatch(path, s, v, "")
			}
			if x {
				b.PutVarint32(1)
			} else {
				b.PutVarint32(0)
			}
			return nil
		}
		x, err := toBits(v, s.Type, 32)
		if err != nil {
			return mismatch(path, s, v, err.Error())
		}
		b.PutVarint32(uint32(x))

	case varcodec.KindVarint64:
		x, err := toBits(v, s.Type, 64)
		if err != nil {
			return mismatch(path, s, v, err.Error())
		}
		b.PutVarint64(x)

	case varcodec.KindFixed32:
		if s.Type == "float32" {
			x, err := toFloat(v)
			if err != nil {
				return mismatch(path, s, v, err.Error())
			}
			b.PutFixed32(math.Float32bits(float32(x)))
			return nil
		}
		x, err := toBits(v, s.Type, 32)
		if err != nil {
			return mismatch(path, s, v, err.Error())
		}
		b.PutFixed32(uint32(x))

	case varcodec.KindFixed64:
		if s.Type == "float64" {
			x, err := toFloat(v)
			if err != nil {
				return mismatch(path, s, v, err.Error())
			}
			b.PutFixed64(math.Float64bits(x))
			return nil
		}
		x, err := toBits(v, s.Type, 64)
		if err != nil {
			return mismatch(path, s, v, err.Error())
		}
		b.PutFixed64(x)

	case varcodec.KindString:
		switch x := v.(type) {
		case string:
			if s.Type == "bytes" {
				raw, err := base64.StdEncoding.DecodeString(x)
				if err != nil {
					return mismatch(path, s, v, "bytes must be base64: "+err.Error())
				}
				x = string(raw)
			}
			b.PutString(x)
		case []byte:
			b.PutVarint32(uint32(len(x)))
			b.PutRaw(x)
		default:
			return mismatch(path, s, v, "")
		}

	case varcodec.KindSequence:
		items, ok := v.([]any)
		if !ok && v != nil {
			return mismatch(path, s, v, "")
		}
		b.PutVarint32(uint32(len(items)))
		for i, item := range items {
			if err := encodeValue(b, *s.Elem, item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}

	case varcodec.KindMap:
		m, ok := v.(map[string]any)
		if !ok && v != nil {
			return mismatch(path, s, v, "")
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b.PutVarint32(uint32(len(keys)))
		for _, k := range keys {
			at := fmt.Sprintf("%s[%q]", path, k)
			key, err := parseKey(*s.Key, k)
			if err != nil {
				return mismatch(at, *s.Key, k, err.Error())
			}
			if err := encodeValue(b, *s.Key, key, at); err != nil {
				return err
			}
			if err := encodeValue(b, *s.Elem, m[k], at); err != nil {
				return err
			}
		}

	case varcodec.KindComposite:
		m, ok := v.(map[string]any)
		if !ok && v != nil {
			return mismatch(path, s, v, "")
		}
		if name := unknownField(s.Record, m); name != "" {
			return mismatch(path, s, v, "unknown field "+strconv.Quote(name))
		}
		for _, d := range s.Record.Chain() {
			for _, f := range d.Fields {
				fv, present := m[f.Name]
				if !present {
					fv = zeroValue(f.Shape)
				}
				if err := encodeValue(b, f.Shape, fv, path+"."+f.Name); err != nil {
					return err
				}
			}
		}

	default:
		return mismatch(path, s, v, "unsupported kind "+s.Kind.String())
	}
	return nil
}

func unknownField(d *varcodec.Descriptor, m map[string]any) string {
	declared := map[string]bool{}
	for _, desc := range d.Chain() {
		for _, f := range desc.Fields {
			declared[f.Name] = true
		}
	}
	var names []string
	for name := range m {
		if !declared[name] {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// zeroValue is the value written for a composite field that is absent
// from the input.
func zeroValue(s varcodec.Shape) any {
	switch s.Kind {
	case varcodec.KindString:
		if s.Type == "bytes" {
			return []byte(nil)
		}
		return ""
	case varcodec.KindSequence, varcodec.KindMap, varcodec.KindComposite:
		return nil
	}
	if s.Type == "bool" {
		return false
	}
	return int64(0)
}

// parseKey turns a map key, which is always a string in JSON and in
// decoded output, back into a value of the key shape.
func parseKey(s varcodec.Shape, key string) (any, error) {
	switch {
	case s.Kind == varcodec.KindString:
		if s.Type == "bytes" {
			return []byte(key), nil
		}
		return key, nil
	case s.Type == "bool":
		return strconv.ParseBool(key)
	case s.Type == "float32" || s.Type == "float64":
		return strconv.ParseFloat(key, 64)
	case signed(s.Type):
		return strconv.ParseInt(key, 10, 64)
	}
	return strconv.ParseUint(key, 10, 64)
}

func signed(typ string) bool {
	switch typ {
	case "int8", "int16", "int32", "int64", "enum", "sfixed32", "sfixed64":
		return true
	}
	return false
}

// typeBits is the in-memory width of a scalar type name, used for range checks.
var typeBits = map[string]int{
	"int8": 8, "int16": 16, "int32": 32, "int64": 64,
	"uint8": 8, "uint16": 16, "uint32": 32, "uint64": 64,
	"enum": 32, "uenum": 32, "fixed32": 32, "sfixed32": 32, "fixed64": 64, "sfixed64": 64,
}

// toBits converts v to the two's-complement bit pattern of the named
// integer type, rejecting values outside its range.
func toBits(v any, typ string, wire int) (uint64, error) {
	bits, ok := typeBits[typ]
	if !ok {
		bits = wire
	}
	if signed(typ) {
		x, err := toInt(v, bits)
		return uint64(x), err
	}
	return toUint(v, bits)
}

func toInt(v any, bits int) (int64, error) {
	var x int64
	switch n := v.(type) {
	case int:
		x = int64(n)
	case int8:
		x = int64(n)
	case int16:
		x = int64(n)
	case int32:
		x = int64(n)
	case int64:
		x = n
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int%d", n, bits)
		}
		x = int64(n)
	case uint, uint8, uint16, uint32:
		u, _ := toUint(n, 64)
		x = int64(u)
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is not an int%d", n, bits)
		}
		x = int64(n)
	case json.Number:
		i, err := strconv.ParseInt(string(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not an int%d", n, bits)
		}
		x = i
	default:
		return 0, fmt.Errorf("cannot encode %T as int%d", v, bits)
	}
	if bits < 64 {
		lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
		if x < lo || x > hi {
			return 0, fmt.Errorf("%d overflows int%d", x, bits)
		}
	}
	return x, nil
}

func toUint(v any, bits int) (uint64, error) {
	var x uint64
	switch n := v.(type) {
	case uint:
		x = uint64(n)
	case uint8:
		x = uint64(n)
	case uint16:
		x = uint64(n)
	case uint32:
		x = uint64(n)
	case uint64:
		x = n
	case int, int8, int16, int32, int64:
		i, _ := toInt(n, 64)
		if i < 0 {
			return 0, fmt.Errorf("%d overflows uint%d", i, bits)
		}
		x = uint64(i)
	case float64:
		if n != math.Trunc(n) || n < 0 || n >= math.MaxUint64 {
			return 0, fmt.Errorf("%v is not a uint%d", n, bits)
		}
		x = uint64(n)
	case json.Number:
		u, err := strconv.ParseUint(string(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not a uint%d", n, bits)
		}
		x = u
	default:
		return 0, fmt.Errorf("cannot encode %T as uint%d", v, bits)
	}
	if bits < 64 && x >= uint64(1)<<bits {
		return 0, fmt.Errorf("%d overflows uint%d", x, bits)
	}
	return x, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case int, int8, int16, int32, int64:
		i, _ := toInt(n, 64)
		return float64(i), nil
	case uint, uint8, uint16, uint32, uint64:
		u, _ := toUint(n, 64)
		return float64(u), nil
	}
	return 0, fmt.Errorf("cannot encode %T as a float", v)
}

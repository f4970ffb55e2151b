package varcodec

import (
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// entry erases the type parameter of a registered Codec so codecs of
// different types can share one map.
type entry interface {
	shape() Shape
	encode(v any) ([]byte, error)
	decode(data []byte, v any) error
}

type typedEntry[T any] struct {
	codec Codec[T]
}

func (e typedEntry[T]) shape() Shape { return e.codec.Shape() }

func (e typedEntry[T]) encode(v any) ([]byte, error) {
	switch x := v.(type) {
	case T:
		return Marshal(e.codec, x), nil
	case *T:
		if x == nil {
			return nil, fmt.Errorf("%w: %T", ErrNilValue, v)
		}
		return Marshal(e.codec, *x), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnregisteredType, v)
}

func (e typedEntry[T]) decode(data []byte, v any) error {
	dst, ok := v.(*T)
	if !ok || dst == nil {
		return fmt.Errorf("%w: got %T", ErrNotPointer, v)
	}
	var x T
	if err := Unmarshal(e.codec, data, &x); err != nil {
		return err
	}
	*dst = x
	return nil
}

// Registry maps Go types to the Codec used for them. It is safe for
// concurrent use; registration is normally done once at startup.
type Registry struct {
	codecs *xsync.Map[reflect.Type, entry]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{codecs: xsync.NewMap[reflect.Type, entry]()}
}

// Default is the Registry used by package-level Register and NewEncoder(nil).
var Default = NewRegistry()

// Register makes c the codec for T in r, replacing any earlier registration.
func Register[T any](r *Registry, c Codec[T]) {
	r.codecs.Store(reflect.TypeFor[T](), typedEntry[T]{codec: c})
}

// Lookup returns the codec registered for T in r.
func Lookup[T any](r *Registry) (Codec[T], bool) {
	e, ok := r.codecs.Load(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return e.(typedEntry[T]).codec, true
}

// Shape returns the wire shape registered for the dynamic type t.
func (r *Registry) Shape(t reflect.Type) (Shape, bool) {
	e, ok := r.codecs.Load(t)
	if !ok {
		return Shape{}, false
	}
	return e.shape(), true
}

// Types returns the number of registered types.
func (r *Registry) Types() int { return r.codecs.Size() }

// find resolves v, or the value v points to, to a registry entry.
func (r *Registry) find(v any) (entry, bool) {
	t := reflect.TypeOf(v)
	if t == nil {
		return nil, false
	}
	if e, ok := r.codecs.Load(t); ok {
		return e, true
	}
	if t.Kind() == reflect.Pointer {
		return r.codecs.Load(t.Elem())
	}
	return nil, false
}

// Encoder encodes and decodes values of any registered type, choosing the
// codec from the value's dynamic type. Its method set matches the
// Encode/Decode pair that message transports commonly accept.
type Encoder struct {
	registry *Registry
}

// NewEncoder returns an Encoder backed by r, or by Default if r is nil.
func NewEncoder(r *Registry) *Encoder {
	if r == nil {
		r = Default
	}
	return &Encoder{registry: r}
}

// Encode serializes v, which may be a registered type T or a *T.
func (e *Encoder) Encode(v any) ([]byte, error) {
	ent, ok := e.registry.find(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnregisteredType, v)
	}
	return ent.encode(v)
}

// Decode deserializes data into v, which must be a non-nil *T for a registered T.
// v is only modified when the whole input decodes successfully.
func (e *Encoder) Decode(data []byte, v any) error {
	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Pointer {
		return fmt.Errorf("%w: got %T", ErrNotPointer, v)
	}
	ent, ok := e.registry.codecs.Load(t.Elem())
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnregisteredType, t.Elem())
	}
	return ent.decode(data, v)
}

package varcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type base struct {
	A string
}

type middle struct {
	base
	B int32
}

type leaf struct {
	middle
	C string
}

// countingCodec wraps a codec and counts how often Get is called.
type countingCodec[T any] struct {
	Codec[T]
	gets int
}

func (c *countingCodec[T]) Get(cur *Cursor, v *T) bool {
	c.gets++
	return c.Codec.Get(cur, v)
}

type RecordTestSuite struct {
	suite.Suite
	bases   *Record[base]
	middles *Record[middle]
	leaves  *Record[leaf]
	cField  *countingCodec[string]
}

func (s *RecordTestSuite) SetupTest() {
	s.bases = NewRecord[base]("base")
	Field(s.bases, "a", String(), func(v *base) *string { return &v.A })

	s.middles = NewRecord[middle]("middle")
	Extend(s.middles, s.bases, func(v *middle) *base { return &v.base })
	Field(s.middles, "b", Int[int32](), func(v *middle) *int32 { return &v.B })

	s.cField = &countingCodec[string]{Codec: String()}
	s.leaves = NewRecord[leaf]("leaf")
	Extend(s.leaves, s.middles, func(v *leaf) *middle { return &v.middle })
	Field(s.leaves, "c", Codec[string](s.cField), func(v *leaf) *string { return &v.C })
}

func (s *RecordTestSuite) sample() leaf {
	return leaf{middle: middle{base: base{A: "x"}, B: 300}, C: "yz"}
}

func (s *RecordTestSuite) TestInheritedFieldsComeFirst() {
	v := s.sample()
	data := Marshal[leaf](s.leaves, v)

	// a ++ b ++ c, with no framing in between.
	expected := []byte{
		0x01, 'x', // base.a
		0xac, 0x02, // middle.b
		0x02, 'y', 'z', // leaf.c
	}
	s.Assert().Equal(expected, data)
	s.Assert().Equal(len(expected), s.leaves.Size(v))

	var got leaf
	s.Require().NoError(Unmarshal[leaf](s.leaves, data, &got))
	s.Assert().Equal(v, got)
}

func (s *RecordTestSuite) TestParentAloneReadsPrefix() {
	data := Marshal[leaf](s.leaves, s.sample())

	var m middle
	err := Unmarshal[middle](s.middles, data, &m)
	s.Assert().ErrorIs(err, ErrTrailingData, "the parent codec reads only its own prefix")
	s.Assert().Equal(middle{base: base{A: "x"}, B: 300}, m)
}

func (s *RecordTestSuite) TestFailureStopsLaterFields() {
	// b is cut short, so c must never be attempted.
	data := []byte{0x01, 'x', 0xac}
	got := leaf{C: "untouched"}
	s.Assert().False(s.leaves.Get(NewCursor(data), &got))
	s.Assert().Zero(s.cField.gets)
	s.Assert().Equal("x", got.A, "fields before the failure stay decoded")
	s.Assert().Equal("untouched", got.C)
}

func (s *RecordTestSuite) TestParentFailurePropagates() {
	// The parent chain fails on its very first field.
	got := leaf{C: "untouched"}
	s.Assert().False(s.leaves.Get(NewCursor([]byte{0x05, 'x'}), &got))
	s.Assert().Zero(s.cField.gets, "own fields are not read after an inherited field fails")

	err := Unmarshal[leaf](s.leaves, []byte{0x05, 'x'}, &got)
	s.Assert().ErrorIs(err, ErrTruncatedData)
	s.Assert().Contains(err.Error(), "leaf")
}

func (s *RecordTestSuite) TestOwnFieldFailure() {
	data := []byte{0x01, 'x', 0x01, 0x03, 'y'}
	var got leaf
	s.Assert().False(s.leaves.Get(NewCursor(data), &got))
	s.Assert().Equal(1, s.cField.gets)
	s.Assert().Equal(int32(1), got.B)
	s.Assert().Empty(got.C)
}

func (s *RecordTestSuite) TestDescriptor() {
	d := s.leaves.Descriptor()
	s.Assert().Equal("leaf", d.Name)
	s.Require().NotNil(d.Parent)
	s.Assert().Equal("middle", d.Parent.Name)

	var chain []string
	for _, c := range d.Chain() {
		chain = append(chain, c.Name)
	}
	s.Assert().Equal([]string{"base", "middle", "leaf"}, chain)

	s.Assert().Equal([]string{"base.a string", "middle.b int32", "leaf.c string"}, d.Layout())
	s.Assert().Equal("leaf : middle { c string }", d.String())

	shape := s.leaves.Shape()
	s.Assert().Equal(KindComposite, shape.Kind)
	s.Assert().Same(d, shape.Record)
	s.Assert().Equal("leaf", shape.String())
}

func (s *RecordTestSuite) TestNestedRecordField() {
	type pair struct {
		First  base
		Second []base
	}
	pairs := NewRecord[pair]("pair")
	Field(pairs, "first", Codec[base](s.bases), func(p *pair) *base { return &p.First })
	Field(pairs, "second", Slice[base](s.bases), func(p *pair) *[]base { return &p.Second })

	v := pair{First: base{A: "1"}, Second: []base{{A: "2"}, {A: "3"}}}
	data := Marshal[pair](pairs, v)
	s.Assert().Equal([]byte{0x01, '1', 0x02, 0x01, '2', 0x01, '3'}, data)

	var got pair
	s.Require().NoError(Unmarshal[pair](pairs, data, &got))
	s.Assert().Equal(v, got)
}

func (s *RecordTestSuite) TestEmptyRecord() {
	type empty struct{}
	r := NewRecord[empty]("empty")
	s.Assert().Empty(Marshal[empty](r, empty{}))
	var got empty
	s.Assert().NoError(Unmarshal[empty](r, nil, &got))
}

func (s *RecordTestSuite) TestBuilderMisuse() {
	s.T().Run("SecondParent", func(t *testing.T) {
		assert.Panics(t, func() {
			Extend(s.middles, s.bases, func(v *middle) *base { return &v.base })
		})
	})

	s.T().Run("NilParent", func(t *testing.T) {
		r := NewRecord[middle]("m")
		assert.Panics(t, func() { Extend[middle, base](r, nil, func(v *middle) *base { return &v.base }) })
	})

	s.T().Run("Cycle", func(t *testing.T) {
		a := NewRecord[base]("a")
		b := NewRecord[base]("b")
		self := func(v *base) *base { return v }
		Extend(a, b, self)
		assert.Panics(t, func() { Extend(b, a, self) })
	})

	s.T().Run("DuplicateField", func(t *testing.T) {
		assert.Panics(t, func() {
			Field(s.bases, "a", String(), func(v *base) *string { return &v.A })
		})
	})

	s.T().Run("NilAccessor", func(t *testing.T) {
		r := NewRecord[base]("x")
		assert.Panics(t, func() { Field[base, string](r, "a", String(), nil) })
	})
}

func TestRecord(t *testing.T) {
	suite.Run(t, new(RecordTestSuite))
}

func TestRecordConcurrentUse(t *testing.T) {
	r := NewRecord[base]("base")
	Field(r, "a", String(), func(v *base) *string { return &v.A })

	done := make(chan struct{})
	for i := range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			v := base{A: string(rune('a' + i))}
			var got base
			if assert.NoError(t, Unmarshal[base](r, Marshal[base](r, v), &got)) {
				assert.Equal(t, v, got)
			}
		}()
	}
	for range 8 {
		<-done
	}
	require.Len(t, r.Descriptor().Fields, 1)
}

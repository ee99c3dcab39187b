package proto

import "strings"

// ColTuple is Tuple(T1,...,Tk): k inner columns concatenated in
// declaration order, each serialised in full across all rows, with no
// per-row framing.
type ColTuple struct {
	Elems      []Column
	FieldNames []string // parallel to Elems, empty entries for positional form
}

// NewColTuple wraps elems as a Tuple's fields, in declaration order.
func NewColTuple(elems []Column, fieldNames []string) *ColTuple {
	return &ColTuple{Elems: elems, FieldNames: fieldNames}
}

func (c *ColTuple) Type() ColumnType {
	var sb strings.Builder
	sb.WriteString("Tuple(")
	for i, e := range c.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i < len(c.FieldNames) && c.FieldNames[i] != "" {
			sb.WriteString(c.FieldNames[i])
			sb.WriteByte(' ')
		}
		sb.WriteString(string(e.Type()))
	}
	sb.WriteByte(')')
	return ColumnType(sb.String())
}

func (c *ColTuple) Rows() int {
	if len(c.Elems) == 0 {
		return 0
	}
	return c.Elems[0].Rows()
}

func (c *ColTuple) Reset() {
	for _, e := range c.Elems {
		e.Reset()
	}
}

func (c *ColTuple) Release() {
	for _, e := range c.Elems {
		if rel, ok := e.(Releaser); ok {
			rel.Release()
		}
	}
}

func (c *ColTuple) EncodeColumn(b *Buffer) {
	for _, e := range c.Elems {
		e.EncodeColumn(b)
	}
}

func (c *ColTuple) DecodeColumn(r *Reader, rows int) error {
	for _, e := range c.Elems {
		if err := e.DecodeColumn(r, rows); err != nil {
			return err
		}
	}
	return nil
}

func (c *ColTuple) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// skipTuple delegates to each field's skipper in order.
func skipTuple(elems []Skipper) Skipper {
	return func(r *Reader, rows int) error {
		for _, s := range elems {
			if err := s(r, rows); err != nil {
				return err
			}
		}
		return nil
	}
}

// ColNested is Nested(name1 T1, ...): wire-identical to
// Tuple(Array(T1), ..., Array(Tk)) in the current protocol shape, but
// reports itself as Nested(...) rather than Tuple(...).
type ColNested struct {
	ColTuple
}

// NewColNested wraps one Array(Ti) column per named field.
func NewColNested(arrays []Column, fieldNames []string) *ColNested {
	return &ColNested{ColTuple{Elems: arrays, FieldNames: fieldNames}}
}

func (c *ColNested) Type() ColumnType {
	var sb strings.Builder
	sb.WriteString("Nested(")
	for i, e := range c.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.FieldNames[i])
		sb.WriteByte(' ')
		arr, ok := e.(*ColArray)
		if ok {
			sb.WriteString(string(arr.Inner.Type()))
		} else {
			sb.WriteString(string(e.Type()))
		}
	}
	sb.WriteByte(')')
	return ColumnType(sb.String())
}

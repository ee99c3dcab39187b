package proto

import "github.com/go-faster/errors"

// Zeroer is implemented by the scalar and string column types (not by
// Array, Map, Tuple, Nullable, LowCardinality or the lazy string column) and lets
// ColNullable materialise a null row's placeholder payload without
// knowing the element's Go type at the call site, resolved as a single
// opaque operation rather than a type switch over every element kind.
type Zeroer interface {
	AppendZero()
}

// ColNullable wraps an inner column with a per-row null bitmap. Wire
// layout: rows bytes of bitmap (1=null, 0=present), then the inner
// column's full payload for all rows — including real (placeholder)
// bytes at null slots, which must be read and written in full.
type ColNullable struct {
	Inner Column
	Nulls []bool
}

// NewColNullable wraps inner, which must also implement Zeroer to
// support AppendNull.
func NewColNullable(inner Column) *ColNullable {
	return &ColNullable{Inner: inner}
}

func (c *ColNullable) Type() ColumnType {
	return ColumnTypeNullable.Sub(c.Inner.Type())
}

func (c *ColNullable) Rows() int { return len(c.Nulls) }

func (c *ColNullable) Reset() {
	c.Nulls = c.Nulls[:0]
	c.Inner.Reset()
}

// IsNull reports whether row i is null.
func (c *ColNullable) IsNull(i int) bool { return c.Nulls[i] }

// AppendNull appends a null row: a placeholder zero value in Inner and
// true in the bitmap.
func (c *ColNullable) AppendNull() {
	z, ok := c.Inner.(Zeroer)
	if !ok {
		panic("proto: inner column of Nullable does not implement Zeroer")
	}
	z.AppendZero()
	c.Nulls = append(c.Nulls, true)
}

// AppendPresent records a non-null row; the caller must have already
// appended the value to Inner.
func (c *ColNullable) AppendPresent() {
	c.Nulls = append(c.Nulls, false)
}

func (c *ColNullable) EncodeColumn(b *Buffer) {
	for _, n := range c.Nulls {
		b.PutBool(n)
	}
	c.Inner.EncodeColumn(b)
}

func (c *ColNullable) DecodeColumn(r *Reader, rows int) error {
	if rows == 0 {
		return nil
	}
	if cap(c.Nulls) < rows {
		c.Nulls = make([]bool, 0, rows)
	}
	for i := 0; i < rows; i++ {
		v, err := r.Bool()
		if err != nil {
			return errors.Wrapf(err, "Nullable bitmap[%d]", i)
		}
		c.Nulls = append(c.Nulls, v)
	}
	if err := c.Inner.DecodeColumn(r, rows); err != nil {
		return errors.Wrap(err, "Nullable payload")
	}
	return nil
}

func (c *ColNullable) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// Release forwards to Inner if it holds pooled storage.
func (c *ColNullable) Release() {
	if rel, ok := c.Inner.(Releaser); ok {
		rel.Release()
	}
}

// skipNullable advances past the null bitmap then delegates to the
// inner skipper for the full payload.
func skipNullable(inner Skipper) Skipper {
	return func(r *Reader, rows int) error {
		if err := r.Discard(rows); err != nil {
			return errors.Wrap(err, "Nullable bitmap")
		}
		return inner(r, rows)
	}
}

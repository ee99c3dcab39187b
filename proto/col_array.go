package proto

import "github.com/go-faster/errors"

// ColArray is Array(T): per-row offsets into one flat inner element
// buffer. Offsets are cumulative end positions, non-decreasing; the
// final offset is the total element count.
type ColArray struct {
	Inner   Column
	Offsets []uint64
}

// NewColArray wraps inner as the flat element buffer of an Array column.
func NewColArray(inner Column) *ColArray {
	return &ColArray{Inner: inner}
}

func (c *ColArray) Type() ColumnType {
	return ColumnTypeArray.Sub(c.Inner.Type())
}

func (c *ColArray) Rows() int { return len(c.Offsets) }

func (c *ColArray) Reset() {
	c.Offsets = c.Offsets[:0]
	c.Inner.Reset()
}

// Release forwards to Inner if it holds pooled storage.
func (c *ColArray) Release() {
	if rel, ok := c.Inner.(Releaser); ok {
		rel.Release()
	}
}

// RowRange returns the [start, end) element indices of row i.
func (c *ColArray) RowRange(i int) (start, end int) {
	if i == 0 {
		return 0, int(c.Offsets[0])
	}
	return int(c.Offsets[i-1]), int(c.Offsets[i])
}

// AppendOffset records that n more elements were just appended to Inner,
// closing out the next row.
func (c *ColArray) AppendOffset(n int) {
	prev := uint64(0)
	if len(c.Offsets) > 0 {
		prev = c.Offsets[len(c.Offsets)-1]
	}
	c.Offsets = append(c.Offsets, prev+uint64(n))
}

func (c *ColArray) EncodeColumn(b *Buffer) {
	for _, off := range c.Offsets {
		b.PutUInt64(off)
	}
	c.Inner.EncodeColumn(b)
}

func (c *ColArray) DecodeColumn(r *Reader, rows int) error {
	if rows == 0 {
		return nil
	}
	if cap(c.Offsets) < rows {
		c.Offsets = make([]uint64, 0, rows)
	}
	var last uint64
	for i := 0; i < rows; i++ {
		off, err := r.UInt64()
		if err != nil {
			return errors.Wrapf(err, "Array offsets[%d]", i)
		}
		if off < last {
			return errors.Wrapf(ErrMalformedWire, "Array offsets[%d] decreasing (%d < %d)", i, off, last)
		}
		last = off
		c.Offsets = append(c.Offsets, off)
	}
	total := int(last)
	if err := c.Inner.DecodeColumn(r, total); err != nil {
		return errors.Wrap(err, "Array elements")
	}
	return nil
}

func (c *ColArray) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// skipArray advances past the offsets (reading only the last one, to
// learn the element count) then delegates to the inner skipper.
func skipArray(inner Skipper) Skipper {
	return func(r *Reader, rows int) error {
		if rows == 0 {
			return nil
		}
		if err := r.Discard((rows - 1) * 8); err != nil {
			return errors.Wrap(err, "Array offsets")
		}
		last, err := r.UInt64()
		if err != nil {
			return errors.Wrap(err, "Array offsets last")
		}
		return inner(r, int(last))
	}
}

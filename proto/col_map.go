package proto

import "github.com/go-faster/errors"

// ColMap is Map(K,V): wire-identical to Array(Tuple(K,V)) — one offsets
// array plus two flat inner columns (keys, values) rather than a single
// combined Tuple buffer, since nothing else needs to treat the pair as
// a Tuple.
type ColMap struct {
	Keys    Column
	Values  Column
	Offsets []uint64
}

// NewColMap wraps keys/values as the flat key and value buffers of a Map
// column.
func NewColMap(keys, values Column) *ColMap {
	return &ColMap{Keys: keys, Values: values}
}

func (c *ColMap) Type() ColumnType {
	return ColumnTypeMap.With(string(c.Keys.Type()), string(c.Values.Type()))
}

func (c *ColMap) Rows() int { return len(c.Offsets) }

func (c *ColMap) Reset() {
	c.Offsets = c.Offsets[:0]
	c.Keys.Reset()
	c.Values.Reset()
}

func (c *ColMap) Release() {
	if rel, ok := c.Keys.(Releaser); ok {
		rel.Release()
	}
	if rel, ok := c.Values.(Releaser); ok {
		rel.Release()
	}
}

// RowRange returns the [start, end) element indices of row i's entries.
func (c *ColMap) RowRange(i int) (start, end int) {
	if i == 0 {
		return 0, int(c.Offsets[0])
	}
	return int(c.Offsets[i-1]), int(c.Offsets[i])
}

// AppendOffset records that n more key/value pairs were just appended,
// closing out the next row.
func (c *ColMap) AppendOffset(n int) {
	prev := uint64(0)
	if len(c.Offsets) > 0 {
		prev = c.Offsets[len(c.Offsets)-1]
	}
	c.Offsets = append(c.Offsets, prev+uint64(n))
}

func (c *ColMap) EncodeColumn(b *Buffer) {
	for _, off := range c.Offsets {
		b.PutUInt64(off)
	}
	c.Keys.EncodeColumn(b)
	c.Values.EncodeColumn(b)
}

func (c *ColMap) DecodeColumn(r *Reader, rows int) error {
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
			return errors.Wrapf(err, "Map offsets[%d]", i)
		}
		if off < last {
			return errors.Wrapf(ErrMalformedWire, "Map offsets[%d] decreasing", i)
		}
		last = off
		c.Offsets = append(c.Offsets, off)
	}
	total := int(last)
	if err := c.Keys.DecodeColumn(r, total); err != nil {
		return errors.Wrap(err, "Map keys")
	}
	if err := c.Values.DecodeColumn(r, total); err != nil {
		return errors.Wrap(err, "Map values")
	}
	return nil
}

func (c *ColMap) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// skipMap advances past the offsets (reading only the last), then
// delegates to the key/value skippers for the total entry count.
func skipMap(keys, values Skipper) Skipper {
	return func(r *Reader, rows int) error {
		if rows == 0 {
			return nil
		}
		if err := r.Discard((rows - 1) * 8); err != nil {
			return errors.Wrap(err, "Map offsets")
		}
		last, err := r.UInt64()
		if err != nil {
			return errors.Wrap(err, "Map offsets last")
		}
		if err := keys(r, int(last)); err != nil {
			return errors.Wrap(err, "Map keys")
		}
		return values(r, int(last))
	}
}

package proto

import "github.com/go-faster/errors"

// ColStr is the eager String column: every row's length-prefixed UTF-8
// run is decoded into a heap string up front.
type ColStr struct {
	Data []string
}

func NewColStr() *ColStr { return &ColStr{} }

func (c *ColStr) Type() ColumnType { return ColumnTypeString }
func (c *ColStr) Rows() int        { return len(c.Data) }
func (c *ColStr) Reset()           { c.Data = c.Data[:0] }
func (c *ColStr) Row(i int) string { return c.Data[i] }
func (c *ColStr) Append(v string)  { c.Data = append(c.Data, v) }

func (c *ColStr) EncodeColumn(b *Buffer) {
	for _, s := range c.Data {
		b.PutString(s)
	}
}

func (c *ColStr) DecodeColumn(r *Reader, rows int) error {
	if rows == 0 {
		return nil
	}
	if cap(c.Data) < rows {
		c.Data = make([]string, 0, rows)
	}
	for i := 0; i < rows; i++ {
		s, err := r.Str()
		if err != nil {
			return errors.Wrapf(err, "String[%d]", i)
		}
		c.Data = append(c.Data, s)
	}
	return nil
}

func (c *ColStr) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// AppendZero appends the empty string, the placeholder value a null
// slot's payload still carries on the wire.
func (c *ColStr) AppendZero() { c.Data = append(c.Data, "") }

// skipString advances past rows length-prefixed UTF-8 runs without
// decoding them.
func skipString(r *Reader, rows int) error {
	for i := 0; i < rows; i++ {
		n, err := r.Len()
		if err != nil {
			return errors.Wrapf(err, "String[%d] length", i)
		}
		if err := r.Discard(n); err != nil {
			return errors.Wrapf(err, "String[%d] body", i)
		}
	}
	return nil
}

// ColStrLazy is the lazy String column: all row runs are copied into one
// contiguous pooled byte buffer, with per-row offset/length arrays.
// Strings are materialised only when a caller reads a given row. The
// column owns three pooled arrays (bytes, offsets, lengths) released
// together by Release.
type ColStrLazy struct {
	bytes   *PooledBytes
	offsets *[]int
	lengths *[]int
	n       int
}

func NewColStrLazy() *ColStrLazy { return &ColStrLazy{} }

func (c *ColStrLazy) Type() ColumnType { return ColumnTypeString }
func (c *ColStrLazy) Rows() int        { return c.n }

func (c *ColStrLazy) Reset() {
	c.Release()
	c.n = 0
}

// Release returns the three pooled arrays to their shared pools. Safe to
// call more than once.
func (c *ColStrLazy) Release() {
	if c.bytes != nil {
		c.bytes.Release()
		c.bytes = nil
	}
	if c.offsets != nil {
		putInts(c.offsets)
		c.offsets = nil
	}
	if c.lengths != nil {
		putInts(c.lengths)
		c.lengths = nil
	}
}

// Row decodes and returns row i, copying out of the pooled buffer.
func (c *ColStrLazy) Row(i int) string {
	off := (*c.offsets)[i]
	ln := (*c.lengths)[i]
	return string(c.bytes.Bytes()[off : off+ln])
}

// RowBytes returns row i as a byte slice aliasing the pooled buffer; the
// view is valid only until the column is reset or released.
func (c *ColStrLazy) RowBytes(i int) []byte {
	off := (*c.offsets)[i]
	ln := (*c.lengths)[i]
	return c.bytes.Bytes()[off : off+ln]
}

func (c *ColStrLazy) EncodeColumn(b *Buffer) {
	for i := 0; i < c.n; i++ {
		b.PutLen((*c.lengths)[i])
		b.PutRaw(c.RowBytes(i))
	}
}

func (c *ColStrLazy) DecodeColumn(r *Reader, rows int) error {
	c.Reset()
	if rows == 0 {
		return nil
	}
	offsets := getInts(rows)
	lengths := getInts(rows)

	// First pass: read lengths and row bytes into a scratch slice of
	// slices isn't allowed without allocation, so copy each run directly
	// into the shared pooled buffer as it's read.
	buf := getBytes(0)
	pos := 0
	for i := 0; i < rows; i++ {
		n, err := r.Len()
		if err != nil {
			putInts(offsets)
			putInts(lengths)
			putBytes(buf)
			return errors.Wrapf(err, "String[%d] length", i)
		}
		*buf = append(*buf, make([]byte, n)...)
		if err := r.ReadFull((*buf)[pos : pos+n]); err != nil {
			putInts(offsets)
			putInts(lengths)
			putBytes(buf)
			return errors.Wrapf(err, "String[%d] body", i)
		}
		*offsets = append(*offsets, pos)
		*lengths = append(*lengths, n)
		pos += n
	}

	c.bytes = &PooledBytes{buf: buf}
	c.offsets = offsets
	c.lengths = lengths
	c.n = rows
	return nil
}

func (c *ColStrLazy) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

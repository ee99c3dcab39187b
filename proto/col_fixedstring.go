package proto

import "github.com/go-faster/errors"

// ColFixedString is FixedString(N): exactly N bytes per row, zero-padded
// on write. N is carried as a field so one type serves every width;
// rows are packed into one flat buffer for the same reason ColRawBytes
// is.
type ColFixedString struct {
	Data []byte
	N    int
}

// NewColFixedString constructs an empty FixedString(n) column.
func NewColFixedString(n int) *ColFixedString {
	return &ColFixedString{N: n}
}

func (c *ColFixedString) Type() ColumnType {
	return ColumnTypeFixedString.With(itoa(c.N))
}

func (c *ColFixedString) Rows() int {
	if c.N == 0 {
		return 0
	}
	return len(c.Data) / c.N
}

func (c *ColFixedString) Reset() { c.Data = c.Data[:0] }

// Row returns row i's raw N bytes, aliasing the backing array.
func (c *ColFixedString) Row(i int) []byte {
	return c.Data[i*c.N : (i+1)*c.N]
}

// Append appends one row, zero-padding or truncating v to exactly N
// bytes.
func (c *ColFixedString) Append(v []byte) {
	start := len(c.Data)
	c.Data = append(c.Data, make([]byte, c.N)...)
	copy(c.Data[start:], v)
}

func (c *ColFixedString) EncodeColumn(b *Buffer) {
	b.PutRaw(c.Data)
}

func (c *ColFixedString) DecodeColumn(r *Reader, rows int) error {
	if rows == 0 {
		return nil
	}
	n := rows * c.N
	if cap(c.Data) < n {
		c.Data = make([]byte, 0, n)
	}
	c.Data = c.Data[:n]
	if err := r.ReadFull(c.Data); err != nil {
		return errors.Wrapf(err, "FixedString(%d)", c.N)
	}
	return nil
}

func (c *ColFixedString) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// AppendZero appends a zero-filled row, the placeholder for a null slot.
func (c *ColFixedString) AppendZero() {
	c.Data = append(c.Data, make([]byte, c.N)...)
}

// skipFixedString advances past rows*n bytes without decoding.
func skipFixedString(n int) Skipper {
	return func(r *Reader, rows int) error {
		return r.Discard(rows * n)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

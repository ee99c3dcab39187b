package proto

import "github.com/go-faster/errors"

// ColRawBytes is the shared engine behind every fixed-width column whose
// element is wider than 8 bytes and therefore isn't covered by ColNum:
// Int128/256, UInt128/256, UUID, IPv6. Rows are packed into one flat
// buffer (len == rows*width) instead of a slice-of-arrays, keeping the
// decode path to a single bulk read per block rather than one read call
// per row.
type ColRawBytes struct {
	Data  []byte
	width int
	typ   ColumnType
}

func newColRawBytes(typ ColumnType, width int) *ColRawBytes {
	return &ColRawBytes{typ: typ, width: width}
}

func (c *ColRawBytes) Type() ColumnType { return c.typ }
func (c *ColRawBytes) Rows() int        { return len(c.Data) / c.width }
func (c *ColRawBytes) Reset()           { c.Data = c.Data[:0] }

// RowBytes returns a view over row i's raw wire bytes. The slice aliases
// the column's backing array and is valid only until the column is
// reused or released.
func (c *ColRawBytes) RowBytes(i int) []byte {
	return c.Data[i*c.width : (i+1)*c.width]
}

// AppendBytes appends one row of raw wire bytes; len(v) must equal width.
func (c *ColRawBytes) AppendBytes(v []byte) {
	c.Data = append(c.Data, v...)
}

func (c *ColRawBytes) EncodeColumn(b *Buffer) {
	b.PutRaw(c.Data)
}

func (c *ColRawBytes) DecodeColumn(r *Reader, rows int) error {
	if rows == 0 {
		return nil
	}
	n := rows * c.width
	if cap(c.Data) < n {
		c.Data = make([]byte, 0, n)
	}
	c.Data = c.Data[:n]
	if err := r.ReadFull(c.Data); err != nil {
		return errors.Wrapf(err, "%s", c.typ)
	}
	return nil
}

func (c *ColRawBytes) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// AppendZero appends a zero-filled row, the placeholder for a null slot.
func (c *ColRawBytes) AppendZero() {
	c.Data = append(c.Data, make([]byte, c.width)...)
}

// ColInt128 holds Int128 values as their raw 16-byte little-endian
// two's-complement wire form: a fixed byte array instead of a
// big-integer type, keeping the decode path allocation-free.
type ColInt128 struct{ ColRawBytes }

func NewColInt128() *ColInt128 { return &ColInt128{*newColRawBytes(ColumnTypeInt128, 16)} }

// ColUInt128 holds UInt128 values as raw 16-byte little-endian bytes.
type ColUInt128 struct{ ColRawBytes }

func NewColUInt128() *ColUInt128 { return &ColUInt128{*newColRawBytes(ColumnTypeUInt128, 16)} }

// ColInt256 holds Int256 values as raw 32-byte little-endian bytes.
type ColInt256 struct{ ColRawBytes }

func NewColInt256() *ColInt256 { return &ColInt256{*newColRawBytes(ColumnTypeInt256, 32)} }

// ColUInt256 holds UInt256 values as raw 32-byte little-endian bytes.
type ColUInt256 struct{ ColRawBytes }

func NewColUInt256() *ColUInt256 { return &ColUInt256{*newColRawBytes(ColumnTypeUInt256, 32)} }

// ColIPv6 holds IPv6 addresses as their raw 16-byte as-stored wire form.
type ColIPv6 struct{ ColRawBytes }

func NewColIPv6() *ColIPv6 { return &ColIPv6{*newColRawBytes(ColumnTypeIPv6, 16)} }

// ColUUID holds UUIDs in their native 16-byte wire form: each 8-byte
// half is byte-reversed relative to RFC-4122 order. Use RowUUID/AppendUUID
// for the RFC-4122 [16]byte view (convertible to and from uuid.UUID).
type ColUUID struct{ ColRawBytes }

func NewColUUID() *ColUUID { return &ColUUID{*newColRawBytes(ColumnTypeUUID, 16)} }

func reverse8(b []byte) {
	b[0], b[7] = b[7], b[0]
	b[1], b[6] = b[6], b[1]
	b[2], b[5] = b[5], b[2]
	b[3], b[4] = b[4], b[3]
}

// UUIDWireToStd converts ClickHouse's on-wire UUID byte layout (each
// half little-endian relative to RFC-4122) to standard RFC-4122 byte
// order.
func UUIDWireToStd(wire [16]byte) [16]byte {
	var out [16]byte
	copy(out[:], wire[:])
	reverse8(out[0:8])
	reverse8(out[8:16])
	return out
}

// UUIDStdToWire is the inverse of UUIDWireToStd.
func UUIDStdToWire(std [16]byte) [16]byte {
	return UUIDWireToStd(std) // the transform is its own inverse
}

// RowUUID returns row i converted to standard RFC-4122 byte order.
func (c *ColUUID) RowUUID(i int) [16]byte {
	var wire [16]byte
	copy(wire[:], c.RowBytes(i))
	return UUIDWireToStd(wire)
}

// AppendUUID appends one UUID given in standard RFC-4122 byte order.
func (c *ColUUID) AppendUUID(std [16]byte) {
	wire := UUIDStdToWire(std)
	c.AppendBytes(wire[:])
}

package proto

import "github.com/go-faster/errors"

// numCodec knows how to put/get a single fixed-width scalar of type T on
// the wire. Concrete instances are package-level values with no state,
// letting ColNum[T] stay allocation-free on the append/read hot path.
type numCodec[T any] interface {
	size() int
	put(b *Buffer, v T)
	get(r *Reader) (T, error)
}

type int8Codec struct{}

func (int8Codec) size() int             { return 1 }
func (int8Codec) put(b *Buffer, v int8) { b.PutInt8(v) }
func (int8Codec) get(r *Reader) (int8, error) { return r.Int8() }

type uint8Codec struct{}

func (uint8Codec) size() int              { return 1 }
func (uint8Codec) put(b *Buffer, v uint8) { b.PutUInt8(v) }
func (uint8Codec) get(r *Reader) (uint8, error) { return r.UInt8() }

type int16Codec struct{}

func (int16Codec) size() int              { return 2 }
func (int16Codec) put(b *Buffer, v int16) { b.PutInt16(v) }
func (int16Codec) get(r *Reader) (int16, error) { return r.Int16() }

type uint16Codec struct{}

func (uint16Codec) size() int               { return 2 }
func (uint16Codec) put(b *Buffer, v uint16) { b.PutUInt16(v) }
func (uint16Codec) get(r *Reader) (uint16, error) { return r.UInt16() }

type int32Codec struct{}

func (int32Codec) size() int              { return 4 }
func (int32Codec) put(b *Buffer, v int32) { b.PutInt32(v) }
func (int32Codec) get(r *Reader) (int32, error) { return r.Int32() }

type uint32Codec struct{}

func (uint32Codec) size() int               { return 4 }
func (uint32Codec) put(b *Buffer, v uint32) { b.PutUInt32(v) }
func (uint32Codec) get(r *Reader) (uint32, error) { return r.UInt32() }

type int64Codec struct{}

func (int64Codec) size() int              { return 8 }
func (int64Codec) put(b *Buffer, v int64) { b.PutInt64(v) }
func (int64Codec) get(r *Reader) (int64, error) { return r.Int64() }

type uint64Codec struct{}

func (uint64Codec) size() int               { return 8 }
func (uint64Codec) put(b *Buffer, v uint64) { b.PutUInt64(v) }
func (uint64Codec) get(r *Reader) (uint64, error) { return r.UInt64() }

type float32Codec struct{}

func (float32Codec) size() int                { return 4 }
func (float32Codec) put(b *Buffer, v float32) { b.PutFloat32(v) }
func (float32Codec) get(r *Reader) (float32, error) { return r.Float32() }

type float64Codec struct{}

func (float64Codec) size() int                { return 8 }
func (float64Codec) put(b *Buffer, v float64) { b.PutFloat64(v) }
func (float64Codec) get(r *Reader) (float64, error) { return r.Float64() }

type boolCodec struct{}

func (boolCodec) size() int             { return 1 }
func (boolCodec) put(b *Buffer, v bool) { b.PutBool(v) }
func (boolCodec) get(r *Reader) (bool, error) { return r.Bool() }

// ColNum is a generic fixed-width scalar column: Int8/16/32/64,
// UInt8/16/32/64, Float32/64, Bool, Date (uint16), DateTime (uint32),
// DateTime64 (int64 ticks), and Decimal32/64 (int32/int64 mantissa) all
// share this shape — only the codec and the reported ColumnType differ.
// Skippers for every instantiation advance exactly rows*sizeof(T) bytes
// without touching Data.
type ColNum[T any] struct {
	Data []T
	typ  ColumnType
	cdc  numCodec[T]
}

func newColNum[T any](typ ColumnType, cdc numCodec[T]) *ColNum[T] {
	return &ColNum[T]{typ: typ, cdc: cdc}
}

// NewColInt8 constructs an empty Int8 column.
func NewColInt8() *ColNum[int8] { return newColNum[int8](ColumnTypeInt8, int8Codec{}) }

// NewColUInt8 constructs an empty UInt8 column.
func NewColUInt8() *ColNum[uint8] { return newColNum[uint8](ColumnTypeUInt8, uint8Codec{}) }

// NewColInt16 constructs an empty Int16 column.
func NewColInt16() *ColNum[int16] { return newColNum[int16](ColumnTypeInt16, int16Codec{}) }

// NewColUInt16 constructs an empty UInt16 column.
func NewColUInt16() *ColNum[uint16] { return newColNum[uint16](ColumnTypeUInt16, uint16Codec{}) }

// NewColInt32 constructs an empty Int32 column.
func NewColInt32() *ColNum[int32] { return newColNum[int32](ColumnTypeInt32, int32Codec{}) }

// NewColUInt32 constructs an empty UInt32 column.
func NewColUInt32() *ColNum[uint32] { return newColNum[uint32](ColumnTypeUInt32, uint32Codec{}) }

// NewColInt64 constructs an empty Int64 column.
func NewColInt64() *ColNum[int64] { return newColNum[int64](ColumnTypeInt64, int64Codec{}) }

// NewColUInt64 constructs an empty UInt64 column.
func NewColUInt64() *ColNum[uint64] { return newColNum[uint64](ColumnTypeUInt64, uint64Codec{}) }

// NewColFloat32 constructs an empty Float32 column.
func NewColFloat32() *ColNum[float32] { return newColNum[float32](ColumnTypeFloat32, float32Codec{}) }

// NewColFloat64 constructs an empty Float64 column.
func NewColFloat64() *ColNum[float64] { return newColNum[float64](ColumnTypeFloat64, float64Codec{}) }

// NewColBool constructs an empty Bool column (1 byte per row, 0/1).
func NewColBool() *ColNum[bool] { return newColNum[bool](ColumnTypeBool, boolCodec{}) }

// NewColDate constructs an empty Date column: u16 days-since-epoch.
func NewColDate() *ColNum[uint16] { return newColNum[uint16](ColumnTypeDate, uint16Codec{}) }

// NewColDate32 constructs an empty Date32 column: i32 days-since-epoch,
// extending pre-epoch.
func NewColDate32() *ColNum[int32] { return newColNum[int32](ColumnTypeDate32, int32Codec{}) }

// NewColDateTime constructs an empty DateTime column: u32
// seconds-since-epoch.
func NewColDateTime() *ColNum[uint32] { return newColNum[uint32](ColumnTypeDateTime, uint32Codec{}) }

// NewColDateTime64 constructs an empty DateTime64(p[,tz]) column: i64
// ticks, one tick = 10^-p seconds. desc carries the precision/zone.
func NewColDateTime64(desc *TypeDescriptor) *ColNum[int64] {
	return newColNum[int64](ColumnType(desc.String()), int64Codec{})
}

// NewColEnum8 constructs an Enum8 column; the enum mapping lives on the
// descriptor, the wire payload is plain Int8.
func NewColEnum8(desc *TypeDescriptor) *ColNum[int8] {
	return newColNum[int8](ColumnType(desc.String()), int8Codec{})
}

// NewColEnum16 constructs an Enum16 column; wire payload is plain Int16.
func NewColEnum16(desc *TypeDescriptor) *ColNum[int16] {
	return newColNum[int16](ColumnType(desc.String()), int16Codec{})
}

// NewColDecimal32 constructs a Decimal32(s)-shaped column (i32 mantissa).
func NewColDecimal32(desc *TypeDescriptor) *ColNum[int32] {
	return newColNum[int32](ColumnType(desc.String()), int32Codec{})
}

// NewColDecimal64 constructs a Decimal64(s)-shaped column (i64 mantissa).
func NewColDecimal64(desc *TypeDescriptor) *ColNum[int64] {
	return newColNum[int64](ColumnType(desc.String()), int64Codec{})
}

func (c *ColNum[T]) Type() ColumnType { return c.typ }
func (c *ColNum[T]) Rows() int        { return len(c.Data) }
func (c *ColNum[T]) Reset()           { c.Data = c.Data[:0] }
func (c *ColNum[T]) Row(i int) T      { return c.Data[i] }
func (c *ColNum[T]) Append(v T)       { c.Data = append(c.Data, v) }

func (c *ColNum[T]) EncodeColumn(b *Buffer) {
	for _, v := range c.Data {
		c.cdc.put(b, v)
	}
}

func (c *ColNum[T]) DecodeColumn(r *Reader, rows int) error {
	if rows == 0 {
		return nil
	}
	if cap(c.Data) < rows {
		c.Data = make([]T, 0, rows)
	}
	for i := 0; i < rows; i++ {
		v, err := c.cdc.get(r)
		if err != nil {
			return errors.Wrapf(err, "%s[%d]", c.typ, i)
		}
		c.Data = append(c.Data, v)
	}
	return nil
}

func (c *ColNum[T]) WriteColumn(w *Writer) error { return WriteColumn(w, c) }

// AppendZero appends the type's zero value, used by ColNullable to
// materialise a placeholder for a null row without knowing T at the
// call site (see the Zeroer interface in col_nullable.go).
func (c *ColNum[T]) AppendZero() {
	var zero T
	c.Data = append(c.Data, zero)
}

// skipFixedWidth advances the reader by rows*width bytes without
// allocating or decoding, satisfying every fixed-width scalar's skipper.
func skipFixedWidth(width int) Skipper {
	return func(r *Reader, rows int) error {
		return r.Discard(rows * width)
	}
}

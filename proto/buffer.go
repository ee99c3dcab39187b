package proto

import "math"

// Buffer is a growable byte buffer used to encode wire messages before
// they are handed to a Writer. It is reused across calls via ChainBuffer
// to keep allocations off the hot path.
type Buffer struct {
	Buf []byte
}

// Reset truncates the buffer for reuse without releasing the backing array.
func (b *Buffer) Reset() {
	b.Buf = b.Buf[:0]
}

// PutByte appends a single byte.
func (b *Buffer) PutByte(v byte) {
	b.Buf = append(b.Buf, v)
}

// PutBool appends a boolean as a single 0/1 byte.
func (b *Buffer) PutBool(v bool) {
	if v {
		b.PutByte(1)
	} else {
		b.PutByte(0)
	}
}

// PutUInt8 appends an unsigned byte.
func (b *Buffer) PutUInt8(v uint8) { b.PutByte(v) }

// PutInt8 appends a signed byte.
func (b *Buffer) PutInt8(v int8) { b.PutByte(byte(v)) }

// PutUInt16 appends a little-endian uint16.
func (b *Buffer) PutUInt16(v uint16) {
	b.Buf = append(b.Buf, byte(v), byte(v>>8))
}

// PutInt16 appends a little-endian int16.
func (b *Buffer) PutInt16(v int16) { b.PutUInt16(uint16(v)) }

// PutUInt32 appends a little-endian uint32.
func (b *Buffer) PutUInt32(v uint32) {
	b.Buf = append(b.Buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// PutInt32 appends a little-endian int32.
func (b *Buffer) PutInt32(v int32) { b.PutUInt32(uint32(v)) }

// PutUInt64 appends a little-endian uint64.
func (b *Buffer) PutUInt64(v uint64) {
	b.Buf = append(b.Buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56),
	)
}

// PutInt64 appends a little-endian int64.
func (b *Buffer) PutInt64(v int64) { b.PutUInt64(uint64(v)) }

// PutUInt128 appends a little-endian 128-bit unsigned integer from two
// 64-bit halves, low half first.
func (b *Buffer) PutUInt128(lo, hi uint64) {
	b.PutUInt64(lo)
	b.PutUInt64(hi)
}

// PutRaw128 appends a raw 16-byte value verbatim (used by IPv6/UUID,
// which have their own byte-order rules instead of plain LE u128).
func (b *Buffer) PutRaw128(v [16]byte) {
	b.Buf = append(b.Buf, v[:]...)
}

// PutRaw appends n raw bytes (used by Int128/256 wire forms and
// FixedString).
func (b *Buffer) PutRaw(v []byte) {
	b.Buf = append(b.Buf, v...)
}

// PutFloat32 appends a little-endian IEEE-754 single.
func (b *Buffer) PutFloat32(v float32) { b.PutUInt32(math.Float32bits(v)) }

// PutFloat64 appends a little-endian IEEE-754 double.
func (b *Buffer) PutFloat64(v float64) { b.PutUInt64(math.Float64bits(v)) }

// PutUVarInt appends v as an unsigned LEB128 varint.
func (b *Buffer) PutUVarInt(v uint64) {
	b.Buf = AppendUvarint(b.Buf, v)
}

// PutLen appends n as a varint, the length-prefix convention used before
// every String/raw-bytes payload.
func (b *Buffer) PutLen(n int) { b.PutUVarInt(uint64(n)) }

// PutString appends a varint length prefix followed by the string bytes.
func (b *Buffer) PutString(s string) {
	b.PutLen(len(s))
	b.Buf = append(b.Buf, s...)
}

// PutStringBytes appends a varint length prefix followed by raw bytes.
func (b *Buffer) PutStringBytes(s []byte) {
	b.PutLen(len(s))
	b.Buf = append(b.Buf, s...)
}

// Len reports the number of bytes currently buffered.
func (b *Buffer) Len() int { return len(b.Buf) }

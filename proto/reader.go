package proto

import (
	"bufio"
	"io"
	"math"

	"github.com/go-faster/errors"
)

// ErrMalformedWire reports a structurally invalid wire message: a varint
// that never terminates, a truncated fixed-width field, or a block
// preamble that doesn't match the expected shape.
var ErrMalformedWire = errors.New("proto: malformed wire data")

// Reader parses the ClickHouse native wire protocol from a duplex byte
// stream. Once the bytes a call needs are already buffered, Reader never
// suspends; it pulls more from the underlying source only when the
// buffered window is exhausted.
//
// Reader is not safe for concurrent use; a connection is single-owner.
type Reader struct {
	raw *bufio.Reader

	// compression, when non-nil, is an io.Reader that frames and
	// decompresses blocks transparently (see EnableCompression).
	compression io.Reader
}

// NewReader wraps r for wire-level decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{raw: bufio.NewReaderSize(r, 16*1024)}
}

// EnableCompression routes subsequent reads through the supplied framed
// decompressor (see compress.Reader) instead of the raw transport. The
// caller is responsible for constructing it over the same underlying
// *bufio.Reader so no bytes are lost at the boundary.
func (r *Reader) EnableCompression(framed io.Reader) {
	r.compression = framed
}

// DisableCompression returns to reading the raw transport directly.
func (r *Reader) DisableCompression() {
	r.compression = nil
}

// Raw exposes the underlying buffered transport reader, e.g. so a
// compress.Reader can be constructed over the exact same byte stream.
func (r *Reader) Raw() *bufio.Reader { return r.raw }

func (r *Reader) source() io.Reader {
	if r.compression != nil {
		return r.compression
	}
	return r.raw
}

// ReadFull reads exactly len(buf) bytes, blocking until satisfied.
func (r *Reader) ReadFull(buf []byte) error {
	_, err := io.ReadFull(r.source(), buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			return errors.Wrap(ErrMalformedWire, "truncated read")
		}
		return err
	}
	return nil
}

// Byte reads a single raw byte.
func (r *Reader) Byte() (byte, error) {
	var buf [1]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, errors.Wrap(err, "byte")
	}
	return buf[0], nil
}

// Bool reads a single 0/1 byte as a boolean.
func (r *Reader) Bool() (bool, error) {
	v, err := r.Byte()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// UInt8 reads an unsigned byte.
func (r *Reader) UInt8() (uint8, error) { return r.Byte() }

// Int8 reads a signed byte.
func (r *Reader) Int8() (int8, error) {
	v, err := r.Byte()
	return int8(v), err
}

// UInt16 reads a little-endian uint16.
func (r *Reader) UInt16() (uint16, error) {
	var buf [2]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, errors.Wrap(err, "uint16")
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

// Int16 reads a little-endian int16.
func (r *Reader) Int16() (int16, error) {
	v, err := r.UInt16()
	return int16(v), err
}

// UInt32 reads a little-endian uint32.
func (r *Reader) UInt32() (uint32, error) {
	var buf [4]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, errors.Wrap(err, "uint32")
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

// Int32 reads a little-endian int32.
func (r *Reader) Int32() (int32, error) {
	v, err := r.UInt32()
	return int32(v), err
}

// UInt64 reads a little-endian uint64.
func (r *Reader) UInt64() (uint64, error) {
	var buf [8]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, errors.Wrap(err, "uint64")
	}
	return uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
		uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56, nil
}

// Int64 reads a little-endian int64.
func (r *Reader) Int64() (int64, error) {
	v, err := r.UInt64()
	return int64(v), err
}

// UInt128 reads a little-endian 128-bit value as two 64-bit halves, low
// half first.
func (r *Reader) UInt128() (lo, hi uint64, err error) {
	lo, err = r.UInt64()
	if err != nil {
		return 0, 0, errors.Wrap(err, "uint128 low")
	}
	hi, err = r.UInt64()
	if err != nil {
		return 0, 0, errors.Wrap(err, "uint128 high")
	}
	return lo, hi, nil
}

// Raw128 reads 16 raw bytes verbatim (IPv6/UUID have their own
// byte-order rules rather than plain LE u128).
func (r *Reader) Raw128() ([16]byte, error) {
	var buf [16]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return buf, errors.Wrap(err, "raw128")
	}
	return buf, nil
}

// Float32 reads a little-endian IEEE-754 single.
func (r *Reader) Float32() (float32, error) {
	v, err := r.UInt32()
	return math.Float32frombits(v), err
}

// Float64 reads a little-endian IEEE-754 double.
func (r *Reader) Float64() (float64, error) {
	v, err := r.UInt64()
	return math.Float64frombits(v), err
}

// UVarInt reads an unsigned LEB128 varint, failing with ErrMalformedWire
// if it does not terminate within maxVarintLen bytes or the input ends
// after its first byte.
func (r *Reader) UVarInt() (uint64, error) {
	var (
		v   uint64
		shift uint
	)
	for i := 0; i < maxVarintLen; i++ {
		b, err := r.Byte()
		if err != nil {
			if i > 0 && errors.Is(err, io.EOF) {
				return 0, errors.Wrap(ErrMalformedWire, "uvarint truncated")
			}
			return 0, errors.Wrap(err, "uvarint")
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, nil
		}
		shift += 7
	}
	return 0, errors.Wrap(ErrMalformedWire, "uvarint exceeds 10 bytes")
}

// Len reads a varint-prefixed length, used before every String payload.
func (r *Reader) Len() (int, error) {
	n, err := r.UVarInt()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 {
		return 0, errors.Wrap(ErrMalformedWire, "length prefix too large")
	}
	return int(n), nil
}

// StrBytes reads a varint-length-prefixed UTF-8 string into a freshly
// allocated slice.
func (r *Reader) StrBytes() ([]byte, error) {
	n, err := r.Len()
	if err != nil {
		return nil, errors.Wrap(err, "strbytes")
	}
	buf := make([]byte, n)
	if err := r.ReadFull(buf); err != nil {
		return nil, errors.Wrap(err, "strbytes")
	}
	return buf, nil
}

// Str reads a varint-length-prefixed UTF-8 string.
func (r *Reader) Str() (string, error) {
	buf, err := r.StrBytes()
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// StrPooled reads a varint-length-prefixed string into a pooled buffer;
// the caller must Release the handle.
func (r *Reader) StrPooled() (*PooledBytes, int, error) {
	n, err := r.Len()
	if err != nil {
		return nil, 0, errors.Wrap(err, "strpooled")
	}
	p := getBytes(n)
	*p = (*p)[:n]
	if err := r.ReadFull(*p); err != nil {
		putBytes(p)
		return nil, 0, errors.Wrap(err, "strpooled")
	}
	return &PooledBytes{buf: p}, n, nil
}

// Discard reads and drops exactly n bytes, used by skippers.
func (r *Reader) Discard(n int) error {
	if n <= 0 {
		return nil
	}
	if br, ok := r.source().(*bufio.Reader); ok {
		for n > 0 {
			d, err := br.Discard(n)
			n -= d
			if err != nil {
				return errors.Wrap(err, "discard")
			}
		}
		return nil
	}
	// Compressed source: no seekable discard, drain via a scratch buffer.
	var scratch [4096]byte
	for n > 0 {
		chunk := len(scratch)
		if chunk > n {
			chunk = n
		}
		if err := r.ReadFull(scratch[:chunk]); err != nil {
			return errors.Wrap(err, "discard")
		}
		n -= chunk
	}
	return nil
}

// Cursor parses an already fully-buffered in-memory segment and exposes
// fallible try_* operations that report insufficient data without
// raising, instead of blocking or erroring. It is the non-blocking twin
// of Reader: given a window of bytes already in memory, it tells whether
// the window contains a complete value before committing to parse it.
type Cursor struct {
	Buf []byte
	pos int
}

// NewCursor wraps buf for non-blocking parsing.
func NewCursor(buf []byte) *Cursor { return &Cursor{Buf: buf} }

// Remaining reports the number of unconsumed bytes.
func (c *Cursor) Remaining() int { return len(c.Buf) - c.pos }

// Consumed reports the number of bytes read so far.
func (c *Cursor) Consumed() int { return c.pos }

// TryByte returns the next byte without raising if none is buffered.
func (c *Cursor) TryByte() (v byte, ok bool) {
	if c.pos >= len(c.Buf) {
		return 0, false
	}
	v = c.Buf[c.pos]
	c.pos++
	return v, true
}

// TryRead returns the next n bytes without raising if fewer are buffered.
func (c *Cursor) TryRead(n int) (v []byte, ok bool) {
	if c.Remaining() < n {
		return nil, false
	}
	v = c.Buf[c.pos : c.pos+n]
	c.pos += n
	return v, true
}

// TryUVarInt attempts to decode a varint from the buffered window. ok is
// false if the buffer ends mid-varint (more bytes are needed); err is set
// only if the 10-byte cap is exceeded within the available bytes.
func (c *Cursor) TryUVarInt() (v uint64, ok bool, err error) {
	start := c.pos
	var shift uint
	for i := 0; i < maxVarintLen; i++ {
		b, got := c.TryByte()
		if !got {
			c.pos = start
			return 0, false, nil
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, true, nil
		}
		shift += 7
	}
	return 0, false, ErrVarIntOverflow
}

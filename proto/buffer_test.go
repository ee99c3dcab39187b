package proto

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferScalarRoundTrip(t *testing.T) {
	var b Buffer
	b.PutInt8(-12)
	b.PutUInt8(250)
	b.PutInt16(-1000)
	b.PutUInt16(60000)
	b.PutInt32(-70000)
	b.PutUInt32(4000000000)
	b.PutInt64(-1 << 40)
	b.PutUInt64(1 << 63)
	b.PutFloat32(float32(math.NaN()))
	b.PutFloat32(float32(math.Inf(1)))
	b.PutFloat64(math.Inf(-1))
	b.PutBool(true)
	b.PutBool(false)
	b.PutString("hello")
	b.PutString("")

	r := NewReader(bytes.NewReader(b.Buf))

	i8, err := r.Int8()
	require.NoError(t, err)
	require.EqualValues(t, -12, i8)

	u8, err := r.UInt8()
	require.NoError(t, err)
	require.EqualValues(t, 250, u8)

	i16, err := r.Int16()
	require.NoError(t, err)
	require.EqualValues(t, -1000, i16)

	u16, err := r.UInt16()
	require.NoError(t, err)
	require.EqualValues(t, 60000, u16)

	i32, err := r.Int32()
	require.NoError(t, err)
	require.EqualValues(t, -70000, i32)

	u32, err := r.UInt32()
	require.NoError(t, err)
	require.EqualValues(t, 4000000000, u32)

	i64, err := r.Int64()
	require.NoError(t, err)
	require.EqualValues(t, -1<<40, i64)

	u64, err := r.UInt64()
	require.NoError(t, err)
	require.EqualValues(t, uint64(1)<<63, u64)

	f32, err := r.Float32()
	require.NoError(t, err)
	require.True(t, math.IsNaN(float64(f32)))

	f32inf, err := r.Float32()
	require.NoError(t, err)
	require.True(t, math.IsInf(float64(f32inf), 1))

	f64, err := r.Float64()
	require.NoError(t, err)
	require.True(t, math.IsInf(f64, -1))

	bTrue, err := r.Bool()
	require.NoError(t, err)
	require.True(t, bTrue)

	bFalse, err := r.Bool()
	require.NoError(t, err)
	require.False(t, bFalse)

	s, err := r.Str()
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	empty, err := r.Str()
	require.NoError(t, err)
	require.Equal(t, "", empty)
}

func TestUVarIntRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40, math.MaxUint64}
	var b Buffer
	for _, v := range values {
		b.PutUVarInt(v)
	}
	r := NewReader(bytes.NewReader(b.Buf))
	for _, want := range values {
		got, err := r.UVarInt()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestUVarIntTruncatedIsMalformed(t *testing.T) {
	var b Buffer
	b.PutUVarInt(1 << 40)
	// Truncate to cut the varint short mid-stream.
	truncated := b.Buf[:1]
	r := NewReader(bytes.NewReader(truncated))
	_, err := r.UVarInt()
	require.ErrorIs(t, err, ErrMalformedWire)
}

func TestCursorTryUVarIntIncomplete(t *testing.T) {
	var b Buffer
	b.PutUVarInt(1 << 20)
	c := NewCursor(b.Buf[:1])
	_, ok, err := c.TryUVarInt()
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 0, c.Consumed())
}

func TestCursorTryUVarIntComplete(t *testing.T) {
	var b Buffer
	b.PutUVarInt(300)
	c := NewCursor(b.Buf)
	v, ok, err := c.TryUVarInt()
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 300, v)
}

package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTripLZ4(t *testing.T) {
	for _, n := range []int{0, 1, 100, 4096, 1 << 20} {
		w, err := NewWriter(AlgorithmLZ4)
		require.NoError(t, err)

		src := bytes.Repeat([]byte("clickhouse-"), n/11+1)[:n]
		var dst []byte
		dst, err = w.Compress(dst, src)
		require.NoError(t, err)

		r := NewReader(bytes.NewReader(dst))
		got := make([]byte, len(src))
		_, err = readAll(r, got)
		require.NoError(t, err)
		require.Equal(t, src, got)
	}
}

func TestFrameRoundTripZSTD(t *testing.T) {
	w, err := NewWriter(AlgorithmZSTD)
	require.NoError(t, err)

	src := bytes.Repeat([]byte("abcXYZ"), 500)
	var dst []byte
	dst, err = w.Compress(dst, src)
	require.NoError(t, err)

	r := NewReader(bytes.NewReader(dst))
	got := make([]byte, len(src))
	_, err = readAll(r, got)
	require.NoError(t, err)
	require.Equal(t, src, got)
}

func TestFrameIdentityPassthroughNone(t *testing.T) {
	w, err := NewWriter(AlgorithmNone)
	require.NoError(t, err)

	src := []byte("no compression here")
	dst, err := w.Compress(nil, src)
	require.NoError(t, err)
	require.Equal(t, src, dst)
}

func TestFrameCorruptedChecksumFails(t *testing.T) {
	w, err := NewWriter(AlgorithmLZ4)
	require.NoError(t, err)

	src := []byte("a message that will be tampered with after compression")
	dst, err := w.Compress(nil, src)
	require.NoError(t, err)

	// Flip a payload byte without touching the checksum.
	dst[len(dst)-1] ^= 0xFF

	r := NewReader(bytes.NewReader(dst))
	got := make([]byte, len(src))
	_, err = readAll(r, got)
	require.Error(t, err)

	var corrupted *CorruptedDataErr
	require.ErrorAs(t, err, &corrupted)
}

func TestFrameMultipleFramesConcatenated(t *testing.T) {
	w, err := NewWriter(AlgorithmLZ4)
	require.NoError(t, err)

	var dst []byte
	dst, err = w.Compress(dst, []byte("first frame payload"))
	require.NoError(t, err)
	dst, err = w.Compress(dst, []byte("second frame payload, a bit longer"))
	require.NoError(t, err)

	r := NewReader(bytes.NewReader(dst))
	first := make([]byte, len("first frame payload"))
	_, err = readAll(r, first)
	require.NoError(t, err)
	require.Equal(t, "first frame payload", string(first))

	second := make([]byte, len("second frame payload, a bit longer"))
	_, err = readAll(r, second)
	require.NoError(t, err)
	require.Equal(t, "second frame payload, a bit longer", string(second))
}

// readAll is io.ReadFull, spelled out so callers reading exactly len(buf)
// bytes from a frame Reader read cleanly through frame boundaries.
func readAll(r *Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

package compress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksumDeterministic(t *testing.T) {
	header := [9]byte{byte(AlgorithmLZ4), 1, 2, 3, 4, 5, 6, 7, 8}
	payload := []byte("clickhouse native protocol")

	a := checksum(header, payload)
	b := checksum(header, payload)
	require.Equal(t, a, b)
}

func TestChecksumDiffersOnPayload(t *testing.T) {
	header := [9]byte{byte(AlgorithmLZ4), 1, 2, 3, 4, 5, 6, 7, 8}

	a := checksum(header, []byte("one"))
	b := checksum(header, []byte("two"))
	require.NotEqual(t, a, b)
}

func TestChecksumWireRoundTrip(t *testing.T) {
	header := [9]byte{byte(AlgorithmZSTD), 9, 9, 9, 9, 9, 9, 9, 9}
	sum := checksum(header, []byte("payload bytes"))

	buf := make([]byte, 16)
	putChecksum(buf, sum)
	got := readChecksum(buf)
	require.Equal(t, sum, got)
}

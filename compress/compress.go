// Package compress implements the ClickHouse native protocol's
// compressed-block framing: a CityHash128 checksum over an algorithm tag
// plus size header plus payload, with LZ4 and Zstd as the supported
// codecs.
package compress

import "github.com/go-faster/errors"

// Algorithm identifies a compression codec by its wire byte.
type Algorithm byte

// Wire-fixed algorithm identifiers.
const (
	AlgorithmNone Algorithm = 0x00
	AlgorithmLZ4  Algorithm = 0x82
	AlgorithmZSTD Algorithm = 0x90
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "None"
	case AlgorithmLZ4:
		return "LZ4"
	case AlgorithmZSTD:
		return "ZSTD"
	default:
		return "Unknown"
	}
}

// ErrUnsupportedAlgorithm is returned for an algorithm byte this package
// does not implement.
var ErrUnsupportedAlgorithm = errors.New("compress: unsupported algorithm")

// Codec compresses and decompresses whole buffers for one algorithm.
type Codec interface {
	// Compress appends the compressed form of src to dst and returns it.
	Compress(dst, src []byte) ([]byte, error)
	// Decompress writes exactly len(dst) decompressed bytes derived from
	// src into dst.
	Decompress(dst, src []byte) error
	// MaxCompressedSize bounds the compressed size of an n-byte input.
	MaxCompressedSize(n int) int
}

// CodecFor resolves the Codec implementing algo, or ErrUnsupportedAlgorithm.
func CodecFor(algo Algorithm) (Codec, error) {
	switch algo {
	case AlgorithmLZ4:
		return lz4Codec{}, nil
	case AlgorithmZSTD:
		return zstdCodec{}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedAlgorithm, "0x%02x", byte(algo))
	}
}

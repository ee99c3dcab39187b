package compress

import (
	"github.com/pierrec/lz4/v4"

	"github.com/go-faster/errors"
)

type lz4Codec struct{}

func (lz4Codec) MaxCompressedSize(n int) int {
	return lz4.CompressBlockBound(n)
}

func (lz4Codec) Compress(dst, src []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(src))
	scratch := dst
	if cap(scratch) < bound {
		scratch = make([]byte, bound)
	}
	scratch = scratch[:bound]
	var c lz4.Compressor
	n, err := c.CompressBlock(src, scratch)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 compress")
	}
	// CompressBlock returns (0, nil) rather than an error when src is too
	// short or too uniform to beat a literal-only encoding. Emit one
	// ourselves: a single LZ4 sequence with no match, which is always a
	// structurally valid standalone block.
	if n == 0 && len(src) > 0 {
		return appendLiteralBlock(dst[:0], src), nil
	}
	return append(dst[:0], scratch[:n]...), nil
}

// appendLiteralBlock appends src to dst encoded as one LZ4 sequence
// consisting entirely of literals: a token byte carrying the literal
// run length (extended with 0xFF continuation bytes past 15), followed
// by the literal bytes themselves. A block with no match component is
// valid LZ4 as long as it is the block's only sequence.
func appendLiteralBlock(dst, src []byte) []byte {
	n := len(src)
	if n < 15 {
		dst = append(dst, byte(n)<<4)
	} else {
		dst = append(dst, 0xF0)
		rem := n - 15
		for rem >= 255 {
			dst = append(dst, 0xFF)
			rem -= 255
		}
		dst = append(dst, byte(rem))
	}
	return append(dst, src...)
}

func (lz4Codec) Decompress(dst, src []byte) error {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return errors.Wrap(err, "lz4 decompress")
	}
	if n != len(dst) {
		return errors.Errorf("lz4: expected %d decompressed bytes, got %d", len(dst), n)
	}
	return nil
}

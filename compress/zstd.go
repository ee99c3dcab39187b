package compress

import (
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/go-faster/errors"
)

// zstd encoders/decoders are expensive to construct and safe for
// concurrent reuse once built, so each is created once and shared.
var (
	zstdEncOnce sync.Once
	zstdEnc     *zstd.Encoder

	zstdDecOnce sync.Once
	zstdDec     *zstd.Decoder
)

func getZstdEncoder() *zstd.Encoder {
	zstdEncOnce.Do(func() {
		zstdEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return zstdEnc
}

func getZstdDecoder() *zstd.Decoder {
	zstdDecOnce.Do(func() {
		zstdDec, _ = zstd.NewReader(nil)
	})
	return zstdDec
}

type zstdCodec struct{}

func (zstdCodec) MaxCompressedSize(n int) int {
	// zstd's worst-case expansion bound, generous enough for a framing
	// buffer preallocation; the encoder itself never exceeds this in
	// practice for block-oriented input.
	return n + n/8 + 64
}

func (zstdCodec) Compress(dst, src []byte) ([]byte, error) {
	return getZstdEncoder().EncodeAll(src, dst), nil
}

func (zstdCodec) Decompress(dst, src []byte) error {
	out, err := getZstdDecoder().DecodeAll(src, dst[:0])
	if err != nil {
		return errors.Wrap(err, "zstd decompress")
	}
	if len(out) != len(dst) {
		return errors.Errorf("zstd: expected %d decompressed bytes, got %d", len(dst), len(out))
	}
	if len(dst) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return nil
}

package compress

import (
	"encoding/binary"
	"io"

	"github.com/go-faster/city"
	"github.com/go-faster/errors"
)

// headerSize is the 9-byte header following the checksum: 1 algorithm
// byte, then two little-endian uint32 sizes.
const headerSize = 9

// checksumSize is the 16-byte CityHash128 checksum preceding the header.
const checksumSize = 16

// minFrameSize is the minimum legal frame: checksum + header with no
// payload (compressed_size itself must be >= 9, i.e. header-only, which
// a real codec never produces, but the floor is enforced at parse time).
const minFrameSize = checksumSize + headerSize

// CorruptedDataErr reports a compressed frame whose checksum didn't match
// its header+payload.
type CorruptedDataErr struct {
	Actual, Reference city.U128
	RawSize, DataSize int
}

func (e *CorruptedDataErr) Error() string {
	return "compress: checksum mismatch: actual " + FormatU128(e.Actual) +
		" reference " + FormatU128(e.Reference)
}

// Writer compresses Data-message bodies into the wire's compressed-frame
// format before they reach the transport.
type Writer struct {
	Algorithm Algorithm
	Level     int // codec-specific; 0 means "codec default".

	codec Codec
	tmp   []byte
}

// NewWriter builds a frame Writer for the given algorithm.
func NewWriter(algo Algorithm) (*Writer, error) {
	if algo == AlgorithmNone {
		return &Writer{Algorithm: algo}, nil
	}
	c, err := CodecFor(algo)
	if err != nil {
		return nil, err
	}
	return &Writer{Algorithm: algo, codec: c}, nil
}

// Compress appends the framed, checksummed compressed form of src to dst
// and returns the extended slice. If Algorithm is AlgorithmNone, src is
// returned unframed (identity passthrough).
func (w *Writer) Compress(dst, src []byte) ([]byte, error) {
	if w.Algorithm == AlgorithmNone {
		return append(dst, src...), nil
	}
	maxLen := w.codec.MaxCompressedSize(len(src))
	if cap(w.tmp) < maxLen {
		w.tmp = make([]byte, 0, maxLen)
	}
	compressed, err := w.codec.Compress(w.tmp[:0], src)
	if err != nil {
		return nil, errors.Wrap(err, "compress")
	}
	w.tmp = compressed

	var header [headerSize]byte
	header[0] = byte(w.Algorithm)
	// compressed_size includes the 9-byte header itself.
	binary.LittleEndian.PutUint32(header[1:5], uint32(len(compressed)+headerSize))
	binary.LittleEndian.PutUint32(header[5:9], uint32(len(src)))

	sum := checksum(header, compressed)

	frameStart := len(dst)
	dst = append(dst, make([]byte, checksumSize+headerSize)...)
	putChecksum(dst[frameStart:], sum)
	copy(dst[frameStart+checksumSize:], header[:])
	dst = append(dst, compressed...)
	return dst, nil
}

// Reader decompresses compressed frames read from an underlying byte
// stream, and implements io.Reader so it can be installed as a
// transparent source for proto.Reader.EnableCompression.
type Reader struct {
	src io.Reader

	plain   []byte
	pos     int
	scratch [minFrameSize]byte
}

// NewReader wraps src, decompressing one frame at a time on demand.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// Read implements io.Reader, serving bytes out of the current
// decompressed frame and pulling the next frame once exhausted.
func (r *Reader) Read(p []byte) (int, error) {
	if r.pos >= len(r.plain) {
		if err := r.nextFrame(); err != nil {
			return 0, err
		}
	}
	n := copy(p, r.plain[r.pos:])
	r.pos += n
	return n, nil
}

func (r *Reader) nextFrame() error {
	if _, err := io.ReadFull(r.src, r.scratch[:]); err != nil {
		return errors.Wrap(err, "frame header")
	}
	wantSum := readChecksum(r.scratch[:checksumSize])
	var header [headerSize]byte
	copy(header[:], r.scratch[checksumSize:])

	algo := Algorithm(header[0])
	compressedSize := binary.LittleEndian.Uint32(header[1:5])
	uncompressedSize := binary.LittleEndian.Uint32(header[5:9])
	if compressedSize < headerSize {
		return errors.Wrap(ErrMalformedFrame, "compressed size smaller than header")
	}
	payloadLen := int(compressedSize) - headerSize
	payload := make([]byte, payloadLen)
	if err := readPayload(r.src, payload); err != nil {
		return errors.Wrap(err, "frame payload")
	}

	gotSum := checksum(header, payload)
	if gotSum != wantSum {
		return &CorruptedDataErr{
			Actual:    gotSum,
			Reference: wantSum,
			RawSize:   int(compressedSize),
			DataSize:  int(uncompressedSize),
		}
	}

	if algo == AlgorithmNone {
		r.plain = payload
		r.pos = 0
		return nil
	}
	codec, err := CodecFor(algo)
	if err != nil {
		return err
	}
	out := make([]byte, uncompressedSize)
	if err := codec.Decompress(out, payload); err != nil {
		return errors.Wrap(err, "decompress")
	}
	r.plain = out
	r.pos = 0
	return nil
}

func readPayload(src io.Reader, buf []byte) error {
	_, err := io.ReadFull(src, buf)
	return err
}

// ErrMalformedFrame reports a compressed frame whose header is internally
// inconsistent (e.g. compressed_size below the 9-byte floor).
var ErrMalformedFrame = errors.New("compress: malformed frame header")

package proto

import "github.com/go-faster/errors"

// maxVarintLen is the widest a LEB128-encoded uint64 can be: ceil(64/7).
const maxVarintLen = 10

// ErrVarIntOverflow is returned when a varint does not terminate within
// maxVarintLen bytes.
var ErrVarIntOverflow = errors.New("proto: varint overflows 10 bytes")

// AppendUvarint appends v to buf as an unsigned LEB128 varint and returns
// the extended slice. Low 7 bits per byte; the high bit marks continuation.
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// UvarintLen reports the number of bytes AppendUvarint would write for v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

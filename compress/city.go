package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/go-faster/city"
)

// checksum computes the CityHash128 ClickHouse uses for compressed-block
// integrity: CH128, the v1.0.2-compatible variant (not city's default
// v1.1.x hash), over the 9-byte header followed by the compressed payload.
func checksum(header [9]byte, payload []byte) city.U128 {
	buf := make([]byte, 0, len(header)+len(payload))
	buf = append(buf, header[:]...)
	buf = append(buf, payload...)
	return city.CH128(buf)
}

// putChecksum writes u as the wire's 16-byte checksum: low 64 bits first,
// then high 64 bits, both little-endian.
func putChecksum(dst []byte, u city.U128) {
	binary.LittleEndian.PutUint64(dst[0:8], u.Low)
	binary.LittleEndian.PutUint64(dst[8:16], u.High)
}

func readChecksum(src []byte) city.U128 {
	return city.U128{
		Low:  binary.LittleEndian.Uint64(src[0:8]),
		High: binary.LittleEndian.Uint64(src[8:16]),
	}
}

// FormatU128 renders a checksum for error messages.
func FormatU128(u city.U128) string {
	return fmt.Sprintf("%016x%016x", u.High, u.Low)
}

package proto

import "net"

// ColIPv4 stores IPv4 addresses as their 4-byte little-endian wire form
// (numerically the network-order bytes reversed), backed by the same
// generic engine as any other fixed-width scalar.
type ColIPv4 struct {
	*ColNum[uint32]
}

// NewColIPv4 constructs an empty IPv4 column.
func NewColIPv4() *ColIPv4 {
	return &ColIPv4{newColNum[uint32](ColumnTypeIPv4, uint32Codec{})}
}

// IPv4ToWire converts a 4-byte net.IP (big-endian/network order) to the
// uint32 ClickHouse stores: the address read as a big-endian number,
// which the column then writes little-endian.
func IPv4ToWire(ip net.IP) uint32 {
	v4 := ip.To4()
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}

// WireToIPv4 converts a stored uint32 back to a 4-byte net.IP in network
// order.
func WireToIPv4(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v)).To4()
}

// RowIP returns row i as a net.IP.
func (c *ColIPv4) RowIP(i int) net.IP { return WireToIPv4(c.Row(i)) }

// AppendIP appends one IPv4 address given as a net.IP.
func (c *ColIPv4) AppendIP(ip net.IP) { c.Append(IPv4ToWire(ip)) }

// RowIP returns row i as a net.IP (IPv6 is stored as-is, no reordering).
func (c *ColIPv6) RowIP(i int) net.IP {
	b := c.RowBytes(i)
	out := make(net.IP, 16)
	copy(out, b)
	return out
}

// AppendIP appends one IPv6 address given as a 16-byte net.IP.
func (c *ColIPv6) AppendIP(ip net.IP) {
	v16 := ip.To16()
	c.AppendBytes(v16)
}

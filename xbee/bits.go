package xbee

import "math/bits"

// bitSet reports whether bit n (0 = least significant) of b is 1.
func bitSet(b byte, n uint) bool {
	return (b>>n)&0x01 == 1
}

// be16 joins a big-endian byte pair.
func be16(msb, lsb byte) uint16 {
	return uint16(msb)<<8 | uint16(lsb)
}

// channelPositions expands the analog channel mask into per-slot flags.
//
// The reserved low bit of the high indicator byte is shifted out, then the
// remaining bits are read from the most significant set bit downward: that
// bit is slot 0, the next lower bit slot 1, and so on. A mask of zero has no
// positions. At most MaxAnalogChannels slots are returned.
func channelPositions(high byte, limit int) []bool {
	mask := high >> 1
	width := bits.Len8(mask)
	top := width - 1
	if width > limit {
		width = limit
	}
	pos := make([]bool, width)
	for i := range pos {
		pos[i] = bitSet(mask, uint(top-i))
	}
	return pos
}

// sum adds the bytes of b without wrapping.
func sum(b []byte) int {
	total := 0
	for _, v := range b {
		total += int(v)
	}
	return total
}

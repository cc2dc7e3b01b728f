package xbee

// Checksum returns the XBee API checksum for a payload: 0xFF minus the low
// byte of the payload sum.
func Checksum(payload []byte) byte {
	var s byte
	for _, b := range payload {
		s += b
	}
	return 0xFF - s
}

// VerifyChecksum reports whether c is the trailing checksum for payload.
func VerifyChecksum(payload []byte, c byte) bool {
	return Checksum(payload) == c
}

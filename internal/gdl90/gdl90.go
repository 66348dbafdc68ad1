// Package gdl90 decodes the GDL90 data interface: flag-delimited,
// byte-stuffed, CRC-protected messages carrying ownship, traffic and
// uplink data from an ADS-B receiver.
//
// The package has no I/O of its own. Bytes are pushed into a Stream, which
// reassembles frames, validates the CRC and hands typed messages (or typed
// errors) to the caller's handlers synchronously.
package gdl90

const (
	flagByte   = 0x7E
	escapeByte = 0x7D
	escapeXor  = 0x20

	// MaxFrameLen bounds the unstuffed size of a single frame. The largest
	// GDL90 message (Uplink Data, 436 bytes + CRC) fits with room to spare.
	MaxFrameLen = 1024
)

// Frame takes an unframed GDL90 message (message ID + payload bytes), appends
// the GDL90 CRC16, applies byte-stuffing, and wraps with 0x7E flags.
//
// Receivers use it to build conformant vectors for tests and fixtures.
func Frame(message []byte) []byte {
	crc := CRC16(message)

	// CRC goes out little-endian (low byte first).
	withCRC := make([]byte, 0, len(message)+2)
	withCRC = append(withCRC, message...)
	withCRC = append(withCRC, byte(crc&0xFF), byte((crc>>8)&0xFF))

	out := make([]byte, 0, 2+len(withCRC)*2)
	out = append(out, flagByte)
	for _, b := range withCRC {
		if b == flagByte || b == escapeByte {
			out = append(out, escapeByte, b^escapeXor)
			continue
		}
		out = append(out, b)
	}
	out = append(out, flagByte)
	return out
}

package gdl90

// CRC16 computes the GDL90 frame check sequence over data.
// This is a table-driven CRC-16 with polynomial 0x1021, seeded at zero.
//
// NOTE: Different CRC-16 variants exist; this matches the ICD's FCS
// calculation (section 2.2.3) and widely-used GDL90 framing in the ecosystem.
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crc16Table[crc>>8] ^ (crc << 8) ^ uint16(b)
	}
	return crc
}

var crc16Table = func() [256]uint16 {
	var table [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if (crc & 0x8000) != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}()

// Validate checks the trailing little-endian CRC of an unstuffed frame and
// returns the message bytes (ID + fields) without it.
//
// Frames too short to hold a message ID plus CRC are reported as a truncated
// ChecksumError.
func Validate(frame []byte) ([]byte, error) {
	if len(frame) < 3 {
		return nil, &ChecksumError{Frame: frame, Truncated: true}
	}
	msg := frame[:len(frame)-2]
	got := uint16(frame[len(frame)-2]) | (uint16(frame[len(frame)-1]) << 8)
	want := CRC16(msg)
	if got != want {
		return nil, &ChecksumError{Frame: frame, Received: got, Computed: want}
	}
	return msg, nil
}

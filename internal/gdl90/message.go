package gdl90

import (
	"fmt"
	"strconv"
	"strings"
)

// MessageID is the first byte of every GDL90 message.
type MessageID byte

const (
	IDHeartbeat                MessageID = 0x00
	IDInitialization           MessageID = 0x02
	IDUplinkData               MessageID = 0x07
	IDHeightAboveTerrain       MessageID = 0x09
	IDOwnshipReport            MessageID = 0x0A
	IDOwnshipGeometricAltitude MessageID = 0x0B
	IDTrafficReport            MessageID = 0x14
	IDBasicReport              MessageID = 0x1E
	IDLongReport               MessageID = 0x1F

	// Vendor extensions seen on Stratux-class receivers.
	IDForeFlight       MessageID = 0x65
	IDStratuxHeartbeat MessageID = 0xCC
)

func (id MessageID) String() string {
	switch id {
	case IDHeartbeat:
		return "heartbeat"
	case IDInitialization:
		return "initialization"
	case IDUplinkData:
		return "uplink_data"
	case IDHeightAboveTerrain:
		return "height_above_terrain"
	case IDOwnshipReport:
		return "ownship_report"
	case IDOwnshipGeometricAltitude:
		return "ownship_geometric_altitude"
	case IDTrafficReport:
		return "traffic_report"
	case IDBasicReport:
		return "basic_report"
	case IDLongReport:
		return "long_report"
	case IDForeFlight:
		return "foreflight"
	case IDStratuxHeartbeat:
		return "stratux_heartbeat"
	default:
		return fmt.Sprintf("0x%02X", byte(id))
	}
}

// MarshalText encodes the ID by name so JSON output stays readable.
func (id MessageID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *MessageID) UnmarshalText(b []byte) error {
	s := string(b)
	for _, known := range knownIDs {
		if known.String() == s {
			*id = known
			return nil
		}
	}
	if strings.HasPrefix(s, "0x") {
		v, err := strconv.ParseUint(s[2:], 16, 8)
		if err == nil {
			*id = MessageID(v)
			return nil
		}
	}
	return fmt.Errorf("gdl90: unknown message id %q", s)
}

var knownIDs = []MessageID{
	IDHeartbeat, IDInitialization, IDUplinkData, IDHeightAboveTerrain,
	IDOwnshipReport, IDOwnshipGeometricAltitude, IDTrafficReport,
	IDBasicReport, IDLongReport, IDForeFlight, IDStratuxHeartbeat,
}

// Message is a decoded GDL90 message. The concrete types are the structs in
// this package; use a type switch to tell them apart.
type Message interface {
	MessageID() MessageID
}

// Unknown carries a CRC-valid message whose ID has no decoder.
type Unknown struct {
	ID      MessageID
	Payload []byte
}

func (m Unknown) MessageID() MessageID { return m.ID }

func u24(b0, b1, b2 byte) uint32 {
	return uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2)
}

// s24 sign-extends a big-endian 24-bit two's complement value.
func s24(b0, b1, b2 byte) int32 {
	v := u24(b0, b1, b2)
	if v&0x800000 != 0 {
		v |= 0xFF000000
	}
	return int32(v)
}

// u12hi reads 12 bits from a full byte followed by the high nibble of the next.
func u12hi(b0, b1 byte) uint16 {
	return uint16(b0)<<4 | uint16(b1)>>4
}

// u12lo reads 12 bits from the low nibble of a byte followed by a full byte.
func u12lo(b0, b1 byte) uint16 {
	return uint16(b0&0x0F)<<8 | uint16(b1)
}

func s12(v uint16) int16 {
	if v&0x800 != 0 {
		v |= 0xF000
	}
	return int16(v)
}

func s16(b0, b1 byte) int16 {
	return int16(uint16(b0)<<8 | uint16(b1))
}

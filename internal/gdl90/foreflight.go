package gdl90

import (
	"fmt"
	"strings"
)

const (
	foreFlightSubID   = 0x00
	foreFlightSubAHRS = 0x01

	foreFlightIDLen   = 39
	foreFlightAHRSLen = 12
)

// ForeFlightID is the ForeFlight "ID" extension (0x65, sub-ID 0x00) a
// receiver sends to identify itself.
type ForeFlightID struct {
	ID      MessageID
	Version byte

	// Serial is 0xFFFFFFFFFFFFFFFF when invalid.
	Serial    uint64
	ShortName string
	LongName  string

	// Capabilities bit 0: geometric altitude datum is MSL (else WGS-84).
	Capabilities uint32
}

func (m ForeFlightID) MessageID() MessageID { return m.ID }

// GeoAltitudeMSL reports whether Ownship Geometric Altitude is MSL.
func (m ForeFlightID) GeoAltitudeMSL() bool { return m.Capabilities&0x01 != 0 }

// ForeFlightAHRS is the ForeFlight AHRS extension (0x65, sub-ID 0x01).
//
// Angles are 0.1 degree units on the wire; airspeeds are knots. Invalid
// fields carry the sentinels 0x7FFF (roll/pitch) and 0xFFFF (heading,
// airspeeds) and have their HasValid flag cleared.
type ForeFlightAHRS struct {
	ID MessageID

	RollDeg           float64
	PitchDeg          float64
	HasValidRollPitch bool

	HeadingDeg      float64
	HeadingMagnetic bool
	HasValidHeading bool

	IndicatedAirspeedKt int
	HasValidIAS         bool
	TrueAirspeedKt      int
	HasValidTAS         bool
}

func (m ForeFlightAHRS) MessageID() MessageID { return m.ID }

func decodeForeFlight(msg []byte) (Message, error) {
	if err := needLen(IDForeFlight, msg, 2); err != nil {
		return nil, err
	}
	switch msg[1] {
	case foreFlightSubID:
		return decodeForeFlightID(msg)
	case foreFlightSubAHRS:
		return decodeForeFlightAHRS(msg)
	default:
		return nil, &UnknownMessageError{ID: IDForeFlight, Payload: msg}
	}
}

func decodeForeFlightID(msg []byte) (Message, error) {
	if err := needLen(IDForeFlight, msg, foreFlightIDLen); err != nil {
		return nil, err
	}
	m := ForeFlightID{ID: IDForeFlight, Version: msg[2]}
	for i := 3; i <= 10; i++ {
		m.Serial = m.Serial<<8 | uint64(msg[i])
	}
	m.ShortName = strings.TrimRight(string(msg[11:19]), " \x00")
	m.LongName = strings.TrimRight(string(msg[19:35]), " \x00")
	m.Capabilities = uint32(msg[35])<<24 | uint32(msg[36])<<16 | uint32(msg[37])<<8 | uint32(msg[38])
	return m, nil
}

func decodeForeFlightAHRS(msg []byte) (Message, error) {
	if err := needLen(IDForeFlight, msg, foreFlightAHRSLen); err != nil {
		return nil, err
	}
	m := ForeFlightAHRS{ID: IDForeFlight}

	roll := s16(msg[2], msg[3])
	pitch := s16(msg[4], msg[5])
	if roll != 0x7FFF && pitch != 0x7FFF {
		m.RollDeg = float64(roll) / 10
		m.PitchDeg = float64(pitch) / 10
		m.HasValidRollPitch = true
	}

	// Heading: bit 15 selects magnetic, the rest is signed 0.1 degree units.
	hdg := uint16(msg[6])<<8 | uint16(msg[7])
	if hdg != 0xFFFF {
		m.HeadingMagnetic = hdg&0x8000 != 0
		v := hdg & 0x7FFF
		if v&0x4000 != 0 {
			v |= 0x8000
		}
		m.HeadingDeg = float64(int16(v)) / 10
		m.HasValidHeading = true
	}

	if ias := uint16(msg[8])<<8 | uint16(msg[9]); ias != 0xFFFF {
		m.IndicatedAirspeedKt = int(ias)
		m.HasValidIAS = true
	}
	if tas := uint16(msg[10])<<8 | uint16(msg[11]); tas != 0xFFFF {
		m.TrueAirspeedKt = int(tas)
		m.HasValidTAS = true
	}
	return m, nil
}

func (m ForeFlightID) String() string {
	return fmt.Sprintf("%s (%s)", m.ShortName, m.LongName)
}

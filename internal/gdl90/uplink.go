package gdl90

import "time"

const (
	uplinkPayloadLen = 432
	basicPayloadLen  = 18
	longPayloadLen   = 34

	torInvalid = 0xFFFFFF
	torUnit    = 80 * time.Nanosecond
)

// PassThrough holds the fields shared by Uplink Data (0x07), Basic Report
// (0x1E) and Long Report (0x1F): a time of reception and an opaque UAT
// payload (RTCA/DO-282 format, not interpreted here).
type PassThrough struct {
	ID MessageID

	// TimeOfReception is relative to the last UTC second; zero when
	// HasValidTOR is false.
	TimeOfReception time.Duration
	HasValidTOR     bool

	Payload []byte
}

func (m PassThrough) MessageID() MessageID { return m.ID }

// UplinkData is a decoded Uplink Data message (0x07) carrying one UAT
// ground uplink (FIS-B) payload.
type UplinkData struct{ PassThrough }

// BasicReport is a decoded UAT Basic Report pass-through (0x1E).
type BasicReport struct{ PassThrough }

// LongReport is a decoded UAT Long Report pass-through (0x1F).
type LongReport struct{ PassThrough }

func decodeUplinkData(msg []byte) (Message, error) {
	p, err := parsePassThrough(IDUplinkData, msg, uplinkPayloadLen)
	if err != nil {
		return nil, err
	}
	return UplinkData{p}, nil
}

func decodeBasicReport(msg []byte) (Message, error) {
	p, err := parsePassThrough(IDBasicReport, msg, basicPayloadLen)
	if err != nil {
		return nil, err
	}
	return BasicReport{p}, nil
}

func decodeLongReport(msg []byte) (Message, error) {
	p, err := parsePassThrough(IDLongReport, msg, longPayloadLen)
	if err != nil {
		return nil, err
	}
	return LongReport{p}, nil
}

func parsePassThrough(id MessageID, msg []byte, payloadLen int) (PassThrough, error) {
	if err := needLen(id, msg, 4+payloadLen); err != nil {
		return PassThrough{}, err
	}
	p := PassThrough{ID: id}

	// 24-bit TOR, least significant byte first, 80 ns units.
	if tor := u24(msg[3], msg[2], msg[1]); tor != torInvalid {
		p.TimeOfReception = time.Duration(tor) * torUnit
		p.HasValidTOR = true
	}
	p.Payload = append([]byte(nil), msg[4:4+payloadLen]...)
	return p, nil
}

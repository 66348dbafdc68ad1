package gdl90

import (
	"fmt"
	"strings"
)

const (
	latLonResolution = 180.0 / 8388608.0 // degrees per LSB for signed 24-bit
	trackResolution  = 360.0 / 256.0

	trafficReportLen = 28

	altitudeInvalid = 0xFFF
	hvelInvalid     = 0xFFF
	vvelInvalid     = 0x800
)

// TrafficReport is a decoded Traffic Report (0x14). Ownship Reports (0x0A)
// share the layout; see OwnshipReport.
//
// Numeric fields guarded by a HasValid flag are zero when the flag is false;
// the flag is authoritative.
type TrafficReport struct {
	ID                 MessageID
	AlertStatus        AlertStatus
	AddressType        AddressType
	ParticipantAddress uint32

	Latitude         float64 // degrees
	Longitude        float64 // degrees
	HasValidPosition bool

	Altitude         int // feet, pressure altitude
	HasValidAltitude bool

	TrackHeadingType TrackHeadingType
	ReportStatus     ReportStatus
	AirGroundState   AirGroundState

	NIC  NIC
	NACp NACp

	HorizontalVelocity         int // knots
	HasValidHorizontalVelocity bool
	VerticalVelocity           int // ft/min
	HasValidVerticalVelocity   bool

	TrackHeading float64 // degrees

	EmitterCategory       EmitterCategory
	Callsign              string
	EmergencyPriorityCode EmergencyPriorityCode
	Spare                 byte
}

func (m TrafficReport) MessageID() MessageID { return m.ID }

// Airborne reports the air/ground indicator.
func (m TrafficReport) Airborne() bool { return m.AirGroundState == Airborne }

// AddressHex renders the participant address as six hex digits.
func (m TrafficReport) AddressHex() string {
	return fmt.Sprintf("%06X", m.ParticipantAddress)
}

// OwnshipReport is a decoded Ownship Report (0x0A).
type OwnshipReport struct {
	TrafficReport
}

func decodeTrafficReport(payload []byte) (Message, error) {
	t, err := parseTrafficLayout(IDTrafficReport, payload)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func decodeOwnshipReport(payload []byte) (Message, error) {
	t, err := parseTrafficLayout(IDOwnshipReport, payload)
	if err != nil {
		return nil, err
	}
	return OwnshipReport{TrafficReport: t}, nil
}

// parseTrafficLayout decodes the shared Traffic/Ownship report layout
// (ICD 3.5.1). payload[0] is the message ID.
func parseTrafficLayout(id MessageID, msg []byte) (TrafficReport, error) {
	if err := needLen(id, msg, trafficReportLen); err != nil {
		return TrafficReport{}, err
	}

	t := TrafficReport{ID: id}
	t.AlertStatus = AlertStatus(msg[1] >> 4)
	t.AddressType = AddressType(msg[1] & 0x0F)
	t.ParticipantAddress = u24(msg[2], msg[3], msg[4])

	t.Latitude = float64(s24(msg[5], msg[6], msg[7])) * latLonResolution
	t.Longitude = float64(s24(msg[8], msg[9], msg[10])) * latLonResolution

	// 25 ft resolution with +1000 ft offset; 0xFFF = invalid/unavailable.
	if alt := u12hi(msg[11], msg[12]); alt != altitudeInvalid {
		t.Altitude = int(alt)*25 - 1000
		t.HasValidAltitude = true
	}

	// Miscellaneous indicators, low nibble of msg[12].
	// - bits0-1: track/heading type
	// - bit2: extrapolated
	// - bit3: airborne
	misc := msg[12] & 0x0F
	t.TrackHeadingType = TrackHeadingType(misc & 0x03)
	t.ReportStatus = ReportStatus((misc >> 2) & 0x01)
	t.AirGroundState = AirGroundState((misc >> 3) & 0x01)

	t.NIC = NIC(msg[13] >> 4)
	t.NACp = NACp(msg[13] & 0x0F)

	if hv := u12hi(msg[14], msg[15]); hv != hvelInvalid {
		t.HorizontalVelocity = int(hv)
		t.HasValidHorizontalVelocity = true
	}

	// Vertical velocity (12-bit signed, 64 fpm resolution). 0x800 = unknown.
	if vv := u12lo(msg[15], msg[16]); vv != vvelInvalid {
		t.VerticalVelocity = int(s12(vv)) * 64
		t.HasValidVerticalVelocity = true
	}

	t.TrackHeading = float64(msg[17]) * trackResolution
	t.EmitterCategory = EmitterCategory(msg[18])
	t.Callsign = trimCallsign(msg[19:27])
	t.EmergencyPriorityCode = EmergencyPriorityCode(msg[27] >> 4)
	t.Spare = msg[27] & 0x0F

	// ICD 3.5.1.3: lat=0, lon=0 with NIC=0 means no position.
	t.HasValidPosition = !(t.Latitude == 0 && t.Longitude == 0 && t.NIC == 0)

	return t, nil
}

func trimCallsign(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

// AlertStatus is the traffic alert nibble (ICD 3.5.1.1).
type AlertStatus byte

const (
	NoAlert      AlertStatus = 0
	TrafficAlert AlertStatus = 1
)

func (s AlertStatus) String() string {
	switch s {
	case NoAlert:
		return "no alert"
	case TrafficAlert:
		return "traffic alert"
	default:
		return fmt.Sprintf("reserved(%d)", byte(s))
	}
}

// AddressType is the target identity type (ICD 3.5.1.2).
type AddressType byte

const (
	AddrADSBICAO         AddressType = 0
	AddrADSBSelfAssigned AddressType = 1
	AddrTISBICAO         AddressType = 2
	AddrTISBTrackFile    AddressType = 3
	AddrSurfaceVehicle   AddressType = 4
	AddrGroundStation    AddressType = 5
)

func (a AddressType) String() string {
	switch a {
	case AddrADSBICAO:
		return "ADS-B with ICAO address"
	case AddrADSBSelfAssigned:
		return "ADS-B with self-assigned address"
	case AddrTISBICAO:
		return "TIS-B with ICAO address"
	case AddrTISBTrackFile:
		return "TIS-B with track file ID"
	case AddrSurfaceVehicle:
		return "surface vehicle"
	case AddrGroundStation:
		return "ground station beacon"
	default:
		return fmt.Sprintf("reserved(%d)", byte(a))
	}
}

// TrackHeadingType qualifies TrackHeading (ICD 3.5.1.5).
type TrackHeadingType byte

const (
	TrackInvalid    TrackHeadingType = 0
	TrueTrack       TrackHeadingType = 1
	MagneticHeading TrackHeadingType = 2
	TrueHeading     TrackHeadingType = 3
)

func (t TrackHeadingType) String() string {
	switch t {
	case TrackInvalid:
		return "not valid"
	case TrueTrack:
		return "true track angle"
	case MagneticHeading:
		return "heading (magnetic)"
	case TrueHeading:
		return "heading (true)"
	default:
		return fmt.Sprintf("invalid(%d)", byte(t))
	}
}

// ReportStatus is the updated/extrapolated indicator.
type ReportStatus byte

const (
	ReportUpdated      ReportStatus = 0
	ReportExtrapolated ReportStatus = 1
)

// AirGroundState is the on-ground/airborne indicator.
type AirGroundState byte

const (
	OnGround AirGroundState = 0
	Airborne AirGroundState = 1
)

// EmitterCategory describes the target type (ICD 3.5.1.10).
type EmitterCategory byte

var emitterNames = map[EmitterCategory]string{
	0:  "no aircraft type information",
	1:  "light",
	2:  "small",
	3:  "large",
	4:  "high vortex large",
	5:  "heavy",
	6:  "highly maneuverable",
	7:  "rotorcraft",
	9:  "glider/sailplane",
	10: "lighter than air",
	11: "parachutist/sky diver",
	12: "ultra light/hang glider/paraglider",
	14: "unmanned aerial vehicle",
	15: "space/transatmospheric vehicle",
	17: "surface vehicle - emergency",
	18: "surface vehicle - service",
	19: "point obstacle",
	20: "cluster obstacle",
	21: "line obstacle",
}

func (c EmitterCategory) String() string {
	if s, ok := emitterNames[c]; ok {
		return s
	}
	return fmt.Sprintf("unassigned(%d)", byte(c))
}

// EmergencyPriorityCode is the emergency/priority nibble (ICD 3.5.1.12).
type EmergencyPriorityCode byte

var emergencyNames = [...]string{
	"no emergency",
	"general emergency",
	"medical emergency",
	"minimum fuel",
	"no communication",
	"unlawful interference",
	"downed aircraft",
}

func (p EmergencyPriorityCode) String() string {
	if int(p) < len(emergencyNames) {
		return emergencyNames[p]
	}
	return fmt.Sprintf("reserved(%d)", byte(p))
}

package gdl90

import "time"

const (
	heartbeatLen        = 7
	initializationLen   = 3
	stratuxHeartbeatLen = 2
)

// Heartbeat is a decoded Heartbeat (0x00), sent once per second.
type Heartbeat struct {
	ID      MessageID
	Status1 byte
	Status2 byte

	// Timestamp is seconds since 0000Z (17 bits).
	Timestamp uint32

	UplinkCount    int // uplink messages received in the previous second
	BasicLongCount int // basic and long reports received in the previous second
}

func (m Heartbeat) MessageID() MessageID { return m.ID }

// Status byte 1.
func (m Heartbeat) UATInitialized() bool      { return m.Status1&0x01 != 0 }
func (m Heartbeat) RATCS() bool               { return m.Status1&0x04 != 0 }
func (m Heartbeat) GPSBatteryLow() bool       { return m.Status1&0x08 != 0 }
func (m Heartbeat) AddrTalkback() bool        { return m.Status1&0x10 != 0 }
func (m Heartbeat) IDENT() bool               { return m.Status1&0x20 != 0 }
func (m Heartbeat) MaintenanceRequired() bool { return m.Status1&0x40 != 0 }
func (m Heartbeat) GPSPosValid() bool         { return m.Status1&0x80 != 0 }

// Status byte 2. Bit 7 is the timestamp MSB.
func (m Heartbeat) UTCOK() bool           { return m.Status2&0x01 != 0 }
func (m Heartbeat) CSANotAvailable() bool { return m.Status2&0x20 != 0 }
func (m Heartbeat) CSARequested() bool    { return m.Status2&0x40 != 0 }

// TimeOfDay returns the timestamp as a duration since 0000Z.
func (m Heartbeat) TimeOfDay() time.Duration {
	return time.Duration(m.Timestamp) * time.Second
}

func decodeHeartbeat(msg []byte) (Message, error) {
	if err := needLen(IDHeartbeat, msg, heartbeatLen); err != nil {
		return nil, err
	}
	return Heartbeat{
		ID:             IDHeartbeat,
		Status1:        msg[1],
		Status2:        msg[2],
		Timestamp:      uint32(msg[2]>>7)<<16 | uint32(msg[4])<<8 | uint32(msg[3]),
		UplinkCount:    int(msg[5] >> 3),
		BasicLongCount: int(msg[5]&0x03)<<8 | int(msg[6]),
	}, nil
}

// Initialization is a decoded Initialization message (0x02). Displays send
// it to the receiver; it shows up on the wire when a bus is tapped.
type Initialization struct {
	ID             MessageID
	Configuration1 byte
	Configuration2 byte
}

func (m Initialization) MessageID() MessageID { return m.ID }

func (m Initialization) CDTIOK() bool          { return m.Configuration1&0x01 != 0 }
func (m Initialization) AudioInhibit() bool    { return m.Configuration1&0x02 != 0 }
func (m Initialization) AudioTest() bool       { return m.Configuration1&0x40 != 0 }
func (m Initialization) CSADisable() bool      { return m.Configuration2&0x01 != 0 }
func (m Initialization) CSAAudioDisable() bool { return m.Configuration2&0x02 != 0 }

func decodeInitialization(msg []byte) (Message, error) {
	if err := needLen(IDInitialization, msg, initializationLen); err != nil {
		return nil, err
	}
	return Initialization{ID: IDInitialization, Configuration1: msg[1], Configuration2: msg[2]}, nil
}

// StratuxHeartbeat is the Stratux device heartbeat (0xCC). Some apps use it
// to identify Stratux-like devices.
type StratuxHeartbeat struct {
	ID              MessageID
	AHRSValid       bool
	GPSValid        bool
	ProtocolVersion int
}

func (m StratuxHeartbeat) MessageID() MessageID { return m.ID }

func decodeStratuxHeartbeat(msg []byte) (Message, error) {
	if err := needLen(IDStratuxHeartbeat, msg, stratuxHeartbeatLen); err != nil {
		return nil, err
	}
	b := msg[1]
	return StratuxHeartbeat{
		ID:              IDStratuxHeartbeat,
		AHRSValid:       b&0x01 != 0,
		GPSValid:        b&0x02 != 0,
		ProtocolVersion: int(b >> 2),
	}, nil
}

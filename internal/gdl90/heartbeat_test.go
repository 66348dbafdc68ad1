package gdl90

import (
	"testing"
	"time"
)

func TestDecode_Heartbeat_StratuxPacking(t *testing.T) {
	// Stratux heartbeat at 01:02:03Z with GPS valid.
	m := mustDecode(t, []byte{0x00, 0x91, 0x01, 0x8B, 0x0E, 0x00, 0x00}).(Heartbeat)

	if !m.GPSPosValid() || !m.UATInitialized() || !m.AddrTalkback() {
		t.Fatalf("status1=0x%02X", m.Status1)
	}
	if m.MaintenanceRequired() || m.GPSBatteryLow() || m.IDENT() || m.RATCS() {
		t.Fatalf("unexpected status1 bits: 0x%02X", m.Status1)
	}
	if !m.UTCOK() || m.CSARequested() || m.CSANotAvailable() {
		t.Fatalf("status2=0x%02X", m.Status2)
	}
	if m.Timestamp != 3723 {
		t.Fatalf("timestamp=%d want 3723", m.Timestamp)
	}
	if m.TimeOfDay() != time.Hour+2*time.Minute+3*time.Second {
		t.Fatalf("time of day=%s", m.TimeOfDay())
	}
}

func TestDecode_Heartbeat_TimestampMSBAndCounts(t *testing.T) {
	// Status2 bit7 carries timestamp bit 16; byte5 = 5-bit uplink count + 2
	// high bits of the basic/long count.
	m := mustDecode(t, []byte{0x00, 0x88, 0x81, 0xFF, 0xFF, 0x0B, 0xFF}).(Heartbeat)

	if m.Timestamp != 0x1FFFF {
		t.Fatalf("timestamp=0x%X want 0x1FFFF", m.Timestamp)
	}
	if m.UplinkCount != 1 {
		t.Fatalf("uplink count=%d want 1", m.UplinkCount)
	}
	if m.BasicLongCount != 0x3FF {
		t.Fatalf("basic/long count=%d want 1023", m.BasicLongCount)
	}
	if !m.GPSPosValid() || !m.GPSBatteryLow() {
		t.Fatalf("status1=0x%02X", m.Status1)
	}
}

func TestDecode_Initialization(t *testing.T) {
	m := mustDecode(t, []byte{0x02, 0x41, 0x02}).(Initialization)
	if !m.CDTIOK() || m.AudioInhibit() || !m.AudioTest() {
		t.Fatalf("configuration1=0x%02X", m.Configuration1)
	}
	if m.CSADisable() || !m.CSAAudioDisable() {
		t.Fatalf("configuration2=0x%02X", m.Configuration2)
	}
}

func TestDecode_StratuxHeartbeat(t *testing.T) {
	// GPS valid, AHRS invalid, protocol version 1.
	m := mustDecode(t, []byte{0xCC, 0x06}).(StratuxHeartbeat)
	if !m.GPSValid || m.AHRSValid || m.ProtocolVersion != 1 {
		t.Fatalf("unexpected stratux heartbeat: %+v", m)
	}
}

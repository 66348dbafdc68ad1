package gdl90

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func passThroughMsg(id MessageID, payloadLen int, tor [3]byte) []byte {
	msg := make([]byte, 4+payloadLen)
	msg[0] = byte(id)
	copy(msg[1:4], tor[:])
	for i := 4; i < len(msg); i++ {
		msg[i] = byte(i)
	}
	return msg
}

func TestDecode_UplinkData(t *testing.T) {
	// TOR 10000 ticks, LSB first.
	msg := passThroughMsg(IDUplinkData, 432, [3]byte{0x10, 0x27, 0x00})
	if len(msg) != 436 {
		t.Fatalf("len=%d", len(msg))
	}

	m := mustDecode(t, msg).(UplinkData)
	if !m.HasValidTOR || m.TimeOfReception != 800*time.Microsecond {
		t.Fatalf("tor=%s valid=%v", m.TimeOfReception, m.HasValidTOR)
	}
	if !bytes.Equal(m.Payload, msg[4:]) {
		t.Fatalf("payload mismatch")
	}

	// The decoded payload must not alias the input buffer.
	msg[4] ^= 0xFF
	if m.Payload[0] == msg[4] {
		t.Fatalf("payload aliases input")
	}
}

func TestDecode_PassThroughInvalidTOR(t *testing.T) {
	m := mustDecode(t, passThroughMsg(IDBasicReport, 18, [3]byte{0xFF, 0xFF, 0xFF})).(BasicReport)
	if m.HasValidTOR || m.TimeOfReception != 0 {
		t.Fatalf("tor=%s valid=%v", m.TimeOfReception, m.HasValidTOR)
	}
	if len(m.Payload) != 18 {
		t.Fatalf("payload len=%d want 18", len(m.Payload))
	}
}

func TestDecode_LongReport(t *testing.T) {
	m := mustDecode(t, passThroughMsg(IDLongReport, 34, [3]byte{0x01, 0x00, 0x00})).(LongReport)
	if !m.HasValidTOR || m.TimeOfReception != 80*time.Nanosecond {
		t.Fatalf("tor=%s valid=%v", m.TimeOfReception, m.HasValidTOR)
	}
	if len(m.Payload) != 34 {
		t.Fatalf("payload len=%d want 34", len(m.Payload))
	}
}

func TestDecode_UplinkTruncated(t *testing.T) {
	msg := passThroughMsg(IDUplinkData, 432, [3]byte{})
	_, err := Decode(msg[:100])
	var te *TruncatedMessageError
	if !errors.As(err, &te) || te.ID != IDUplinkData || te.Want != 436 || te.Got != 100 {
		t.Fatalf("err=%v", err)
	}
}

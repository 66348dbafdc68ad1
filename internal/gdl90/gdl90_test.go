package gdl90

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrame_StartEndFlags(t *testing.T) {
	got := Frame([]byte{0x00, 0x01})
	if len(got) < 2 {
		t.Fatalf("frame too short: %d", len(got))
	}
	if got[0] != flagByte {
		t.Fatalf("missing start flag: 0x%02x", got[0])
	}
	if got[len(got)-1] != flagByte {
		t.Fatalf("missing end flag: 0x%02x", got[len(got)-1])
	}
}

func TestFrame_EscapesControlBytes(t *testing.T) {
	// Force both bytes that must be escaped.
	got := Frame([]byte{0x00, flagByte, escapeByte})
	for i := 1; i < len(got)-1; i++ {
		if got[i] == flagByte {
			t.Fatalf("unescaped flag byte found at %d", i)
		}
	}
}

func TestFrame_RoundTripThroughFramer(t *testing.T) {
	cases := [][]byte{
		{0x00, 0x81, 0x41, 0xDB, 0xD0, 0x08, 0x02},
		{0x0B, flagByte, escapeByte, 0x00, 0x0A},
		{0x14, 0x7E, 0x7E, 0x7D, 0x7D, 0x5E, 0x5D},
	}
	for _, msg := range cases {
		frames := collectFrames(NewFramer(0), Frame(msg))
		if len(frames) != 1 {
			t.Fatalf("Frame(% X) produced %d frames", msg, len(frames))
		}
		got, err := Validate(frames[0])
		if err != nil {
			t.Fatalf("Validate(% X) error: %v", frames[0], err)
		}
		if !bytes.Equal(got, msg) {
			t.Fatalf("round trip mismatch: got % X want % X", got, msg)
		}
	}
}

func TestValidate_BadCRCReportsBothValues(t *testing.T) {
	_, err := Validate([]byte{0x0B, 0x00, 0xC8, 0x00, 0x0A, 0x00, 0x00})
	var ce *ChecksumError
	if !errors.As(err, &ce) {
		t.Fatalf("err=%v want *ChecksumError", err)
	}
	if ce.Received != 0 || ce.Computed != 0xA8BF {
		t.Fatalf("received=0x%04X computed=0x%04X", ce.Received, ce.Computed)
	}
}

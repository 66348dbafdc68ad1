package gdl90

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func collectFrames(f *Framer, chunks ...[]byte) [][]byte {
	var out [][]byte
	for _, c := range chunks {
		f.Feed(c, func(frame []byte) {
			out = append(out, append([]byte(nil), frame...))
		})
	}
	return out
}

func TestFramer_EmptyFrameSkipped(t *testing.T) {
	got := collectFrames(NewFramer(0), []byte{0x7E, 0x7E})
	if len(got) != 0 {
		t.Fatalf("expected no frames, got % X", got)
	}
}

func TestFramer_SharedFlagBetweenFrames(t *testing.T) {
	got := collectFrames(NewFramer(0), []byte{0x7E, 0x01, 0x02, 0x7E, 0x03, 0x7E})
	if len(got) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(got))
	}
	if !bytes.Equal(got[0], []byte{0x01, 0x02}) || !bytes.Equal(got[1], []byte{0x03}) {
		t.Fatalf("unexpected frames: % X", got)
	}
}

func TestFramer_Unstuffs(t *testing.T) {
	got := collectFrames(NewFramer(0), []byte{0x7E, 0x7D, 0x5E, 0x7D, 0x5D, 0x01, 0x7E})
	if len(got) != 1 || !bytes.Equal(got[0], []byte{0x7E, 0x7D, 0x01}) {
		t.Fatalf("unexpected frames: % X", got)
	}
}

func TestFramer_EscapePendingAcrossFeeds(t *testing.T) {
	f := NewFramer(0)
	got := collectFrames(f, []byte{0x7E, 0x01, 0x7D})
	if len(got) != 0 {
		t.Fatalf("frame emitted early: % X", got)
	}
	if !f.Pending() {
		t.Fatalf("expected pending partial frame")
	}
	got = collectFrames(f, []byte{0x5E}, []byte{0x7E})
	if len(got) != 1 || !bytes.Equal(got[0], []byte{0x01, 0x7E}) {
		t.Fatalf("unexpected frames: % X", got)
	}
}

func TestFramer_DiscardsBytesBeforeFirstFlag(t *testing.T) {
	got := collectFrames(NewFramer(0), []byte{0x11, 0x22, 0x7D, 0x7E, 0x33, 0x7E})
	if len(got) != 1 || !bytes.Equal(got[0], []byte{0x33}) {
		t.Fatalf("unexpected frames: % X", got)
	}
}

func TestFramer_FlagAbortsPendingEscape(t *testing.T) {
	got := collectFrames(NewFramer(0), []byte{0x7E, 0x01, 0x7D, 0x7E, 0x02, 0x7E})
	if len(got) != 2 {
		t.Fatalf("expected 2 frames, got % X", got)
	}
	if !bytes.Equal(got[0], []byte{0x01}) || !bytes.Equal(got[1], []byte{0x02}) {
		t.Fatalf("unexpected frames: % X", got)
	}
}

func TestFramer_OversizeFrameDropped(t *testing.T) {
	f := NewFramer(4)
	in := []byte{0x7E, 1, 2, 3, 4, 5, 6, 0x7E, 9, 0x7E}
	got := collectFrames(f, in)
	if len(got) != 1 || !bytes.Equal(got[0], []byte{9}) {
		t.Fatalf("unexpected frames: % X", got)
	}
	if f.Oversize != 1 {
		t.Fatalf("oversize=%d want 1", f.Oversize)
	}
}

func TestFramer_OnOversizeInOrder(t *testing.T) {
	f := NewFramer(4)
	var events []string
	f.OnOversize = func(limit int) { events = append(events, fmt.Sprintf("oversize/%d", limit)) }
	in := []byte{0x7E, 9, 0x7E, 1, 2, 3, 4, 5, 6, 7, 0x7E, 8, 0x7E}
	f.Feed(in, func(frame []byte) { events = append(events, fmt.Sprintf("frame % X", frame)) })

	want := []string{"frame 09", "oversize/4", "frame 08"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Fatalf("events=%q want %q", events, want)
	}
}

func TestFramer_ExactMaxLenAccepted(t *testing.T) {
	f := NewFramer(4)
	got := collectFrames(f, []byte{0x7E, 1, 2, 3, 4, 0x7E})
	if len(got) != 1 || len(got[0]) != 4 {
		t.Fatalf("unexpected frames: % X", got)
	}
}

func TestFramer_Reset(t *testing.T) {
	f := NewFramer(0)
	collectFrames(f, []byte{0x7E, 0x01, 0x02})
	f.Reset()
	if f.Pending() {
		t.Fatalf("expected no pending frame after reset")
	}
	// After reset the framer hunts for a flag again, so 0x03 is discarded.
	got := collectFrames(f, []byte{0x03, 0x7E, 0x04, 0x7E})
	if len(got) != 1 || !bytes.Equal(got[0], []byte{0x04}) {
		t.Fatalf("unexpected frames: % X", got)
	}
}

func TestFramer_ByteAtATimeMatchesWhole(t *testing.T) {
	msg := []byte{0x00, 0x7E, 0x7D, 0x8B, 0x0E, 0x00, 0x00}
	wire := Frame(msg)

	whole := collectFrames(NewFramer(0), wire)

	f := NewFramer(0)
	var split [][]byte
	for i := range wire {
		split = append(split, collectFrames(f, wire[i:i+1])...)
	}
	if len(whole) != 1 || len(split) != 1 || !bytes.Equal(whole[0], split[0]) {
		t.Fatalf("whole=% X split=% X", whole, split)
	}
}

package replay

import (
	"bytes"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"gdl90rx/internal/gdl90"
)

func TestRecordReplay_ReproducesDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gdl90-record.log")

	w, err := CreateWriter(path)
	if err != nil {
		t.Fatalf("CreateWriter() error: %v", err)
	}

	var wire []byte
	wire = append(wire, gdl90.Frame([]byte{0x00, 0x81, 0x41, 0xDB, 0xD0, 0x08, 0x02})...)
	wire = append(wire, gdl90.Frame([]byte{0xCC, 0x06})...)
	wire = append(wire, gdl90.Frame([]byte{0x0B, 0x00, 0xC8, 0x00, 0x0A})...)

	var live []gdl90.Message
	liveStream := gdl90.NewStream(func(m gdl90.Message) { live = append(live, m) }, nil)
	rec := NewRecorder(w, liveStream, zerolog.Nop())

	// Chunk boundaries deliberately split frames.
	now := time.Now()
	rec.now = func() time.Time { return now }
	for _, c := range [][]byte{wire[:5], wire[5:13], wire[13:]} {
		if _, err := rec.Write(c); err != nil {
			t.Fatalf("Write() error: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	recs, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}

	var replayed []gdl90.Message
	var raw bytes.Buffer
	replayStream := gdl90.NewStream(func(m gdl90.Message) { replayed = append(replayed, m) }, nil)
	fs := &fakeSleeper{}
	err = Play(recs, 1.0, false, fs, func(chunk []byte) error {
		raw.Write(chunk)
		_, err := replayStream.Write(chunk)
		return err
	})
	if err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	if len(fs.slept) != 0 {
		t.Fatalf("expected no sleeps, got %v", fs.slept)
	}
	if !bytes.Equal(raw.Bytes(), wire) {
		t.Fatalf("replayed bytes differ\n got: % X\nwant: % X", raw.Bytes(), wire)
	}
	if len(live) != 3 || !reflect.DeepEqual(live, replayed) {
		t.Fatalf("decode mismatch\n live: %+v\nreplay: %+v", live, replayed)
	}
}

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"gdl90rx/internal/gdl90"
	"gdl90rx/internal/replay"
)

type logSummary struct {
	Segments    int
	Chunks      int
	Bytes       int
	MaxDuration time.Duration
	Messages    int
	MsgIDCounts map[gdl90.MessageID]int
	ErrorCounts map[gdl90.ErrorKind]int
}

// summarizeCapture decodes a capture log the same way the live path does.
// Each START segment gets a fresh stream so a frame cut off at the end of one
// recording cannot merge with the next.
func summarizeCapture(records []replay.Record) logSummary {
	s := logSummary{
		MsgIDCounts: map[gdl90.MessageID]int{},
		ErrorCounts: map[gdl90.ErrorKind]int{},
	}
	if len(records) == 0 {
		return s
	}

	newStream := func() *gdl90.Stream {
		return gdl90.NewStream(
			func(m gdl90.Message) {
				s.Messages++
				s.MsgIDCounts[m.MessageID()]++
			},
			func(err error) {
				s.ErrorCounts[gdl90.Kind(err)]++
			},
		)
	}

	var stream *gdl90.Stream
	origin := time.Duration(0)
	hasData := false
	segments := 0

	for _, r := range records {
		if r.Data == nil {
			segments++
			origin = r.At
			if stream != nil {
				_ = stream.Close()
			}
			stream = newStream()
			continue
		}
		if stream == nil {
			stream = newStream()
		}
		hasData = true

		s.Chunks++
		s.Bytes += len(r.Data)
		at := r.At - origin
		if at < 0 {
			at = 0
		}
		if at > s.MaxDuration {
			s.MaxDuration = at
		}
		stream.Feed(r.Data)
	}
	if stream != nil {
		_ = stream.Close()
	}
	if segments == 0 && hasData {
		segments = 1
	}
	s.Segments = segments

	return s
}

func printLogSummary(w io.Writer, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path is empty")
	}

	recs, err := replay.ReadFile(path)
	if err != nil {
		return err
	}

	s := summarizeCapture(recs)

	fmt.Fprintf(w, "path: %s\n", path)
	fmt.Fprintf(w, "segments: %d\n", s.Segments)
	fmt.Fprintf(w, "chunks: %d\n", s.Chunks)
	fmt.Fprintf(w, "bytes: %d\n", s.Bytes)
	fmt.Fprintf(w, "messages: %d\n", s.Messages)
	fmt.Fprintf(w, "max_duration: %s\n", s.MaxDuration)

	ids := make([]int, 0, len(s.MsgIDCounts))
	for k := range s.MsgIDCounts {
		ids = append(ids, int(k))
	}
	sort.Ints(ids)
	fmt.Fprintf(w, "msg_id_counts:\n")
	for _, k := range ids {
		id := gdl90.MessageID(k)
		fmt.Fprintf(w, "  0x%02X %s: %d\n", byte(id), id, s.MsgIDCounts[id])
	}

	kinds := make([]int, 0, len(s.ErrorCounts))
	for k := range s.ErrorCounts {
		kinds = append(kinds, int(k))
	}
	sort.Ints(kinds)
	fmt.Fprintf(w, "error_counts:\n")
	for _, k := range kinds {
		kind := gdl90.ErrorKind(k)
		fmt.Fprintf(w, "  %s: %d\n", kind, s.ErrorCounts[kind])
	}
	return nil
}

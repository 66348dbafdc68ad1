package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"gdl90rx/internal/gdl90"
)

type hexLine struct {
	ID      gdl90.MessageID `json:"id"`
	Message gdl90.Message   `json:"message"`
}

type hexError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// runHex reads hex text from r, one chunk of raw stream bytes per line, and
// writes one JSON line per decoded message or frame error to w. Whitespace
// inside a line is ignored; lines starting with '#' are comments.
func runHex(r io.Reader, w io.Writer, logger zerolog.Logger) (gdl90.Stats, error) {
	enc := json.NewEncoder(w)
	var writeErr error
	emit := func(v any) {
		if writeErr == nil {
			writeErr = enc.Encode(v)
		}
	}

	s := gdl90.NewStream(
		func(m gdl90.Message) { emit(hexLine{ID: m.MessageID(), Message: m}) },
		func(err error) { emit(hexError{Error: err.Error(), Kind: gdl90.Kind(err).String()}) },
		gdl90.WithLogger(logger),
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		chunk, err := hex.DecodeString(strings.Join(strings.Fields(line), ""))
		if err != nil {
			return s.Stats(), fmt.Errorf("line %d: %w", lineNo, err)
		}
		s.Feed(chunk)
		if writeErr != nil {
			return s.Stats(), writeErr
		}
	}
	if err := sc.Err(); err != nil {
		return s.Stats(), err
	}
	_ = s.Close()
	return s.Stats(), nil
}

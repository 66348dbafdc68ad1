package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"gdl90rx/internal/config"
	"gdl90rx/internal/replay"
	"gdl90rx/internal/serial"
	"gdl90rx/internal/udp"
)

// source produces raw bytes into sink until its input ends or ctx is done.
type source func(ctx context.Context, sink io.Writer) error

// inputCounters reports packets and bytes seen by a source that counts them.
type inputCounters func() (packets, bytes uint64)

// describeInput is shown on /api/status.
func describeInput(in config.InputConfig) string {
	switch in.Type {
	case config.InputUDP:
		return "udp " + in.UDP.Listen
	case config.InputSerial:
		return fmt.Sprintf("serial %s @%d", in.Serial.Port, in.Serial.Baud)
	case config.InputReplay:
		return "replay " + in.Replay.Path
	default:
		return in.Type
	}
}

// newSource builds the configured input. The inputCounters result is nil
// unless the input keeps its own receive counters.
func newSource(in config.InputConfig, stdin io.Reader, logger zerolog.Logger) (source, inputCounters, error) {
	switch in.Type {
	case config.InputUDP:
		l, err := udp.NewListener(in.UDP.Listen, in.UDP.MaxPacket, logger)
		if err != nil {
			return nil, nil, err
		}
		return l.Run, l.Counters, nil

	case config.InputSerial:
		s := serial.NewSource(in.Serial.Port, in.Serial.Baud, in.Serial.ReadTimeout, logger)
		return s.Run, nil, nil

	case config.InputReplay:
		recs, err := replay.ReadFile(in.Replay.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("replay read: %w", err)
		}
		logger.Info().Str("path", in.Replay.Path).Int("records", len(recs)).
			Float64("speed", in.Replay.Speed).Bool("loop", in.Replay.Loop).Msg("replay loaded")
		return func(ctx context.Context, sink io.Writer) error {
			err := replay.PlayContext(ctx, recs, in.Replay.Speed, in.Replay.Loop, func(chunk []byte) error {
				_, err := sink.Write(chunk)
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}, nil, nil

	case config.InputStdin:
		return func(ctx context.Context, sink io.Writer) error {
			_, err := io.Copy(sink, stdin)
			if err != nil && ctx.Err() != nil {
				return nil
			}
			return err
		}, nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported input type %q", in.Type)
}

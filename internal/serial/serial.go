// Package serial reads a raw GDL90 byte stream from a serial receiver, or
// from any non-tty path (FIFO, pty capture, regular file) that carries one.
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	bugst "go.bug.st/serial"
)

const readBufSize = 4096

type openFunc func(path string, baud int, readTimeout time.Duration) (io.ReadCloser, error)

// Source copies bytes from a device to a sink.
type Source struct {
	path        string
	baud        int
	readTimeout time.Duration
	logger      zerolog.Logger
	open        openFunc
}

func NewSource(path string, baud int, readTimeout time.Duration, logger zerolog.Logger) *Source {
	return &Source{
		path:        path,
		baud:        baud,
		readTimeout: readTimeout,
		logger:      logger,
		open:        openDevice,
	}
}

// Run opens the device and copies reads to sink until ctx is done, the
// device reports EOF, or a read fails.
func (s *Source) Run(ctx context.Context, sink io.Writer) error {
	dev, err := s.open(s.path, s.baud, s.readTimeout)
	if err != nil {
		return fmt.Errorf("serial open %s: %w", s.path, err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = dev.Close()
	}()

	s.logger.Info().Str("port", s.path).Int("baud", s.baud).Msg("serial source opened")
	buf := make([]byte, readBufSize)
	for {
		n, err := dev.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return fmt.Errorf("serial sink: %w", werr)
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Info().Str("port", s.path).Msg("serial source reached eof")
				return nil
			}
			if errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("serial read: %w", err)
		}
	}
}

func openDevice(path string, baud int, readTimeout time.Duration) (io.ReadCloser, error) {
	tty, err := isTerminal(path)
	if err != nil {
		return nil, err
	}
	if !tty {
		return os.Open(path)
	}

	mode := &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	port, err := bugst.Open(path, mode)
	if err != nil {
		return nil, err
	}
	if readTimeout > 0 {
		if err := port.SetReadTimeout(readTimeout); err != nil {
			_ = port.Close()
			return nil, err
		}
	}
	return port, nil
}

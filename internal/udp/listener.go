package udp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/rs/zerolog"
)

type packetConn interface {
	ReadFrom(p []byte) (int, net.Addr, error)
	Close() error
}

type resolveFunc func(network, address string) (*net.UDPAddr, error)
type listenFunc func(network string, laddr *net.UDPAddr) (packetConn, error)

// Listener receives GDL90 datagrams, typically on the EFB port 4000, and
// forwards each one unmodified to a sink.
type Listener struct {
	addr      string
	conn      packetConn
	maxPacket int
	logger    zerolog.Logger

	mu      sync.Mutex
	packets uint64
	bytes   uint64
}

// NewListener binds a UDP socket on addr. Datagrams larger than maxPacket
// are truncated by the kernel.
func NewListener(addr string, maxPacket int, logger zerolog.Logger) (*Listener, error) {
	return newListener(addr, maxPacket, logger, net.ResolveUDPAddr, func(network string, laddr *net.UDPAddr) (packetConn, error) {
		return net.ListenUDP(network, laddr)
	})
}

func newListener(addr string, maxPacket int, logger zerolog.Logger, resolve resolveFunc, listen listenFunc) (*Listener, error) {
	laddr, err := resolve("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve listen addr: %w", err)
	}
	conn, err := listen("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("listen udp: %w", err)
	}
	if maxPacket <= 0 {
		maxPacket = 2048
	}
	return &Listener{
		addr:      addr,
		conn:      conn,
		maxPacket: maxPacket,
		logger:    logger,
	}, nil
}

// Run copies datagrams to sink until ctx is cancelled or a read fails.
// Cancellation closes the socket and returns nil.
func (l *Listener) Run(ctx context.Context, sink io.Writer) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = l.conn.Close()
		case <-done:
		}
	}()

	l.logger.Info().Str("listen", l.addr).Msg("udp listener started")
	buf := make([]byte, l.maxPacket)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("udp read: %w", err)
		}
		if n == 0 {
			continue
		}

		l.mu.Lock()
		l.packets++
		l.bytes += uint64(n)
		l.mu.Unlock()

		if from != nil {
			l.logger.Trace().Str("from", from.String()).Int("len", n).Msg("udp datagram")
		}
		if _, err := sink.Write(buf[:n]); err != nil {
			return fmt.Errorf("udp sink: %w", err)
		}
	}
}

// Counters returns the number of datagrams and bytes received so far.
func (l *Listener) Counters() (packets, bytes uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.packets, l.bytes
}

func (l *Listener) Close() error {
	if l.conn == nil {
		return nil
	}
	return l.conn.Close()
}

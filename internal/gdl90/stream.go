package gdl90

import "github.com/rs/zerolog"

// State is the Stream processing state.
type State int

const (
	StateIdle State = iota
	StateFraming
	StateValidating
	StateDispatching
	StateDelivered
	StateErrorReported
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFraming:
		return "framing"
	case StateValidating:
		return "validating"
	case StateDispatching:
		return "dispatching"
	case StateDelivered:
		return "delivered"
	case StateErrorReported:
		return "error_reported"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Stats counts what a Stream has seen since it was created.
type Stats struct {
	Bytes           uint64            `json:"bytes"`
	Frames          uint64            `json:"frames"`
	Messages        uint64            `json:"messages"`
	ChecksumErrors  uint64            `json:"checksum_errors"`
	UnknownMessages uint64            `json:"unknown_messages"`
	TruncatedErrors uint64            `json:"truncated_errors"`
	OversizeFrames  uint64            `json:"oversize_frames"`
	MessagesByID    map[MessageID]int `json:"messages_by_id"`
}

// StreamOption configures a Stream.
type StreamOption func(s *Stream)

// WithLogger sets the logger used for dropped-frame diagnostics.
func WithLogger(logger zerolog.Logger) StreamOption {
	return func(s *Stream) {
		s.logger = logger
	}
}

// WithMaxFrameLen overrides MaxFrameLen for this stream.
func WithMaxFrameLen(n int) StreamOption {
	return func(s *Stream) {
		s.maxFrameLen = n
	}
}

// Stream turns a raw GDL90 byte stream into decoded messages.
//
// Bytes are pushed with Feed or Write. Every complete frame is CRC-checked
// and decoded; the result goes to onMessage, any failure to onError, both
// synchronously on the caller's goroutine and in arrival order. A bad frame
// never stops the stream.
//
// A Stream is owned by a single goroutine; independent streams share no
// state and may run concurrently.
type Stream struct {
	onMessage func(Message)
	onError   func(error)

	framer      *Framer
	maxFrameLen int
	state       State
	stats       Stats
	logger      zerolog.Logger
}

// NewStream returns a Stream delivering to the given handlers. Either handler
// may be nil to discard that kind of result.
func NewStream(onMessage func(Message), onError func(error), opts ...StreamOption) *Stream {
	s := &Stream{
		onMessage: onMessage,
		onError:   onError,
		logger:    zerolog.Nop(),
		state:     StateIdle,
		stats:     Stats{MessagesByID: make(map[MessageID]int)},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.framer = NewFramer(s.maxFrameLen)
	s.framer.OnOversize = func(limit int) {
		s.report(&OversizeFrameError{Limit: limit})
	}
	return s
}

// Feed pushes a chunk of raw bytes. Chunks need not align with frames.
// Feeding a closed stream is a no-op.
func (s *Stream) Feed(p []byte) {
	if s.state == StateClosed {
		return
	}
	if len(p) == 0 {
		return
	}
	s.stats.Bytes += uint64(len(p))
	s.state = StateFraming

	s.framer.Feed(p, s.handleFrame)
	s.state = StateFraming
}

// Write implements io.Writer so a Stream can sit at the end of io.Copy.
func (s *Stream) Write(p []byte) (int, error) {
	if s.state == StateClosed {
		return 0, ErrStreamClosed
	}
	s.Feed(p)
	return len(p), nil
}

// Close marks the end of input. A partially received frame is discarded.
func (s *Stream) Close() error {
	if s.state == StateClosed {
		return nil
	}
	if s.framer.Pending() {
		s.logger.Debug().Msg("discarding partial gdl90 frame at close")
	}
	s.framer.Reset()
	s.state = StateClosed
	return nil
}

// State returns the current processing state.
func (s *Stream) State() State { return s.state }

// Stats returns a copy of the stream counters.
func (s *Stream) Stats() Stats {
	out := s.stats
	out.MessagesByID = make(map[MessageID]int, len(s.stats.MessagesByID))
	for k, v := range s.stats.MessagesByID {
		out.MessagesByID[k] = v
	}
	return out
}

func (s *Stream) handleFrame(frame []byte) {
	s.stats.Frames++

	// The framer reuses its buffer; anything handed out must own its bytes.
	frame = append([]byte(nil), frame...)

	s.state = StateValidating
	msg, err := Validate(frame)
	if err != nil {
		s.report(err)
		return
	}

	s.state = StateDispatching
	m, err := Decode(msg)
	if err != nil {
		s.report(err)
		return
	}

	s.stats.Messages++
	s.stats.MessagesByID[m.MessageID()]++
	s.state = StateDelivered
	if s.onMessage != nil {
		s.onMessage(m)
	}
}

func (s *Stream) report(err error) {
	kind := Kind(err)
	switch kind {
	case KindChecksum:
		s.stats.ChecksumErrors++
	case KindUnknownMessage:
		s.stats.UnknownMessages++
	case KindTruncated:
		s.stats.TruncatedErrors++
	case KindOversize:
		s.stats.OversizeFrames++
	}
	s.logger.Debug().Err(err).Str("kind", kind.String()).Msg("dropped gdl90 frame")

	s.state = StateErrorReported
	if s.onError != nil {
		s.onError(err)
	}
}

package gdl90

// Framer reassembles unstuffed frames from an arbitrarily chunked byte stream.
//
// State (partial frame, pending escape) carries over between Feed calls, so a
// frame may arrive split across any number of chunks. A Framer is not safe
// for concurrent use.
type Framer struct {
	buf           []byte
	inFrame       bool
	escapePending bool
	overflow      bool
	maxLen        int

	// Oversize counts frames dropped for exceeding the length limit.
	Oversize uint64
	// OnOversize, if set, is called once for each frame dropped for length,
	// in order with emitted frames.
	OnOversize func(limit int)
}

// NewFramer returns a Framer that drops frames longer than maxLen unstuffed
// bytes. maxLen <= 0 selects MaxFrameLen.
func NewFramer(maxLen int) *Framer {
	if maxLen <= 0 {
		maxLen = MaxFrameLen
	}
	return &Framer{maxLen: maxLen, buf: make([]byte, 0, 64)}
}

// Feed consumes p and calls emit for every completed non-empty frame, in
// order. The slice passed to emit is only valid for the duration of the call.
func (f *Framer) Feed(p []byte, emit func(frame []byte)) {
	if f.maxLen <= 0 {
		f.maxLen = MaxFrameLen
	}
	for _, b := range p {
		if b == flagByte {
			// A flag always closes the current frame, even mid-escape.
			if f.inFrame && len(f.buf) > 0 && !f.overflow && emit != nil {
				emit(f.buf)
			}
			f.inFrame = true
			f.buf = f.buf[:0]
			f.escapePending = false
			f.overflow = false
			continue
		}
		if !f.inFrame || f.overflow {
			// Hunting for sync, or discarding an oversize frame.
			continue
		}
		if f.escapePending {
			b ^= escapeXor
			f.escapePending = false
		} else if b == escapeByte {
			f.escapePending = true
			continue
		}
		if len(f.buf) >= f.maxLen {
			f.overflow = true
			f.Oversize++
			f.buf = f.buf[:0]
			if f.OnOversize != nil {
				f.OnOversize(f.maxLen)
			}
			continue
		}
		f.buf = append(f.buf, b)
	}
}

// Reset drops any partial frame and returns to hunting for a flag byte.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
	f.inFrame = false
	f.escapePending = false
	f.overflow = false
}

// Pending reports whether a partial frame is buffered.
func (f *Framer) Pending() bool {
	return f.inFrame && (len(f.buf) > 0 || f.escapePending)
}

package gdl90

import (
	"errors"
	"fmt"
)

// ErrStreamClosed is returned by Stream.Write after Close.
var ErrStreamClosed = errors.New("gdl90: stream closed")

// ChecksumError reports a frame whose CRC did not match, or that was too
// short to carry one. The frame is dropped; the stream continues.
type ChecksumError struct {
	// Frame is the unstuffed frame including the trailing CRC bytes.
	Frame     []byte
	Received  uint16
	Computed  uint16
	Truncated bool
}

func (e *ChecksumError) Error() string {
	if e.Truncated {
		return fmt.Sprintf("gdl90: frame too short for crc: %d bytes", len(e.Frame))
	}
	return fmt.Sprintf("gdl90: crc mismatch: received 0x%04X computed 0x%04X", e.Received, e.Computed)
}

// UnknownMessageError reports a CRC-valid frame with a message ID that has
// no decoder.
type UnknownMessageError struct {
	ID      MessageID
	Payload []byte
}

func (e *UnknownMessageError) Error() string {
	return fmt.Sprintf("gdl90: unknown message id 0x%02X (%d bytes)", byte(e.ID), len(e.Payload))
}

// TruncatedMessageError reports a known message ID with fewer bytes than its
// fixed layout requires.
type TruncatedMessageError struct {
	ID   MessageID
	Want int
	Got  int
}

func (e *TruncatedMessageError) Error() string {
	return fmt.Sprintf("gdl90: %s truncated: need %d bytes, got %d", e.ID, e.Want, e.Got)
}

// OversizeFrameError reports a frame dropped because its unstuffed length
// exceeded the stream's limit. Bytes up to the next flag are discarded.
type OversizeFrameError struct {
	Limit int
}

func (e *OversizeFrameError) Error() string {
	return fmt.Sprintf("gdl90: frame exceeds %d bytes", e.Limit)
}

// ErrorKind classifies stream errors for counters and logs.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindChecksum
	KindUnknownMessage
	KindTruncated
	KindOversize
)

func (k ErrorKind) String() string {
	switch k {
	case KindChecksum:
		return "checksum"
	case KindUnknownMessage:
		return "unknown_message"
	case KindTruncated:
		return "truncated"
	case KindOversize:
		return "oversize"
	default:
		return "other"
	}
}

// Kind returns the ErrorKind of err, looking through wrapping.
func Kind(err error) ErrorKind {
	var ce *ChecksumError
	if errors.As(err, &ce) {
		return KindChecksum
	}
	var ue *UnknownMessageError
	if errors.As(err, &ue) {
		return KindUnknownMessage
	}
	var te *TruncatedMessageError
	if errors.As(err, &te) {
		return KindTruncated
	}
	var oe *OversizeFrameError
	if errors.As(err, &oe) {
		return KindOversize
	}
	return KindOther
}

func needLen(id MessageID, payload []byte, want int) error {
	if len(payload) < want {
		return &TruncatedMessageError{ID: id, Want: want, Got: len(payload)}
	}
	return nil
}

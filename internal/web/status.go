package web

import (
	"sync/atomic"
	"time"

	"gdl90rx/internal/gdl90"
)

// Status holds the service-level view served at /api/status. The decode
// loop owns the gdl90.Stream and pushes copies of its stats here.
type Status struct {
	startUnixNano   int64
	lastMessageNano int64
	input           atomic.Value // string
	stats           atomic.Value // gdl90.Stats
	inputPackets    uint64
	inputBytes      uint64
}

func NewStatus() *Status {
	s := &Status{}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.input.Store("")
	s.stats.Store(gdl90.Stats{MessagesByID: map[gdl90.MessageID]int{}})
	return s
}

// SetInput records a human-readable description of the byte source.
func (s *Status) SetInput(desc string) {
	s.input.Store(desc)
}

// SetStats publishes the latest stream counters. The map must not be
// mutated afterwards; gdl90.Stream.Stats already returns a copy.
func (s *Status) SetStats(st gdl90.Stats) {
	s.stats.Store(st)
}

// SetInputCounters publishes the source's own receive counters, for inputs
// that keep them (UDP).
func (s *Status) SetInputCounters(packets, bytes uint64) {
	atomic.StoreUint64(&s.inputPackets, packets)
	atomic.StoreUint64(&s.inputBytes, bytes)
}

// MarkMessage records the arrival time of a decoded message.
func (s *Status) MarkMessage(nowUTC time.Time) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	atomic.StoreInt64(&s.lastMessageNano, nowUTC.UnixNano())
}

func (s *Status) Stats() gdl90.Stats {
	return s.stats.Load().(gdl90.Stats)
}

type StatusSnapshot struct {
	Service        string      `json:"service"`
	NowUTC         string      `json:"now_utc"`
	UptimeSec      int64       `json:"uptime_sec"`
	Input          string      `json:"input"`
	InputPackets   uint64      `json:"input_packets,omitempty"`
	InputBytes     uint64      `json:"input_bytes,omitempty"`
	LastMessageUTC string      `json:"last_message_utc,omitempty"`
	Clients        int         `json:"ws_clients"`
	Dropped        uint64      `json:"ws_dropped"`
	Stats          gdl90.Stats `json:"stats"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	last := atomic.LoadInt64(&s.lastMessageNano)

	snap := StatusSnapshot{
		Service:   "gdl90rx",
		NowUTC:    nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec: int64(nowUTC.Sub(start).Seconds()),
		Input:     s.input.Load().(string),
		Stats:     s.Stats(),

		InputPackets: atomic.LoadUint64(&s.inputPackets),
		InputBytes:   atomic.LoadUint64(&s.inputBytes),
	}
	if last != 0 {
		snap.LastMessageUTC = time.Unix(0, last).UTC().Format(time.RFC3339Nano)
	}
	return snap
}

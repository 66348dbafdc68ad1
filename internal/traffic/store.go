// Package traffic keeps the current picture of traffic and ownship built
// from decoded GDL90 messages.
package traffic

import (
	"sort"
	"sync"
	"time"

	"gdl90rx/internal/gdl90"
)

type StoreConfig struct {
	// MaxTargets limits memory use. When exceeded, oldest targets are evicted.
	MaxTargets int
	// TTL controls how long a target is kept without updates.
	TTL time.Duration
}

// Target is one traffic participant as last reported.
type Target struct {
	Report gdl90.TrafficReport `json:"report"`
	SeenAt time.Time           `json:"seen_at"`
	// Updates counts reports merged into this target.
	Updates int `json:"updates"`
}

// Ownship is the receiver's own position plus the latest geometric altitude.
type Ownship struct {
	Report         gdl90.TrafficReport `json:"report"`
	HasReport      bool                `json:"has_report"`
	GeoAltitude    int                 `json:"geo_altitude"`
	HasGeoAltitude bool                `json:"has_geo_altitude"`
	VFOM           int                 `json:"vfom"`
	HasValidVFOM   bool                `json:"has_valid_vfom"`
	SeenAt         time.Time           `json:"seen_at"`
}

type Store struct {
	mu sync.RWMutex

	cfg StoreConfig

	targets map[uint32]Target
	ownship Ownship
}

func NewStore(cfg StoreConfig) *Store {
	if cfg.MaxTargets <= 0 {
		cfg.MaxTargets = 200
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &Store{
		cfg:     cfg,
		targets: make(map[uint32]Target),
	}
}

// Apply folds a decoded message into the store and reports whether it was
// used. Messages other than traffic and ownship reports are ignored.
func (s *Store) Apply(nowUTC time.Time, m gdl90.Message) bool {
	if s == nil {
		return false
	}
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	switch v := m.(type) {
	case gdl90.TrafficReport:
		s.Upsert(nowUTC, v)
	case gdl90.OwnshipReport:
		s.mu.Lock()
		s.ownship.Report = v.TrafficReport
		s.ownship.HasReport = true
		s.ownship.SeenAt = nowUTC.UTC()
		s.mu.Unlock()
	case gdl90.OwnshipGeometricAltitude:
		s.mu.Lock()
		s.ownship.GeoAltitude = v.GeoAltitude
		s.ownship.HasGeoAltitude = true
		s.ownship.VFOM = v.VerticalFigureOfMerit
		s.ownship.HasValidVFOM = v.HasValidVFOM
		s.ownship.SeenAt = nowUTC.UTC()
		s.mu.Unlock()
	default:
		return false
	}
	return true
}

// Upsert stores a traffic report. A report without a valid position keeps
// the last known position of the target, and an empty callsign keeps the
// last known callsign.
func (s *Store) Upsert(nowUTC time.Time, r gdl90.TrafficReport) {
	if s == nil {
		return
	}
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.targets[r.ParticipantAddress]
	if ok {
		if !r.HasValidPosition && prev.Report.HasValidPosition {
			r.Latitude = prev.Report.Latitude
			r.Longitude = prev.Report.Longitude
			r.HasValidPosition = true
		}
		if r.Callsign == "" {
			r.Callsign = prev.Report.Callsign
		}
	}
	s.targets[r.ParticipantAddress] = Target{Report: r, SeenAt: nowUTC.UTC(), Updates: prev.Updates + 1}
	if len(s.targets) <= s.cfg.MaxTargets {
		return
	}

	// Evict oldest until within limit.
	for len(s.targets) > s.cfg.MaxTargets {
		var oldestAddr uint32
		var oldestAt time.Time
		first := true
		for k, v := range s.targets {
			if first || v.SeenAt.Before(oldestAt) {
				oldestAddr = k
				oldestAt = v.SeenAt
				first = false
			}
		}
		delete(s.targets, oldestAddr)
	}
}

func (s *Store) purgeLocked(nowUTC time.Time) {
	cutoff := nowUTC.UTC().Add(-s.cfg.TTL)
	for k, v := range s.targets {
		if v.SeenAt.Before(cutoff) {
			delete(s.targets, k)
		}
	}
	if !s.ownship.SeenAt.IsZero() && s.ownship.SeenAt.Before(cutoff) {
		s.ownship = Ownship{}
	}
}

// Snapshot purges stale targets and returns those with a known position,
// sorted by participant address.
func (s *Store) Snapshot(nowUTC time.Time) []Target {
	all := s.SnapshotAll(nowUTC)
	out := all[:0]
	for _, t := range all {
		if t.Report.HasValidPosition {
			out = append(out, t)
		}
	}
	return out
}

// SnapshotAll is Snapshot including targets that never reported a position.
func (s *Store) SnapshotAll(nowUTC time.Time) []Target {
	if s == nil {
		return nil
	}
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}

	s.mu.Lock()
	s.purgeLocked(nowUTC)
	out := make([]Target, 0, len(s.targets))
	for _, v := range s.targets {
		out = append(out, v)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Report.ParticipantAddress < out[j].Report.ParticipantAddress
	})
	return out
}

// Ownship returns the current ownship state, false if none is fresh.
func (s *Store) Ownship(nowUTC time.Time) (Ownship, bool) {
	if s == nil {
		return Ownship{}, false
	}
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked(nowUTC)
	o := s.ownship
	return o, o.HasReport || o.HasGeoAltitude
}

// Len returns the number of stored targets without purging.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.targets)
}

package traffic

import (
	"testing"
	"time"

	"gdl90rx/internal/gdl90"
)

func report(addr uint32, lat, lon float64, callsign string) gdl90.TrafficReport {
	return gdl90.TrafficReport{
		ID:                 gdl90.IDTrafficReport,
		ParticipantAddress: addr,
		Latitude:           lat,
		Longitude:          lon,
		HasValidPosition:   lat != 0 || lon != 0,
		Callsign:           callsign,
	}
}

func TestStoreApplyTrafficReport(t *testing.T) {
	store := NewStore(StoreConfig{MaxTargets: 10, TTL: time.Minute})
	now := time.Now()

	if !store.Apply(now, report(0xAB4549, 44.9, -122.9, "N825V")) {
		t.Fatalf("traffic report not applied")
	}
	if store.Apply(now, gdl90.Heartbeat{ID: gdl90.IDHeartbeat}) {
		t.Fatalf("heartbeat should be ignored")
	}

	snap := store.Snapshot(now)
	if len(snap) != 1 {
		t.Fatalf("expected 1 target, got %d", len(snap))
	}
	if snap[0].Report.Callsign != "N825V" || snap[0].Updates != 1 {
		t.Fatalf("unexpected target: %+v", snap[0])
	}
}

func TestStoreCarriesForwardPositionAndCallsign(t *testing.T) {
	store := NewStore(StoreConfig{MaxTargets: 10, TTL: time.Minute})
	now := time.Now()
	store.Upsert(now, report(0xABC123, 1, 2, "N77777"))

	next := report(0xABC123, 0, 0, "")
	next.Altitude = 4500
	next.HasValidAltitude = true
	store.Upsert(now.Add(time.Second), next)

	snap := store.Snapshot(now.Add(time.Second))
	if len(snap) != 1 {
		t.Fatalf("expected 1 target, got %d", len(snap))
	}
	got := snap[0].Report
	if got.Callsign != "N77777" {
		t.Fatalf("expected callsign to persist, got %q", got.Callsign)
	}
	if !got.HasValidPosition || got.Latitude != 1 || got.Longitude != 2 {
		t.Fatalf("expected position to persist, got %v,%v", got.Latitude, got.Longitude)
	}
	if got.Altitude != 4500 || snap[0].Updates != 2 {
		t.Fatalf("alt=%d updates=%d", got.Altitude, snap[0].Updates)
	}
}

func TestStorePositionlessTargetOnlyInSnapshotAll(t *testing.T) {
	store := NewStore(StoreConfig{})
	now := time.Now()
	store.Upsert(now, report(0x00ABCD, 0, 0, "N00000"))

	if got := len(store.Snapshot(now)); got != 0 {
		t.Fatalf("expected no positional targets, got %d", got)
	}
	all := store.SnapshotAll(now)
	if len(all) != 1 || all[0].Report.Callsign != "N00000" {
		t.Fatalf("unexpected detailed snapshot: %+v", all)
	}
}

func TestStoreTTLPurge(t *testing.T) {
	store := NewStore(StoreConfig{TTL: 10 * time.Second})
	now := time.Now()
	store.Upsert(now, report(1, 1, 1, "OLD"))
	store.Upsert(now.Add(8*time.Second), report(2, 2, 2, "NEW"))

	snap := store.Snapshot(now.Add(15 * time.Second))
	if len(snap) != 1 || snap[0].Report.Callsign != "NEW" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if store.Len() != 1 {
		t.Fatalf("stale target not purged: len=%d", store.Len())
	}
}

func TestStoreEvictsOldest(t *testing.T) {
	store := NewStore(StoreConfig{MaxTargets: 2, TTL: time.Hour})
	now := time.Now()
	store.Upsert(now, report(3, 1, 1, "A"))
	store.Upsert(now.Add(time.Second), report(1, 1, 1, "B"))
	store.Upsert(now.Add(2*time.Second), report(2, 1, 1, "C"))

	snap := store.Snapshot(now.Add(2 * time.Second))
	if len(snap) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(snap))
	}
	// Sorted by address; 3 was oldest and evicted.
	if snap[0].Report.ParticipantAddress != 1 || snap[1].Report.ParticipantAddress != 2 {
		t.Fatalf("unexpected addresses: %06X %06X", snap[0].Report.ParticipantAddress, snap[1].Report.ParticipantAddress)
	}
}

func TestStoreOwnship(t *testing.T) {
	store := NewStore(StoreConfig{TTL: 10 * time.Second})
	now := time.Now()

	if _, ok := store.Ownship(now); ok {
		t.Fatalf("expected no ownship yet")
	}

	own := gdl90.OwnshipReport{TrafficReport: report(0xF00000, 45, -122, "STRATUX")}
	own.ID = gdl90.IDOwnshipReport
	store.Apply(now, own)
	store.Apply(now, gdl90.OwnshipGeometricAltitude{
		ID:                    gdl90.IDOwnshipGeometricAltitude,
		GeoAltitude:           3100,
		VerticalFigureOfMerit: 10,
		HasValidVFOM:          true,
	})

	o, ok := store.Ownship(now)
	if !ok || !o.HasReport || o.Report.Callsign != "STRATUX" {
		t.Fatalf("unexpected ownship: %+v", o)
	}
	if !o.HasGeoAltitude || o.GeoAltitude != 3100 || o.VFOM != 10 || !o.HasValidVFOM {
		t.Fatalf("unexpected geo altitude: %+v", o)
	}
	if len(store.Snapshot(now)) != 0 {
		t.Fatalf("ownship must not appear as traffic")
	}

	if _, ok := store.Ownship(now.Add(11 * time.Second)); ok {
		t.Fatalf("expected ownship to expire")
	}
}

func TestStoreNilSafe(t *testing.T) {
	var store *Store
	store.Upsert(time.Now(), report(1, 1, 1, "X"))
	if store.Apply(time.Now(), report(1, 1, 1, "X")) {
		t.Fatalf("nil store applied")
	}
	if store.Snapshot(time.Now()) != nil || store.Len() != 0 {
		t.Fatalf("nil store returned data")
	}
}

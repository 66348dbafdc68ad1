package gdl90

import "fmt"

// NIC is the Navigation Integrity Category (ICD 3.5.1.6).
type NIC byte

// NACp is the Navigation Accuracy Category for Position (ICD 3.5.1.6).
type NACp byte

var nicNames = [...]string{
	"unknown",
	"< 20.0 NM",
	"< 8.0 NM",
	"< 4.0 NM",
	"< 2.0 NM",
	"< 1.0 NM",
	"< 0.6 NM",
	"< 0.2 NM",
	"< 0.1 NM",
	"HPL < 75 m and VPL < 112 m",
	"HPL < 25 m and VPL < 37.5 m",
	"HPL < 7.5 m and VPL < 11 m",
}

func (n NIC) String() string {
	if int(n) < len(nicNames) {
		return nicNames[n]
	}
	return fmt.Sprintf("unused(%d)", byte(n))
}

var nacpNames = [...]string{
	"unknown",
	"< 10.0 NM",
	"< 4.0 NM",
	"< 2.0 NM",
	"< 1.0 NM",
	"< 0.5 NM",
	"< 0.3 NM",
	"< 0.1 NM",
	"< 0.05 NM",
	"HFOM < 30 m and VFOM < 45 m",
	"HFOM < 10 m and VFOM < 15 m",
	"HFOM < 3 m and VFOM < 4 m",
}

func (n NACp) String() string {
	if int(n) < len(nacpNames) {
		return nacpNames[n]
	}
	return fmt.Sprintf("unused(%d)", byte(n))
}

const metersPerNM = 1852.0

// nacpBoundsMeters holds the 95% horizontal accuracy bound per category.
var nacpBoundsMeters = [...]float64{
	0,
	10 * metersPerNM,
	4 * metersPerNM,
	2 * metersPerNM,
	1 * metersPerNM,
	0.5 * metersPerNM,
	0.3 * metersPerNM,
	0.1 * metersPerNM,
	0.05 * metersPerNM,
	30,
	10,
	3,
}

// HorizontalAccuracyMeters returns the 95% horizontal position accuracy bound
// a NACp category guarantees, and false for unknown or unused categories.
//
// This is the receive-side inverse of Stratux's calculateNACp().
func (n NACp) HorizontalAccuracyMeters() (float64, bool) {
	if n == 0 || int(n) >= len(nacpBoundsMeters) {
		return 0, false
	}
	return nacpBoundsMeters[n], true
}

// nicBoundsMeters holds the horizontal containment radius per category.
var nicBoundsMeters = [...]float64{
	0,
	20 * metersPerNM,
	8 * metersPerNM,
	4 * metersPerNM,
	2 * metersPerNM,
	1 * metersPerNM,
	0.6 * metersPerNM,
	0.2 * metersPerNM,
	0.1 * metersPerNM,
	75,
	25,
	7.5,
}

// ContainmentRadiusMeters returns the horizontal containment radius of a NIC
// category, and false for unknown or unused categories.
func (n NIC) ContainmentRadiusMeters() (float64, bool) {
	if n == 0 || int(n) >= len(nicBoundsMeters) {
		return 0, false
	}
	return nicBoundsMeters[n], true
}

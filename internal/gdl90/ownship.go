package gdl90

const (
	ownshipGeoAltLen = 5
	hatLen           = 3

	vfomInvalid = 0x7FFF
	hatInvalid  = -32768
)

// OwnshipGeometricAltitude is a decoded Ownship Geometric Altitude (0x0B).
type OwnshipGeometricAltitude struct {
	ID MessageID

	// GeoAltitude is height above the WGS-84 ellipsoid, feet (5 ft resolution).
	GeoAltitude int

	VerticalWarning bool

	// VerticalFigureOfMerit is in meters; zero when HasValidVFOM is false.
	VerticalFigureOfMerit int
	HasValidVFOM          bool
}

func (m OwnshipGeometricAltitude) MessageID() MessageID { return m.ID }

func decodeOwnshipGeometricAltitude(msg []byte) (Message, error) {
	if err := needLen(IDOwnshipGeometricAltitude, msg, ownshipGeoAltLen); err != nil {
		return nil, err
	}
	m := OwnshipGeometricAltitude{ID: IDOwnshipGeometricAltitude}
	m.GeoAltitude = int(s16(msg[1], msg[2])) * 5
	m.VerticalWarning = msg[3]&0x80 != 0

	vfom := uint16(msg[3]&0x7F)<<8 | uint16(msg[4])
	if vfom != vfomInvalid {
		m.VerticalFigureOfMerit = int(vfom)
		m.HasValidVFOM = true
	}
	return m, nil
}

// HeightAboveTerrain is a decoded Height Above Terrain (0x09).
type HeightAboveTerrain struct {
	ID MessageID

	// Height is feet above terrain; zero when HasValidHeight is false.
	Height         int
	HasValidHeight bool
}

func (m HeightAboveTerrain) MessageID() MessageID { return m.ID }

func decodeHeightAboveTerrain(msg []byte) (Message, error) {
	if err := needLen(IDHeightAboveTerrain, msg, hatLen); err != nil {
		return nil, err
	}
	m := HeightAboveTerrain{ID: IDHeightAboveTerrain}
	if h := s16(msg[1], msg[2]); h != hatInvalid {
		m.Height = int(h)
		m.HasValidHeight = true
	}
	return m, nil
}

// Package metrics writes decoded GDL90 traffic and stream health to InfluxDB.
package metrics

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/influxdata/influxdb-client-go/api/write"
	"github.com/rs/zerolog"

	"gdl90rx/internal/gdl90"
)

// MockWriteAPI discards everything. It stands in when InfluxDB is disabled.
type MockWriteAPI struct{}

func (m *MockWriteAPI) WriteRecord(line string)       {}
func (m *MockWriteAPI) WritePoint(point *write.Point) {}
func (m *MockWriteAPI) Flush()                        {}
func (m *MockWriteAPI) Close()                        {}
func (m *MockWriteAPI) Errors() <-chan error          { return nil }

type Sink struct {
	writeAPI api.WriteAPI
	logger   zerolog.Logger
	closeFn  func()
}

// New wraps an existing WriteAPI; nil selects MockWriteAPI.
func New(writeAPI api.WriteAPI, logger zerolog.Logger) *Sink {
	if writeAPI == nil {
		writeAPI = &MockWriteAPI{}
	}
	return &Sink{writeAPI: writeAPI, logger: logger, closeFn: func() {}}
}

// NewInflux connects a non-blocking InfluxDB v2 writer.
func NewInflux(url, token, org, bucket string, logger zerolog.Logger) *Sink {
	client := influxdb2.NewClient(url, token)
	s := New(client.WriteAPI(org, bucket), logger)
	s.closeFn = client.Close
	return s
}

// Message writes points for the messages worth graphing; others are ignored.
func (s *Sink) Message(now time.Time, m gdl90.Message) {
	switch v := m.(type) {
	case gdl90.TrafficReport:
		s.writeTraffic("gdl90.traffic", now, v)
	case gdl90.OwnshipReport:
		s.writeTraffic("gdl90.ownship", now, v.TrafficReport)
	case gdl90.OwnshipGeometricAltitude:
		fields := map[string]interface{}{
			"geo_alt_ft":       v.GeoAltitude,
			"vertical_warning": v.VerticalWarning,
		}
		if v.HasValidVFOM {
			fields["vfom_m"] = v.VerticalFigureOfMerit
		}
		s.writeAPI.WritePoint(influxdb2.NewPoint("gdl90.ownship_geo_alt", map[string]string{}, fields, now))
	case gdl90.Heartbeat:
		s.writeAPI.WritePoint(influxdb2.NewPoint("gdl90.heartbeat",
			map[string]string{},
			map[string]interface{}{
				"gps_valid":        v.GPSPosValid(),
				"uplink_count":     v.UplinkCount,
				"basic_long_count": v.BasicLongCount,
			}, now))
	}
}

func (s *Sink) writeTraffic(measurement string, now time.Time, r gdl90.TrafficReport) {
	tags := map[string]string{
		"address":      r.AddressHex(),
		"address_type": r.AddressType.String(),
	}
	if r.Callsign != "" {
		tags["callsign"] = r.Callsign
	}
	fields := map[string]interface{}{
		"nic":      int(r.NIC),
		"nacp":     int(r.NACp),
		"airborne": r.Airborne(),
	}
	if r.HasValidPosition {
		fields["lat"] = r.Latitude
		fields["lon"] = r.Longitude
	}
	if r.HasValidAltitude {
		fields["alt_ft"] = r.Altitude
	}
	if r.HasValidHorizontalVelocity {
		fields["speed_kt"] = r.HorizontalVelocity
		fields["track_deg"] = r.TrackHeading
	}
	if r.HasValidVerticalVelocity {
		fields["vvel_fpm"] = r.VerticalVelocity
	}
	s.writeAPI.WritePoint(influxdb2.NewPoint(measurement, tags, fields, now))
}

// Error records one dropped frame, tagged by error kind.
func (s *Sink) Error(now time.Time, err error) {
	s.writeAPI.WritePoint(influxdb2.NewPoint("gdl90.error",
		map[string]string{"kind": gdl90.Kind(err).String()},
		map[string]interface{}{"count": 1},
		now))
}

// Stats records cumulative stream counters.
func (s *Sink) Stats(now time.Time, st gdl90.Stats) {
	s.writeAPI.WritePoint(influxdb2.NewPoint("gdl90.stream",
		map[string]string{},
		map[string]interface{}{
			"bytes":            int64(st.Bytes),
			"frames":           int64(st.Frames),
			"messages":         int64(st.Messages),
			"checksum_errors":  int64(st.ChecksumErrors),
			"unknown_messages": int64(st.UnknownMessages),
			"truncated_errors": int64(st.TruncatedErrors),
			"oversize_frames":  int64(st.OversizeFrames),
		}, now))
}

// Run logs asynchronous write errors until ctx is done, then flushes and
// closes the writer.
func (s *Sink) Run(ctx context.Context) error {
	errs := s.writeAPI.Errors()
	for {
		select {
		case <-ctx.Done():
			s.writeAPI.Flush()
			s.closeFn()
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn().Err(err).Msg("influxdb write failed")
		}
	}
}

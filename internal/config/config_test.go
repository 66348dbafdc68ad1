package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_RequiresInputType(t *testing.T) {
	path := writeTempConfig(t, "input: {}\n")
	_, err := Load(path)
	requireErrEq(t, err, "input.type is required")
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "input:\n  type: udp\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log.level=%q want info", cfg.Log.Level)
	}
	if cfg.Input.UDP.Listen != ":4000" || cfg.Input.UDP.MaxPacket != 2048 {
		t.Fatalf("udp=%+v", cfg.Input.UDP)
	}
	if cfg.Traffic.TTL != 30*time.Second || cfg.Traffic.MaxTargets != 200 {
		t.Fatalf("traffic=%+v", cfg.Traffic)
	}
	if cfg.Monitor.Enable || cfg.Influx.Enable || cfg.Record.Enable {
		t.Fatalf("optional outputs should default off")
	}
}

func TestLoad_SerialDefaults(t *testing.T) {
	cfg, err := Parse([]byte("input:\n  type: serial\n  serial:\n    port: /dev/ttyUSB0\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Input.Serial.Baud != 115200 || cfg.Input.Serial.ReadTimeout != 200*time.Millisecond {
		t.Fatalf("serial=%+v", cfg.Input.Serial)
	}
}

func TestLoad_ReplayDefaults(t *testing.T) {
	cfg, err := Parse([]byte("input:\n  type: replay\n  replay:\n    path: cap.log\n    loop: true\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Input.Replay.Speed != 1 || !cfg.Input.Replay.Loop {
		t.Fatalf("replay=%+v", cfg.Input.Replay)
	}
}

func TestLoad_MonitorListenDefault(t *testing.T) {
	cfg, err := Parse([]byte("input:\n  type: stdin\nmonitor:\n  enable: true\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Monitor.Listen != ":8090" {
		t.Fatalf("monitor.listen=%q", cfg.Monitor.Listen)
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "UnknownInputType",
			yaml: "input:\n  type: carrier_pigeon\n",
			want: "input.type must be one of udp, serial, replay, stdin",
		},
		{
			name: "SerialRequiresPort",
			yaml: "input:\n  type: serial\n",
			want: "input.serial.port is required when input.type is 'serial'",
		},
		{
			name: "ReplayRequiresPath",
			yaml: "input:\n  type: replay\n",
			want: "input.replay.path is required when input.type is 'replay'",
		},
		{
			name: "ReplayNegativeSpeed",
			yaml: "input:\n  type: replay\n  replay:\n    path: a.log\n    speed: -2\n",
			want: "input.replay.speed must be > 0",
		},
		{
			name: "RecordRequiresPath",
			yaml: "input:\n  type: udp\nrecord:\n  enable: true\n",
			want: "record.path is required when record.enable is true",
		},
		{
			name: "RecordWithReplay",
			yaml: "input:\n  type: replay\n  replay:\n    path: a.log\nrecord:\n  enable: true\n  path: b.log\n",
			want: "record cannot be used with input.type=replay",
		},
		{
			name: "InfluxRequiresURL",
			yaml: "input:\n  type: udp\ninflux:\n  enable: true\n  bucket: gdl90\n",
			want: "influx.url is required when influx.enable is true",
		},
		{
			name: "InfluxRequiresBucket",
			yaml: "input:\n  type: udp\ninflux:\n  enable: true\n  url: http://localhost:8086\n",
			want: "influx.bucket is required when influx.enable is true",
		},
		{
			name: "BadLogLevel",
			yaml: "log:\n  level: chatty\ninput:\n  type: udp\n",
			want: "log.level must be one of debug, info, warn, error",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tc.yaml))
			requireErrEq(t, err, tc.want)
		})
	}
}

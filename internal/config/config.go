package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Input types.
const (
	InputUDP    = "udp"
	InputSerial = "serial"
	InputReplay = "replay"
	InputStdin  = "stdin"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Input   InputConfig   `yaml:"input"`
	Record  RecordConfig  `yaml:"record"`
	Traffic TrafficConfig `yaml:"traffic"`
	Monitor MonitorConfig `yaml:"monitor"`
	Influx  InfluxConfig  `yaml:"influx"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type InputConfig struct {
	Type   string       `yaml:"type"`
	UDP    UDPConfig    `yaml:"udp"`
	Serial SerialConfig `yaml:"serial"`
	Replay ReplayConfig `yaml:"replay"`
}

type UDPConfig struct {
	Listen    string `yaml:"listen"`
	MaxPacket int    `yaml:"max_packet"`
}

type SerialConfig struct {
	Port        string        `yaml:"port"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type ReplayConfig struct {
	Path  string  `yaml:"path"`
	Speed float64 `yaml:"speed"`
	Loop  bool    `yaml:"loop"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type TrafficConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxTargets int           `yaml:"max_targets"`
}

type MonitorConfig struct {
	Enable bool   `yaml:"enable"`
	Listen string `yaml:"listen"`
}

type InfluxConfig struct {
	Enable bool   `yaml:"enable"`
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes YAML config bytes, applies defaults and validates.
func Parse(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	switch cfg.Log.Level {
	case "":
		cfg.Log.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}

	switch cfg.Input.Type {
	case "":
		return fmt.Errorf("input.type is required")
	case InputUDP:
		if cfg.Input.UDP.Listen == "" {
			cfg.Input.UDP.Listen = ":4000"
		}
		if cfg.Input.UDP.MaxPacket <= 0 {
			cfg.Input.UDP.MaxPacket = 2048
		}
	case InputSerial:
		if cfg.Input.Serial.Port == "" {
			return fmt.Errorf("input.serial.port is required when input.type is 'serial'")
		}
		if cfg.Input.Serial.Baud <= 0 {
			cfg.Input.Serial.Baud = 115200
		}
		if cfg.Input.Serial.ReadTimeout <= 0 {
			cfg.Input.Serial.ReadTimeout = 200 * time.Millisecond
		}
	case InputReplay:
		if cfg.Input.Replay.Path == "" {
			return fmt.Errorf("input.replay.path is required when input.type is 'replay'")
		}
		if cfg.Input.Replay.Speed == 0 {
			cfg.Input.Replay.Speed = 1
		}
		if cfg.Input.Replay.Speed < 0 {
			return fmt.Errorf("input.replay.speed must be > 0")
		}
	case InputStdin:
	default:
		return fmt.Errorf("input.type must be one of udp, serial, replay, stdin")
	}

	if cfg.Record.Enable {
		if cfg.Record.Path == "" {
			return fmt.Errorf("record.path is required when record.enable is true")
		}
		if cfg.Input.Type == InputReplay {
			return fmt.Errorf("record cannot be used with input.type=replay")
		}
	}

	if cfg.Traffic.TTL <= 0 {
		cfg.Traffic.TTL = 30 * time.Second
	}
	if cfg.Traffic.MaxTargets <= 0 {
		cfg.Traffic.MaxTargets = 200
	}

	if cfg.Monitor.Enable && cfg.Monitor.Listen == "" {
		cfg.Monitor.Listen = ":8090"
	}

	if cfg.Influx.Enable {
		if cfg.Influx.URL == "" {
			return fmt.Errorf("influx.url is required when influx.enable is true")
		}
		if cfg.Influx.Bucket == "" {
			return fmt.Errorf("influx.bucket is required when influx.enable is true")
		}
	}
	return nil
}

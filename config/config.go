package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mklimuk/uvindex/modbus"
	"github.com/mklimuk/uvindex/uv"
)

const (
	AdapterGeneric = "generic"
	AdapterNanoPi  = "nanopi"
	AdapterMCP2221 = "mcp2221"
	AdapterModbus  = "modbus"
	AdapterMock    = "mock"
)

type Config struct {
	Adapter     string        `yaml:"adapter"`
	IndexSource string        `yaml:"index_source"`
	I2C         I2CConfig     `yaml:"i2c"`
	Modbus      ModbusConfig  `yaml:"modbus"`
	Monitor     MonitorConfig `yaml:"monitor"`
}

type I2CConfig struct {
	Device   string `yaml:"device"`
	Bus      int    `yaml:"bus"`
	Address  uint8  `yaml:"address"`
	SpeedKHz int    `yaml:"speed_khz"`
}

type ModbusConfig struct {
	Port    string        `yaml:"port"`
	Unit    uint8         `yaml:"unit"`
	Timeout time.Duration `yaml:"timeout"`
}

type MonitorConfig struct {
	Name     string        `yaml:"name"`
	Interval time.Duration `yaml:"interval"`
	Listen   string        `yaml:"listen"`
}

func Default() Config {
	return Config{
		Adapter:     AdapterGeneric,
		IndexSource: uv.IndexComputed.String(),
		I2C: I2CConfig{
			Device:   "/dev/i2c-1",
			Bus:      0,
			Address:  uv.DefaultAddress,
			SpeedKHz: 100,
		},
		Modbus: ModbusConfig{
			Port:    "/dev/ttyUSB0",
			Unit:    uv.DefaultAddress,
			Timeout: modbus.DefaultTimeout,
		},
		Monitor: MonitorConfig{
			Name:     "uv",
			Interval: 5 * time.Second,
		},
	}
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Adapter {
	case AdapterGeneric, AdapterNanoPi, AdapterMCP2221, AdapterMock:
	case AdapterModbus:
		if c.Modbus.Port == "" {
			errs = append(errs, errors.New("modbus.port is required"))
		}
		if c.Modbus.Unit == 0 || c.Modbus.Unit > 247 {
			errs = append(errs, fmt.Errorf("modbus.unit %d out of range 1..247", c.Modbus.Unit))
		}
		if c.Modbus.Timeout <= 0 {
			errs = append(errs, errors.New("modbus.timeout must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown adapter %q", c.Adapter))
	}
	if c.Adapter == AdapterGeneric && c.I2C.Device == "" {
		errs = append(errs, errors.New("i2c.device is required"))
	}
	if c.I2C.Address > 0x7F {
		errs = append(errs, fmt.Errorf("i2c.address %#x is not a 7-bit address", c.I2C.Address))
	}
	if _, err := uv.ParseIndexSource(c.IndexSource); err != nil {
		errs = append(errs, err)
	}
	if c.Monitor.Interval <= 0 {
		errs = append(errs, errors.New("monitor.interval must be positive"))
	}
	return errors.Join(errs...)
}

// Source returns the parsed index source. It assumes Validate passed.
func (c Config) Source() uv.IndexSource {
	src, _ := uv.ParseIndexSource(c.IndexSource)
	return src
}

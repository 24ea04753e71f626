package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/uvindex/uv"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "uvsensor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uv.IndexComputed, cfg.Source())
	assert.Equal(t, uint8(0x23), cfg.I2C.Address)
	assert.Equal(t, uint8(0x23), cfg.Modbus.Unit)
	assert.Equal(t, 200*time.Millisecond, cfg.Modbus.Timeout)
}

func TestLoad_ModbusOverrides(t *testing.T) {
	path := writeConfig(t, `
adapter: modbus
index_source: register
modbus:
  port: /dev/ttyAMA0
  timeout: 500ms
monitor:
  name: roof
  interval: 30s
  listen: ":9100"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, AdapterModbus, cfg.Adapter)
	assert.Equal(t, uv.IndexRegister, cfg.Source())
	assert.Equal(t, "/dev/ttyAMA0", cfg.Modbus.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Modbus.Timeout)
	// untouched fields keep defaults
	assert.Equal(t, uint8(0x23), cfg.Modbus.Unit)
	assert.Equal(t, "/dev/i2c-1", cfg.I2C.Device)
	assert.Equal(t, "roof", cfg.Monitor.Name)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, ":9100", cfg.Monitor.Listen)
}

func TestLoad_I2CAddress(t *testing.T) {
	path := writeConfig(t, `
adapter: nanopi
i2c:
  bus: 2
  address: 0x38
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, AdapterNanoPi, cfg.Adapter)
	assert.Equal(t, 2, cfg.I2C.Bus)
	assert.Equal(t, uint8(0x38), cfg.I2C.Address)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{"unknown field", "adaptr: mock\n", "adaptr"},
		{"unknown adapter", "adapter: spi\n", "unknown adapter"},
		{"bad source", "index_source: guess\n", "unknown index source"},
		{"bad unit", "adapter: modbus\nmodbus:\n  unit: 0\n", "modbus.unit"},
		{"bad timeout", "adapter: modbus\nmodbus:\n  timeout: 0s\n", "modbus.timeout"},
		{"bad address", "i2c:\n  address: 0x80\n", "7-bit"},
		{"bad interval", "monitor:\n  interval: 0s\n", "monitor.interval"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, test.content))
			assert.ErrorContains(t, err, test.errPart)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

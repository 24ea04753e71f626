package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/uvindex"
	"github.com/mklimuk/uvindex/adapter"
	"github.com/mklimuk/uvindex/cmd/uvsensor/console"
	"github.com/mklimuk/uvindex/config"
	"github.com/mklimuk/uvindex/i2c"
	"github.com/mklimuk/uvindex/modbus"
	"github.com/mklimuk/uvindex/uv"
)

// connection flags shared by commands talking to a sensor
var sensorFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adapter",
		Aliases: []string{"a"},
		Usage:   "generic, nanopi, mcp2221, modbus or mock",
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Usage:   "host I2C bus device (generic adapter)",
	},
	&cli.IntFlag{
		Name:  "bus",
		Usage: "I2C bus number (nanopi adapter)",
	},
	&cli.StringFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Usage:   "serial port (modbus adapter)",
	},
	&cli.StringFlag{
		Name:  "source",
		Usage: "UV index source: computed or register",
	},
}

// loadConfig reads the optional config file and applies command line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("device") {
		cfg.I2C.Device = c.String("device")
	}
	if c.IsSet("bus") {
		cfg.I2C.Bus = c.Int("bus")
	}
	if c.IsSet("port") {
		cfg.Modbus.Port = c.String("port")
	}
	if c.IsSet("source") {
		cfg.IndexSource = c.String("source")
	}
	return cfg, cfg.Validate()
}

func noopClose() error { return nil }

// openBus opens the I2C transport selected in cfg.
func openBus(cfg config.Config) (uvindex.I2CBus, func() error, error) {
	switch cfg.Adapter {
	case config.AdapterGeneric:
		bus, err := i2c.NewGenericBus(cfg.I2C.Device)
		if err != nil {
			return nil, nil, err
		}
		if cfg.I2C.SpeedKHz > 0 {
			if err := bus.SetSpeed(physic.Frequency(cfg.I2C.SpeedKHz) * physic.KiloHertz); err != nil {
				slog.Warn("keeping default bus speed", "error", err)
			}
		}
		return bus, bus.Close, nil
	case config.AdapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		if err := npi.I2cBusAdaptor.Connect(); err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		bus := i2c.NewGobotBus(npi, cfg.I2C.Bus)
		return bus, func() error {
			return errors.Join(bus.Close(), npi.I2cBusAdaptor.Finalize())
		}, nil
	case config.AdapterMCP2221:
		a := adapter.NewMCP2221(slog.Default())
		if err := a.Init(); err != nil {
			return nil, nil, err
		}
		return a, noopClose, nil
	default:
		return nil, nil, fmt.Errorf("adapter %q is not an I2C adapter", cfg.Adapter)
	}
}

// openSensor builds the sensor driver for cfg. The returned close function releases
// the underlying transport.
func openSensor(ctx context.Context, cfg config.Config) (uv.Reader, func() error, error) {
	logger := slog.Default()
	switch cfg.Adapter {
	case config.AdapterMock:
		return uv.NewSimulatedSensor(), noopClose, nil
	case config.AdapterModbus:
		client := modbus.NewRTUClient(cfg.Modbus.Port,
			modbus.WithTimeout(cfg.Modbus.Timeout),
			modbus.WithLogger(logger),
		)
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		s := uv.NewModbus(client,
			uv.WithAddress(cfg.Modbus.Unit),
			uv.WithResponseTimeout(cfg.Modbus.Timeout),
			uv.WithIndexSource(cfg.Source()),
			uv.WithLogger(logger),
		)
		return s, client.Close, nil
	default:
		bus, closeBus, err := openBus(cfg)
		if err != nil {
			return nil, nil, err
		}
		s := uv.NewI2C(bus,
			uv.WithAddress(cfg.I2C.Address),
			uv.WithIndexSource(cfg.Source()),
			uv.WithLogger(logger),
		)
		return s, closeBus, nil
	}
}

func closeWithLog(closeFn func() error) {
	if err := closeFn(); err != nil {
		console.Errorf("error closing transport: %s", console.Red(err))
	}
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/uvindex/cmd/uvsensor/console"
	"github.com/mklimuk/uvindex/config"
	"github.com/mklimuk/uvindex/i2c"
	"github.com/mklimuk/uvindex/uv"
)

var detectCmd = cli.Command{
	Name:  "detect",
	Usage: "scan the I2C bus and probe the UV sensor",
	Flags: sensorFlags,
	Subcommands: cli.Commands{
		&detectBusesCmd,
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(console.CodeConfig, "configuration error: %s", console.Red(err))
		}
		ctx := c.Context
		if cfg.Adapter != config.AdapterModbus && cfg.Adapter != config.AdapterMock {
			bus, closeFn, err := openBus(cfg)
			if err != nil {
				return console.Exit(console.CodeError, "adapter initialization error: %s", console.Red(err))
			}
			found := i2c.Scan(ctx, bus, i2c.FirstAddress, i2c.LastAddress)
			closeWithLog(closeFn)
			if len(found) == 0 {
				console.Warnf("no devices answered on the bus")
			}
			for _, addr := range found {
				note := ""
				if addr == cfg.I2C.Address {
					note = console.Green("(configured UV sensor address)")
				}
				console.PInfof(console.PictoPin, "%s %s", console.White(fmt.Sprintf("%#02x", addr)), note)
			}
		}

		sensor, closeFn, err := openSensor(ctx, cfg)
		if err != nil {
			return console.Exit(console.CodeError, "adapter initialization error: %s", console.Red(err))
		}
		defer closeWithLog(closeFn)
		if err := sensor.Begin(ctx); err != nil {
			return console.Exit(console.CodeNotDetected, "UV sensor not detected: %s", console.Red(err))
		}
		console.PInfof(console.PictoSun, "%s", detectedMessage(cfg))
		return nil
	},
}

var detectBusesCmd = cli.Command{
	Name:  "buses",
	Usage: "list I2C buses registered on the host",
	Action: func(c *cli.Context) error {
		names, err := i2c.ListBuses()
		if err != nil {
			return console.Exit(console.CodeError, "host initialization error: %s", console.Red(err))
		}
		w := tabwriter.NewWriter(os.Stdout, 16, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "#\tBUS\n")
		for i, name := range names {
			_, _ = fmt.Fprintf(w, "%d\t%s\n", i, name)
		}
		_ = w.Flush()
		return nil
	},
}

func detectedMessage(cfg config.Config) string {
	switch cfg.Adapter {
	case config.AdapterModbus:
		return fmt.Sprintf("UV sensor detected on unit %#02x (product id %#04x)", cfg.Modbus.Unit, uv.ProductID)
	case config.AdapterMock:
		return "simulated UV sensor"
	default:
		return fmt.Sprintf("UV sensor acknowledged at %#02x", cfg.I2C.Address)
	}
}

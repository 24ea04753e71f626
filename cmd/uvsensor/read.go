package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/uvindex/cmd/uvsensor/console"
	"github.com/mklimuk/uvindex/uv"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

var readCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "read raw value, UV index and risk level once",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   formatText,
			Usage:   "output format: text or yaml",
		},
	}, sensorFlags...),
	Action: func(c *cli.Context) error {
		format := c.String("format")
		if format != formatText && format != formatYAML {
			return console.Exit(console.CodeConfig, "unknown format %q", format)
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(console.CodeConfig, "configuration error: %s", console.Red(err))
		}
		ctx := c.Context
		sensor, closeFn, err := openSensor(ctx, cfg)
		if err != nil {
			return console.Exit(console.CodeError, "adapter initialization error: %s", console.Red(err))
		}
		defer closeWithLog(closeFn)

		if err := sensor.Begin(ctx); err != nil {
			return console.Exit(console.CodeNotDetected, "sensor not detected: %s", console.Red(err))
		}
		reading, err := sensor.Read(ctx)
		if err != nil {
			return console.Exit(console.CodeError, "error reading sensor: %s", console.Red(err))
		}
		if err := printReading(console.Writer(), format, reading); err != nil {
			return console.Exit(console.CodeError, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}

func printReading(w io.Writer, format string, r uv.Reading) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		_, err := fmt.Fprintf(w, "%s raw: %s\tindex: %s\trisk: %s\n",
			console.PictoSun,
			console.White(r.Raw),
			console.Bold(r.Index),
			console.Risk(r.Risk, r.RiskName()),
		)
		return err
	default:
		return errors.New("unknown format " + format)
	}
}

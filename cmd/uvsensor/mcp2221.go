package main

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/uvindex/adapter"
	"github.com/mklimuk/uvindex/cmd/uvsensor/console"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "MCP2221 USB bridge maintenance",
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
	},
}

var mcp2221StatusCmd = cli.Command{
	Name:  "status",
	Usage: "print the bridge I2C engine status",
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(nil)
		status, err := a.Status(c.Context)
		if err != nil {
			return console.Exit(console.CodeError, "adapter communication error: %s", console.Red(err))
		}
		return encodeStatus(status)
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel the pending transfer and free the bus",
	Action: func(c *cli.Context) error {
		a := adapter.NewMCP2221(nil)
		status, err := a.ReleaseBus(c.Context)
		if err != nil {
			return console.Exit(console.CodeError, "adapter communication error: %s", console.Red(err))
		}
		return encodeStatus(status)
	},
}

func encodeStatus(status *adapter.MCP2221Status) error {
	enc := yaml.NewEncoder(console.Writer())
	if err := enc.Encode(status); err != nil {
		return console.Exit(console.CodeError, "encoding error: %s", console.Red(err))
	}
	if err := enc.Close(); err != nil {
		return console.Exit(console.CodeError, "encoding error: %s", console.Red(err))
	}
	return nil
}

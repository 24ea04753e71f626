package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/uvindex/cmd/uvsensor/console"
	"github.com/mklimuk/uvindex/snsctx"
)

// set at build time by the dev tool
var (
	AppVersion = "dev"
	GitCommit  string
	GitBranch  string
	BuildTime  string
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := cli.NewApp()
	app.Name = "uvsensor"
	app.EnableBashCompletion = true
	app.Version = versionString()
	app.Usage = "UV index sensor cli"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable verbose logging and frame dumps",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to a YAML config file",
			EnvVars: []string{"UVSENSOR_CONFIG"},
		},
	}
	app.Before = func(c *cli.Context) error {
		charm := chlog.NewWithOptions(os.Stderr, chlog.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if c.Bool("verbose") {
			charm.SetLevel(chlog.DebugLevel)
		}
		slog.SetDefault(slog.New(charm))
		c.Context = snsctx.SetVerbose(c.Context, c.Bool("verbose"))
		return nil
	}
	app.Commands = cli.Commands{
		&readCmd,
		&monitorCmd,
		&detectCmd,
		&usbCmd,
		&mcp2221Cmd,
	}
	err := app.Run(args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			return exerr.ExitCode()
		}
		console.Errorf("%s", err)
		return console.CodeError
	}
	return 0
}

func versionString() string {
	if GitCommit == "" {
		return AppVersion
	}
	return fmt.Sprintf("%s-%s-%s (%s)", AppVersion, BuildTime, GitCommit, GitBranch)
}

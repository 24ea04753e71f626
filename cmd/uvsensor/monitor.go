package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/uvindex/cmd/uvsensor/console"
	"github.com/mklimuk/uvindex/config"
	"github.com/mklimuk/uvindex/monitor"
	"github.com/mklimuk/uvindex/uv"
)

var monitorCmd = cli.Command{
	Name:  "monitor",
	Usage: "poll the sensor and expose prometheus metrics",
	Flags: append([]cli.Flag{
		&cli.DurationFlag{
			Name:    "interval",
			Aliases: []string{"i"},
			Usage:   "polling interval",
		},
		&cli.StringFlag{
			Name:    "listen",
			Aliases: []string{"l"},
			Usage:   "metrics listen address, e.g. :9101",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "sensor label used in metrics",
		},
		&cli.BoolFlag{
			Name:  "yes",
			Usage: "fall back to simulated readings without asking",
		},
	}, sensorFlags...),
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(console.CodeConfig, "configuration error: %s", console.Red(err))
		}
		if c.IsSet("interval") {
			cfg.Monitor.Interval = c.Duration("interval")
		}
		if c.IsSet("listen") {
			cfg.Monitor.Listen = c.String("listen")
		}
		if c.IsSet("name") {
			cfg.Monitor.Name = c.String("name")
		}
		if err := cfg.Validate(); err != nil {
			return console.Exit(console.CodeConfig, "configuration error: %s", console.Red(err))
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		sensor, closeFn, err := beginOrSimulate(ctx, cfg, c.Bool("yes"))
		if err != nil {
			return err
		}
		defer closeWithLog(closeFn)

		reg := prometheus.NewRegistry()
		metrics, err := monitor.NewMetrics(reg)
		if err != nil {
			return console.Exit(console.CodeError, "metrics registration error: %s", console.Red(err))
		}
		if cfg.Monitor.Listen != "" {
			srv := &http.Server{
				Addr:              cfg.Monitor.Listen,
				Handler:           metricsMux(reg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go serveMetrics(ctx, srv)
		}

		m := monitor.New(sensor,
			monitor.WithName(cfg.Monitor.Name),
			monitor.WithInterval(cfg.Monitor.Interval),
			monitor.WithMetrics(metrics),
			monitor.WithLogger(slog.Default()),
		)
		m.Run(ctx, func(r uv.Reading) {
			_ = printReading(console.Writer(), formatText, r)
		})
		console.PInfof(console.PictoStop, "monitor stopped")
		return nil
	},
}

// beginOrSimulate opens and probes the configured sensor. When the sensor is not
// detected the user may continue with simulated readings. The returned function
// releases the transport and must be called once reading has stopped.
func beginOrSimulate(ctx context.Context, cfg config.Config, assumeYes bool) (uv.Reader, func() error, error) {
	sensor, closeFn, err := openSensor(ctx, cfg)
	if err == nil {
		err = sensor.Begin(ctx)
		if err == nil {
			return sensor, closeFn, nil
		}
		closeWithLog(closeFn)
	}
	console.Warnf("sensor unavailable: %s", err)
	useMock := assumeYes
	if !useMock {
		var perr error
		useMock, perr = console.Confirm("continue with simulated readings?", console.No)
		if perr != nil {
			return nil, nil, console.Exit(console.CodeNotDetected, "sensor not detected: %s", console.Red(err))
		}
	}
	if !useMock {
		return nil, nil, console.Exit(console.CodeNotDetected, "sensor not detected: %s", console.Red(err))
	}
	console.PInfof(console.PictoGhost, "using simulated sensor")
	return uv.NewSimulatedSensor(), noopClose, nil
}

func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

func serveMetrics(ctx context.Context, srv *http.Server) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	slog.Info("serving metrics", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server failed", "error", err)
	}
}

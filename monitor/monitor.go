package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/mklimuk/uvindex/uv"
)

const DefaultInterval = 5 * time.Second

// Handler receives every successful reading.
type Handler func(uv.Reading)

type Opts struct {
	Name     string
	Interval time.Duration
	Metrics  *Metrics
	Logger   *slog.Logger
}

type Opt func(*Opts)

func WithName(name string) Opt {
	return func(o *Opts) {
		o.Name = name
	}
}

func WithInterval(interval time.Duration) Opt {
	return func(o *Opts) {
		o.Interval = interval
	}
}

func WithMetrics(m *Metrics) Opt {
	return func(o *Opts) {
		o.Metrics = m
	}
}

func WithLogger(logger *slog.Logger) Opt {
	return func(o *Opts) {
		o.Logger = logger
	}
}

// Monitor polls a UV sensor at a fixed interval.
type Monitor struct {
	sensor uv.Reader
	config Opts
}

func New(sensor uv.Reader, opts ...Opt) *Monitor {
	config := Opts{
		Name:     "uv",
		Interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Monitor{sensor: sensor, config: config}
}

// Run reads the sensor immediately and then on every tick until ctx is cancelled.
// Read errors are logged and counted; they do not stop the loop.
func (m *Monitor) Run(ctx context.Context, handle Handler) {
	logger := m.config.Logger.With("sensor", m.config.Name)
	logger.InfoContext(ctx, "starting uv monitor", "interval", m.config.Interval)

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	m.readOnce(ctx, logger, handle)
	for {
		select {
		case <-ticker.C:
			m.readOnce(ctx, logger, handle)
		case <-ctx.Done():
			logger.InfoContext(ctx, "stopping uv monitor")
			return
		}
	}
}

func (m *Monitor) readOnce(ctx context.Context, logger *slog.Logger, handle Handler) {
	reading, err := m.sensor.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.ErrorContext(ctx, "failed to read sensor", "error", err)
		if m.config.Metrics != nil {
			m.config.Metrics.ReadFailed(m.config.Name)
		}
		return
	}
	logger.DebugContext(ctx, "uv reading",
		"raw", reading.Raw,
		"index", reading.Index,
		"risk", reading.RiskName(),
	)
	if m.config.Metrics != nil {
		m.config.Metrics.Observe(m.config.Name, reading)
	}
	if handle != nil {
		handle(reading)
	}
}

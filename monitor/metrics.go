package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mklimuk/uvindex/uv"
)

// Metrics exposes the latest reading of each monitored sensor.
type Metrics struct {
	raw        *prometheus.GaugeVec
	index      *prometheus.GaugeVec
	risk       *prometheus.GaugeVec
	readErrors *prometheus.CounterVec
}

func newGauge(name string, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		[]string{"sensor"},
	)
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		raw:   newGauge("uv_raw", "Raw UV sensor register value"),
		index: newGauge("uv_index", "UV index (0-11)"),
		risk:  newGauge("uv_risk_level", "UV risk level (0 low .. 4 extreme)"),
		readErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uv_read_errors_total",
				Help: "Number of failed sensor reads",
			},
			[]string{"sensor"},
		),
	}
	for _, c := range []prometheus.Collector{m.raw, m.index, m.risk, m.readErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Observe(sensor string, r uv.Reading) {
	m.raw.WithLabelValues(sensor).Set(float64(r.Raw))
	m.index.WithLabelValues(sensor).Set(float64(r.Index))
	m.risk.WithLabelValues(sensor).Set(float64(r.Risk))
}

func (m *Metrics) ReadFailed(sensor string) {
	m.readErrors.WithLabelValues(sensor).Inc()
}

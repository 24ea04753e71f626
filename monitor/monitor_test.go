package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/uvindex/uv"
)

func TestMonitor_ReadsAndPublishes(t *testing.T) {
	raws := []uint16{0, 700, 1079}
	calls := 0
	sensor := uv.NewMockUVSensor(func(ctx context.Context) (uint16, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		raw := raws[calls%len(raws)]
		calls++
		return raw, nil
	})

	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var readings []uv.Reading
	m := New(sensor, WithName("roof"), WithInterval(5*time.Millisecond), WithMetrics(metrics))
	m.Run(ctx, func(r uv.Reading) {
		readings = append(readings, r)
		if len(readings) == len(raws) {
			cancel()
		}
	})

	require.Len(t, readings, 3)
	assert.Equal(t, uint16(0), readings[0].Index)
	assert.Equal(t, uint16(0), readings[0].Risk)
	assert.Equal(t, uint16(7), readings[1].Index)
	assert.Equal(t, uint16(2), readings[1].Risk)
	assert.Equal(t, uint16(11), readings[2].Index)
	assert.Equal(t, uint16(4), readings[2].Risk)

	assert.Equal(t, float64(1079), testutil.ToFloat64(metrics.raw.WithLabelValues("roof")))
	assert.Equal(t, float64(11), testutil.ToFloat64(metrics.index.WithLabelValues("roof")))
	assert.Equal(t, float64(4), testutil.ToFloat64(metrics.risk.WithLabelValues("roof")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.readErrors.WithLabelValues("roof")))
}

func TestMonitor_ReadErrorsDoNotStopLoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	calls := 0
	sensor := uv.NewMockUVSensor(func(ctx context.Context) (uint16, error) {
		calls++
		if calls == 3 {
			cancel()
		}
		return 0, errors.New("modbus: response timeout")
	})
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	handled := 0
	New(sensor, WithInterval(time.Millisecond), WithMetrics(metrics)).Run(ctx, func(uv.Reading) {
		handled++
	})

	assert.Equal(t, 0, handled)
	assert.GreaterOrEqual(t, calls, 3)
	// the read that raced with cancellation is not counted
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.readErrors.WithLabelValues("uv")))
}

func TestMonitor_NilHandlerAndMetrics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sensor := uv.NewMockUVSensor(func(context.Context) (uint16, error) {
		cancel()
		return 300, nil
	})
	done := make(chan struct{})
	go func() {
		New(sensor, WithInterval(time.Hour)).Run(ctx, nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}
}

func TestNew_Defaults(t *testing.T) {
	m := New(uv.NewSimulatedSensor(), WithInterval(-time.Second))
	assert.Equal(t, DefaultInterval, m.config.Interval)
	assert.Equal(t, "uv", m.config.Name)
	assert.NotNil(t, m.config.Logger)
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

package uv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockUVSensor_StaticValue(t *testing.T) {
	sensor := NewMockUVSensor(func(ctx context.Context) (uint16, error) {
		return 700, nil
	})
	ctx := context.Background()

	require.NoError(t, sensor.Begin(ctx))

	raw, err := sensor.ReadUVOriginalData(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(700), raw)

	index, err := sensor.ReadUVIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), index)

	risk, err := sensor.ReadRiskLevel(ctx)
	require.NoError(t, err)
	assert.Equal(t, RiskHigh, risk)

	reading, err := sensor.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(700), reading.Raw)
	assert.Equal(t, uint16(7), reading.Index)
	assert.Equal(t, "high", reading.RiskName())
}

func TestMockUVSensor_ErrorHandling(t *testing.T) {
	errSensor := errors.New("sensor malfunction")
	sensor := NewMockUVSensor(func(ctx context.Context) (uint16, error) {
		return 0, errSensor
	})
	ctx := context.Background()

	_, err := sensor.ReadUVIndex(ctx)
	assert.ErrorIs(t, err, errSensor)
	_, err = sensor.ReadRiskLevel(ctx)
	assert.ErrorIs(t, err, errSensor)
	_, err = sensor.Read(ctx)
	assert.ErrorIs(t, err, errSensor)
}

func TestMockUVSensor_FailBegin(t *testing.T) {
	sensor := NewMockUVSensor(func(ctx context.Context) (uint16, error) {
		return 0, nil
	}).FailBegin(ErrNotDetected)
	assert.ErrorIs(t, sensor.Begin(context.Background()), ErrNotDetected)
}

func TestSimulatedSensor_StepsThroughDay(t *testing.T) {
	sensor := NewSimulatedSensor()
	ctx := context.Background()

	seen := make([]uint16, 0, len(simulatedDay))
	for i := 0; i < len(simulatedDay)*samplesPerStep; i++ {
		raw, err := sensor.ReadUVOriginalData(ctx)
		require.NoError(t, err)
		if i%samplesPerStep == 0 {
			seen = append(seen, raw)
		} else {
			assert.Equal(t, seen[len(seen)-1], raw, "value changed within a step at sample %d", i)
		}
	}
	assert.Equal(t, simulatedDay, seen)

	// wraps around
	raw, err := sensor.ReadUVOriginalData(ctx)
	require.NoError(t, err)
	assert.Equal(t, simulatedDay[0], raw)
}

func TestSimulatedSensor_CoversAllRiskLevels(t *testing.T) {
	levels := map[uint16]bool{}
	for _, raw := range simulatedDay {
		levels[RiskLevel(UVIndex(raw))] = true
	}
	for level := RiskLow; level <= RiskExtreme; level++ {
		assert.True(t, levels[level], "risk level %s not simulated", RiskName(level))
	}
}

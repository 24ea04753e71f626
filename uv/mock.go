package uv

import (
	"context"
	"sync"
	"time"
)

// RawBehaviorFunc defines the function signature for UV sensor behavior.
// It returns the raw register value or an error.
type RawBehaviorFunc func(ctx context.Context) (uint16, error)

// MockUVSensor is a mock implementation of the UV sensor that uses a behavior function
// to produce raw values without requiring any hardware. UV index and risk level
// are derived from the raw value with the same tables as Sensor in IndexComputed mode.
type MockUVSensor struct {
	behavior RawBehaviorFunc
	beginErr error
}

var _ Reader = &MockUVSensor{}

// NewMockUVSensor creates a new mock UV sensor with the given behavior function.
//
// Example usage:
//
//	// Static value
//	sensor := NewMockUVSensor(func(ctx context.Context) (uint16, error) {
//		return 700, nil
//	})
//
//	// Error simulation
//	sensor := NewMockUVSensor(func(ctx context.Context) (uint16, error) {
//		return 0, fmt.Errorf("sensor malfunction")
//	})
func NewMockUVSensor(behavior RawBehaviorFunc) *MockUVSensor {
	return &MockUVSensor{behavior: behavior}
}

// FailBegin makes subsequent Begin calls return err.
func (m *MockUVSensor) FailBegin(err error) *MockUVSensor {
	m.beginErr = err
	return m
}

func (m *MockUVSensor) Begin(ctx context.Context) error {
	return m.beginErr
}

func (m *MockUVSensor) ReadUVOriginalData(ctx context.Context) (uint16, error) {
	return m.behavior(ctx)
}

func (m *MockUVSensor) ReadUVIndex(ctx context.Context) (uint16, error) {
	raw, err := m.behavior(ctx)
	if err != nil {
		return 0, err
	}
	return UVIndex(raw), nil
}

func (m *MockUVSensor) ReadRiskLevel(ctx context.Context) (uint16, error) {
	index, err := m.ReadUVIndex(ctx)
	if err != nil {
		return 0, err
	}
	return RiskLevel(index), nil
}

func (m *MockUVSensor) Read(ctx context.Context) (Reading, error) {
	raw, err := m.behavior(ctx)
	if err != nil {
		return Reading{}, err
	}
	index := UVIndex(raw)
	return Reading{Raw: raw, Index: index, Risk: RiskLevel(index), At: time.Now()}, nil
}

// simulatedDay lists raw values walking the UV scale up to extreme and back.
var simulatedDay = []uint16{0, 120, 260, 350, 550, 750, 900, 1100, 830, 650, 450, 260, 120}

// samplesPerStep is the number of reads served before moving to the next value.
const samplesPerStep = 10

// NewSimulatedSensor returns a mock stepping through a day of UV values.
// Each value is served samplesPerStep times before advancing.
func NewSimulatedSensor() *MockUVSensor {
	var mx sync.Mutex
	count := 0
	return NewMockUVSensor(func(ctx context.Context) (uint16, error) {
		mx.Lock()
		defer mx.Unlock()
		raw := simulatedDay[(count/samplesPerStep)%len(simulatedDay)]
		count++
		return raw, nil
	})
}

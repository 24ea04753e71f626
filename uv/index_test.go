package uv

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUVIndex_Boundaries(t *testing.T) {
	tests := []struct {
		raw      uint16
		expected uint16
	}{
		{0, 0},
		{49, 0},
		{50, 1},
		{226, 1},
		{227, 2},
		{317, 2},
		{318, 3},
		{407, 3},
		{408, 4},
		{502, 4},
		{503, 5},
		{605, 5},
		{606, 6},
		{695, 6},
		{696, 7},
		{700, 7},
		{794, 7},
		{795, 8},
		{880, 8},
		{881, 9},
		{975, 9},
		{976, 10},
		{1078, 10},
		{1079, 11},
		{3300, 11},
		{math.MaxUint16, 11},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("raw %d", test.raw), func(t *testing.T) {
			assert.Equal(t, test.expected, UVIndex(test.raw))
		})
	}
}

func TestUVIndex_Monotonic(t *testing.T) {
	prev := UVIndex(0)
	for raw := 1; raw <= math.MaxUint16; raw++ {
		idx := UVIndex(uint16(raw))
		if idx < prev {
			t.Fatalf("index decreased at raw %d: %d -> %d", raw, prev, idx)
		}
		if idx > MaxUVIndex {
			t.Fatalf("index %d out of range at raw %d", idx, raw)
		}
		prev = idx
	}
}

func TestRiskLevel_Boundaries(t *testing.T) {
	tests := []struct {
		index    uint16
		expected uint16
	}{
		{0, RiskLow},
		{2, RiskLow},
		{3, RiskModerate},
		{5, RiskModerate},
		{6, RiskHigh},
		{7, RiskHigh},
		{8, RiskVeryHigh},
		{10, RiskVeryHigh},
		{11, RiskExtreme},
		{12, RiskExtreme},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("index %d", test.index), func(t *testing.T) {
			assert.Equal(t, test.expected, RiskLevel(test.index))
		})
	}
}

func TestRiskLevel_Monotonic(t *testing.T) {
	prev := RiskLevel(0)
	for idx := uint16(1); idx <= MaxUVIndex; idx++ {
		level := RiskLevel(idx)
		assert.GreaterOrEqual(t, level, prev, "risk decreased at index %d", idx)
		assert.LessOrEqual(t, level, RiskExtreme)
		prev = level
	}
}

func TestRiskName(t *testing.T) {
	assert.Equal(t, "low", RiskName(RiskLow))
	assert.Equal(t, "moderate", RiskName(RiskModerate))
	assert.Equal(t, "high", RiskName(RiskHigh))
	assert.Equal(t, "very high", RiskName(RiskVeryHigh))
	assert.Equal(t, "extreme", RiskName(RiskExtreme))
	assert.Equal(t, "unknown", RiskName(5))
}

func TestSwapPairs_RestoresBigEndian(t *testing.T) {
	values := []uint16{0x0000, 0x427C, 0x02BC, 0x0437, 0xFFFF, 0x1234}
	buf := make([]byte, 2*len(values))
	for i, v := range values {
		// simulate the device sending the low byte first
		binary.LittleEndian.PutUint16(buf[2*i:], v)
	}
	swapPairs(buf)
	for i, v := range values {
		assert.Equal(t, v, binary.BigEndian.Uint16(buf[2*i:]), "word %d", i)
	}
}

func TestSwapPairs_OddLength(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03}
	swapPairs(buf)
	assert.Equal(t, []byte{0x02, 0x01, 0x03}, buf)

	empty := []byte{}
	swapPairs(empty)
	assert.Empty(t, empty)
}

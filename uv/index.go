package uv

// indexBounds holds exclusive upper bounds of the raw value for UV index 0..10.
// Raw values at or above the last bound map to index 11.
var indexBounds = [...]uint16{50, 227, 318, 408, 503, 606, 696, 795, 881, 976, 1079}

// riskBounds holds exclusive upper bounds of the UV index for risk levels 0..3.
var riskBounds = [...]uint16{3, 6, 8, 11}

const (
	RiskLow uint16 = iota
	RiskModerate
	RiskHigh
	RiskVeryHigh
	RiskExtreme
)

const MaxUVIndex uint16 = uint16(len(indexBounds))

var riskNames = [...]string{"low", "moderate", "high", "very high", "extreme"}

// UVIndex maps a raw sensor value to the UV index scale (0-11).
func UVIndex(raw uint16) uint16 {
	for i, bound := range indexBounds {
		if raw < bound {
			return uint16(i)
		}
	}
	return MaxUVIndex
}

// RiskLevel maps a UV index to a risk level (0-4).
func RiskLevel(index uint16) uint16 {
	for i, bound := range riskBounds {
		if index < bound {
			return uint16(i)
		}
	}
	return RiskExtreme
}

func RiskName(level uint16) string {
	if int(level) >= len(riskNames) {
		return "unknown"
	}
	return riskNames[level]
}

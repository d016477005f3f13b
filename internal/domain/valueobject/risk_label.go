package valueobject

import "fmt"

// RiskLabel is an immutable value object representing the binary cardiovascular risk outcome.
type RiskLabel struct {
	value string
}

var (
	RiskLabelLow  = RiskLabel{value: "LOW"}
	RiskLabelHigh = RiskLabel{value: "HIGH"}
)

// RiskLabelFromString reconstructs a RiskLabel from its string representation.
func RiskLabelFromString(s string) (RiskLabel, error) {
	switch s {
	case "LOW":
		return RiskLabelLow, nil
	case "HIGH":
		return RiskLabelHigh, nil
	default:
		return RiskLabel{}, fmt.Errorf("invalid risk label: %s", s)
	}
}

// RiskLabelFromBool maps a positive classification to HIGH and a negative one to LOW.
func RiskLabelFromBool(high bool) RiskLabel {
	if high {
		return RiskLabelHigh
	}
	return RiskLabelLow
}

// String returns the string representation.
func (r RiskLabel) String() string {
	return r.value
}

// IsHigh reports whether the label marks a high risk of cardiovascular disease.
func (r RiskLabel) IsHigh() bool {
	return r.value == "HIGH"
}

// IsZero returns true if the RiskLabel has not been set.
func (r RiskLabel) IsZero() bool {
	return r.value == ""
}

// Equal checks equality with another RiskLabel.
func (r RiskLabel) Equal(other RiskLabel) bool {
	return r.value == other.value
}

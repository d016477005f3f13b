package valueobject

import (
	"fmt"
	"strings"
)

// DecisionPolicy selects how the binary risk label is derived from the model output.
type DecisionPolicy struct {
	value string
}

var (
	// PolicyThreshold labels a prediction HIGH when the positive-class
	// percentage is strictly greater than 50.
	PolicyThreshold = DecisionPolicy{value: "threshold"}

	// PolicyNative takes the model's own discrete prediction.
	PolicyNative = DecisionPolicy{value: "native"}
)

// DecisionPolicyFromString parses a policy name. An empty string selects PolicyThreshold.
func DecisionPolicyFromString(s string) (DecisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "threshold":
		return PolicyThreshold, nil
	case "native":
		return PolicyNative, nil
	default:
		return DecisionPolicy{}, fmt.Errorf("invalid decision policy: %s", s)
	}
}

// String returns the string representation.
func (p DecisionPolicy) String() string {
	return p.value
}

// IsZero returns true if the DecisionPolicy has not been set.
func (p DecisionPolicy) IsZero() bool {
	return p.value == ""
}

package valueobject

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Gender is the enumerated sex field collected by the form.
type Gender struct {
	value string
	code  float64
}

var (
	GenderFemale = Gender{value: "female", code: 0}
	GenderMale   = Gender{value: "male", code: 1}
)

// ParseGender maps free text to a Gender, ignoring case and surrounding whitespace.
// A Caser is stateful, so a fresh one is built per call.
func ParseGender(s string) (Gender, error) {
	switch cases.Fold().String(strings.TrimSpace(s)) {
	case "male":
		return GenderMale, nil
	case "female":
		return GenderFemale, nil
	default:
		return Gender{}, fmt.Errorf("invalid gender: %q", s)
	}
}

// Code returns the numeric encoding the classifier was trained on (male=1, female=0).
func (g Gender) Code() float64 {
	return g.code
}

// String returns the string representation.
func (g Gender) String() string {
	return g.value
}

// IsZero returns true if the Gender has not been set.
func (g Gender) IsZero() bool {
	return g.value == ""
}

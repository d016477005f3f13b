package model

import (
	"fmt"
	"strings"
)

// Canonical field names collected by the form.
const (
	FieldAge      = "age"
	FieldSex      = "sex"
	FieldCP       = "cp"
	FieldTrestbps = "trestbps"
	FieldChol     = "chol"
	FieldFBS      = "fbs"
	FieldRestECG  = "restecg"
	FieldThalach  = "thalach"
	FieldExang    = "exang"
	FieldOldpeak  = "oldpeak"
	FieldSlope    = "slope"
	FieldCA       = "ca"
	FieldThal     = "thal"
)

// CanonicalSchema is the feature order the bundled classifier was fit on.
var CanonicalSchema = Schema{
	FieldAge, FieldSex, FieldCP, FieldTrestbps, FieldChol,
	FieldFBS, FieldRestECG, FieldThalach, FieldExang, FieldOldpeak,
}

// RawInput maps field names to user-entered values: numbers, numeric strings,
// or enumerated text such as "male".
type RawInput map[string]any

// Schema is the ordered list of feature names a trained model expects.
type Schema []string

// Validate checks that the schema is non-empty and free of blank or duplicate names.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no features")
	}
	seen := make(map[string]struct{}, len(s))
	for i, name := range s {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("feature %d has an empty name", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate feature %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Contains reports whether name is part of the schema.
func (s Schema) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// FeatureVector is an ordered numeric vector matching a Schema.
type FeatureVector struct {
	Names  []string
	Values []float64
}

// Len returns the number of features.
func (v FeatureVector) Len() int {
	return len(v.Values)
}

// Value returns the value of the named feature.
func (v FeatureVector) Value(name string) (float64, bool) {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Conforms reports whether the vector carries exactly the schema's names in the schema's order.
func (v FeatureVector) Conforms(schema Schema) bool {
	if len(v.Names) != len(schema) || len(v.Values) != len(schema) {
		return false
	}
	for i, name := range schema {
		if v.Names[i] != name {
			return false
		}
	}
	return true
}

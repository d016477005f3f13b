package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/valueobject"
)

// Encoder turns one raw field value into the number the classifier expects.
type Encoder func(v any) (float64, error)

// FeatureAligner encodes categorical fields and orders raw input to match a model schema.
// It holds no mutable state and is safe for concurrent use.
type FeatureAligner struct {
	encoders map[string]Encoder
	schema   model.Schema
}

// NewFeatureAligner creates an aligner for the given schema. The sex field is
// always encoded through ParseGender; every other field is parsed as a number.
func NewFeatureAligner(schema model.Schema) (*FeatureAligner, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	return &FeatureAligner{
		schema: append(model.Schema(nil), schema...),
		encoders: map[string]Encoder{
			model.FieldSex: EncodeGender,
		},
	}, nil
}

// Schema returns a copy of the schema the aligner targets.
func (a *FeatureAligner) Schema() model.Schema {
	return append(model.Schema(nil), a.schema...)
}

// Align builds the feature vector for raw. Fields outside the schema are dropped.
// A schema field that is absent from raw fails with model.ErrSchemaMismatch.
func (a *FeatureAligner) Align(raw model.RawInput) (model.FeatureVector, error) {
	var missing []string
	for _, name := range a.schema {
		if v, ok := raw[name]; !ok || v == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return model.FeatureVector{}, fmt.Errorf("%w: missing %s", model.ErrSchemaMismatch, strings.Join(missing, ", "))
	}

	vec := model.FeatureVector{
		Names:  make([]string, 0, len(a.schema)),
		Values: make([]float64, 0, len(a.schema)),
	}
	for _, name := range a.schema {
		encode, ok := a.encoders[name]
		if !ok {
			encode = EncodeNumber
		}
		x, err := encode(raw[name])
		if err != nil {
			return model.FeatureVector{}, &model.FieldError{Field: name, Err: model.ErrInvalidValue, Msg: err.Error()}
		}
		vec.Names = append(vec.Names, name)
		vec.Values = append(vec.Values, x)
	}

	if !vec.Conforms(a.schema) {
		return model.FeatureVector{}, fmt.Errorf("%w: aligned vector does not follow schema order", model.ErrSchemaMismatch)
	}
	return vec, nil
}

// EncodeGender accepts "male"/"female" in any case or an already-encoded 0/1.
func EncodeGender(v any) (float64, error) {
	if s, ok := v.(string); ok {
		g, err := valueobject.ParseGender(s)
		if err != nil {
			return 0, err
		}
		return g.Code(), nil
	}

	// Already-encoded values pass through when they are a valid code.
	x, err := EncodeNumber(v)
	if err != nil {
		return 0, err
	}
	if x != valueobject.GenderFemale.Code() && x != valueobject.GenderMale.Code() {
		return 0, fmt.Errorf("invalid gender code %v", x)
	}
	return x, nil
}

// EncodeNumber converts Go numerics, json.Number, bools and numeric strings to a finite float64.
func EncodeNumber(v any) (float64, error) {
	var x float64
	switch n := v.(type) {
	case float64:
		x = n
	case float32:
		x = float64(n)
	case int:
		x = float64(n)
	case int8:
		x = float64(n)
	case int16:
		x = float64(n)
	case int32:
		x = float64(n)
	case int64:
		x = float64(n)
	case uint:
		x = float64(n)
	case uint8:
		x = float64(n)
	case uint16:
		x = float64(n)
	case uint32:
		x = float64(n)
	case uint64:
		x = float64(n)
	case bool:
		if n {
			x = 1
		}
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n.String())
		}
		x = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		x = f
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}

	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	return x, nil
}

package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/infrastructure/catalog"
	"github.com/bibbank/cardiorisk/pkg/testutil"
)

func TestDefault(t *testing.T) {
	c := catalog.Default()

	fields := c.Fields()
	require.Len(t, fields, 13)
	assert.Equal(t, "age", fields[0].Name)
	assert.Equal(t, "thal", fields[12].Name)
	require.NoError(t, c.Covers(model.CanonicalSchema))

	age, ok := c.Field("age")
	require.True(t, ok)
	assert.Equal(t, catalog.KindInteger, age.Kind)
	assert.Equal(t, 20.0, age.Min)
	assert.Equal(t, 100.0, age.Max)

	oldpeak, _ := c.Field("oldpeak")
	assert.Equal(t, 0.1, oldpeak.Step)

	_, ok = c.Field("bmi")
	assert.False(t, ok)
}

func TestDefaults_PassValidation(t *testing.T) {
	c := catalog.Default()
	defaults := c.Defaults()

	assert.Equal(t, "female", defaults["sex"])
	assert.Equal(t, "20", defaults["age"])
	assert.NoError(t, c.Validate(defaults))
}

func TestValidate(t *testing.T) {
	c := catalog.Default()

	tests := []struct {
		name    string
		patch   map[string]any
		field   string
		wantErr error
	}{
		{"complete form", nil, "", nil},
		{"numeric strings", map[string]any{"age": "61", "oldpeak": "2.3"}, "", nil},
		{"gender in capitals", map[string]any{"sex": "MALE"}, "", nil},
		{"gender as code", map[string]any{"sex": 0}, "", nil},
		{"boundary values", map[string]any{"age": 100, "chol": 100, "oldpeak": 6.0}, "", nil},
		{"age too high", map[string]any{"age": 101}, "age", model.ErrOutOfRange},
		{"cholesterol too low", map[string]any{"chol": 99}, "chol", model.ErrOutOfRange},
		{"oldpeak negative", map[string]any{"oldpeak": -0.1}, "oldpeak", model.ErrOutOfRange},
		{"restecg not an option", map[string]any{"restecg": 3}, "restecg", model.ErrOutOfRange},
		{"fractional age", map[string]any{"age": 52.5}, "age", model.ErrInvalidValue},
		{"non-numeric", map[string]any{"chol": "high"}, "chol", model.ErrInvalidValue},
		{"unknown gender", map[string]any{"sex": "other"}, "sex", model.ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := model.RawInput(testutil.PatientForm())
			for k, v := range tt.patch {
				raw[k] = v
			}

			err := c.Validate(raw)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var fe *model.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestValidate_IgnoresMissingAndUnknownFields(t *testing.T) {
	c := catalog.Default()
	assert.NoError(t, c.Validate(model.RawInput{"age": 40, "bmi": 31.2}))
}

func TestValidate_ReportsEveryField(t *testing.T) {
	c := catalog.Default()
	raw := model.RawInput(testutil.PatientForm())
	raw["age"] = 150
	raw["thal"] = 9

	err := c.Validate(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "age")
	assert.Contains(t, err.Error(), "thal")
}

func TestNormalize(t *testing.T) {
	c := catalog.Default()

	age, _ := c.Field("age")
	assert.InDelta(t, 0.4, age.Normalize(52), 1e-9)
	assert.Equal(t, 0.0, age.Normalize(5))
	assert.Equal(t, 1.0, age.Normalize(120))

	slope, _ := c.Field("slope")
	assert.Equal(t, 0.5, slope.Normalize(1))
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"not yaml":       "fields: [",
		"empty":          "fields: []",
		"unnamed field":  "fields: [{kind: integer}]",
		"duplicate":      "fields: [{name: a, kind: integer}, {name: a, kind: integer}]",
		"unknown kind":   "fields: [{name: a, kind: slider}]",
		"inverted range": "fields: [{name: a, kind: integer, min: 5, max: 1}]",
		"choice no opts": "fields: [{name: a, kind: choice}]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestCovers(t *testing.T) {
	c, err := catalog.Parse([]byte("fields: [{name: age, kind: integer, min: 0, max: 120}]"))
	require.NoError(t, err)
	assert.ErrorContains(t, c.Covers(model.CanonicalSchema), "sex")
}

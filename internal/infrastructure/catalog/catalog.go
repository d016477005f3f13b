// Package catalog describes the patient form: field order, labels, allowed
// ranges and choices. It is loaded from YAML and drives input validation, the
// web form and the interactive CLI.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/service"
)

//go:embed fields.yaml
var defaultFields []byte

// Field kinds.
const (
	KindInteger = "integer"
	KindDecimal = "decimal"
	KindChoice  = "choice"
)

// Option is one allowed value of a choice field.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Field describes one form input.
type Field struct {
	Name    string   `yaml:"name" json:"name"`
	Label   string   `yaml:"label" json:"label"`
	Kind    string   `yaml:"kind" json:"kind"`
	Min     float64  `yaml:"min" json:"min,omitempty"`
	Max     float64  `yaml:"max" json:"max,omitempty"`
	Step    float64  `yaml:"step" json:"step,omitempty"`
	Default string   `yaml:"default" json:"default"`
	Options []Option `yaml:"options" json:"options,omitempty"`
}

// Numeric reports whether the field is a ranged number.
func (f Field) Numeric() bool {
	return f.Kind == KindInteger || f.Kind == KindDecimal
}

// Normalize maps x onto [0,1] within the field's range. Choice fields are
// scaled by option position.
func (f Field) Normalize(x float64) float64 {
	lo, hi := f.Min, f.Max
	if f.Kind == KindChoice {
		lo, hi = 0, float64(len(f.Options)-1)
	}
	if hi <= lo {
		return 0
	}
	return math.Max(0, math.Min(1, (x-lo)/(hi-lo)))
}

// Catalog is the ordered set of form fields.
type Catalog struct {
	fields []Field
	index  map[string]int
}

// Default returns the catalogue bundled with the binary.
func Default() *Catalog {
	c, err := Parse(defaultFields)
	if err != nil {
		panic(fmt.Sprintf("catalog: bundled fields.yaml is invalid: %v", err))
	}
	return c
}

// Parse decodes and checks a YAML catalogue.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Fields []Field `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(doc.Fields) == 0 {
		return nil, errors.New("catalog has no fields")
	}

	c := &Catalog{fields: doc.Fields, index: make(map[string]int, len(doc.Fields))}
	for i, f := range doc.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d has no name", i)
		}
		if _, dup := c.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		switch f.Kind {
		case KindInteger, KindDecimal:
			if f.Max < f.Min {
				return nil, fmt.Errorf("field %q: max %v below min %v", f.Name, f.Max, f.Min)
			}
		case KindChoice:
			if len(f.Options) == 0 {
				return nil, fmt.Errorf("field %q: choice without options", f.Name)
			}
		default:
			return nil, fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}
		c.index[f.Name] = i
	}
	return c, nil
}

// Fields returns the fields in form order.
func (c *Catalog) Fields() []Field {
	return append([]Field(nil), c.fields...)
}

// Field looks up a field by name.
func (c *Catalog) Field(name string) (Field, bool) {
	i, ok := c.index[name]
	if !ok {
		return Field{}, false
	}
	return c.fields[i], true
}

// Covers reports whether every name in schema is a catalogue field.
func (c *Catalog) Covers(schema model.Schema) error {
	var missing []string
	for _, name := range schema {
		if _, ok := c.index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("catalog lacks model features %v", missing)
	}
	return nil
}

// Defaults returns a form pre-filled with every field's default value.
func (c *Catalog) Defaults() model.RawInput {
	raw := make(model.RawInput, len(c.fields))
	for _, f := range c.fields {
		raw[f.Name] = f.Default
	}
	return raw
}

// Validate checks every catalogue field present in raw. Absent fields and
// fields unknown to the catalogue are left to the aligner. The result joins one
// *model.FieldError per offending field in form order.
func (c *Catalog) Validate(raw model.RawInput) error {
	var errs []error
	for _, f := range c.fields {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			continue
		}
		if err := f.check(v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Field) check(v any) error {
	if f.Name == model.FieldSex {
		if _, err := service.EncodeGender(v); err != nil {
			return &model.FieldError{Field: f.Name, Err: model.ErrInvalidValue, Msg: err.Error()}
		}
		return nil
	}

	x, err := service.EncodeNumber(v)
	if err != nil {
		return &model.FieldError{Field: f.Name, Err: model.ErrInvalidValue, Msg: err.Error()}
	}

	switch f.Kind {
	case KindChoice:
		for _, o := range f.Options {
			if ov, err := strconv.ParseFloat(o.Value, 64); err == nil && ov == x {
				return nil
			}
		}
		return &model.FieldError{Field: f.Name, Err: model.ErrOutOfRange, Msg: fmt.Sprintf("%v is not one of %s", x, f.optionValues())}
	case KindInteger:
		if x != math.Trunc(x) {
			return &model.FieldError{Field: f.Name, Err: model.ErrInvalidValue, Msg: fmt.Sprintf("%v is not a whole number", x)}
		}
	}

	if x < f.Min || x > f.Max {
		return &model.FieldError{Field: f.Name, Err: model.ErrOutOfRange, Msg: fmt.Sprintf("%v outside [%v, %v]", x, f.Min, f.Max)}
	}
	return nil
}

func (f Field) optionValues() string {
	values := make([]string, len(f.Options))
	for i, o := range f.Options {
		values[i] = o.Value
	}
	return strings.Join(values, ", ")
}

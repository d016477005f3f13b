package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bibbank/cardiorisk/internal/domain/model"
)

// FormatLogisticRegression is the only estimator family the loader understands.
const FormatLogisticRegression = "logistic_regression"

// Artifact is the serialized form of a trained estimator.
type Artifact struct {
	Format       string    `json:"format" yaml:"format"`
	Version      string    `json:"version" yaml:"version"`
	FeatureNames []string  `json:"feature_names" yaml:"feature_names"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Scaler       *Scaler   `json:"scaler,omitempty" yaml:"scaler,omitempty"`
}

// Scaler holds the per-feature standardisation applied before the linear model.
type Scaler struct {
	Mean  []float64 `json:"mean" yaml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

// Load reads the artifact at path and returns a ready classifier. Any failure is
// reported as *model.ModelLoadError.
func Load(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ModelLoadError{Path: path, Err: err}
	}

	art, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, &model.ModelLoadError{Path: path, Err: err}
	}

	m, err := NewLogisticModel(art)
	if err != nil {
		return nil, &model.ModelLoadError{Path: path, Err: err}
	}
	return m, nil
}

// Decode parses artifact bytes. ext selects the codec: ".yaml"/".yml" for YAML, anything else JSON.
func Decode(data []byte, ext string) (Artifact, error) {
	var art Artifact
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &art); err != nil {
			return Artifact{}, fmt.Errorf("decode yaml artifact: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &art); err != nil {
			return Artifact{}, fmt.Errorf("decode json artifact: %w", err)
		}
	}
	return art, nil
}

// Validate checks the artifact is internally consistent.
func (a Artifact) Validate() error {
	if a.Format != FormatLogisticRegression {
		return fmt.Errorf("unsupported artifact format %q", a.Format)
	}
	if err := model.Schema(a.FeatureNames).Validate(); err != nil {
		return fmt.Errorf("feature names: %w", err)
	}

	n := len(a.FeatureNames)
	if len(a.Coefficients) != n {
		return fmt.Errorf("%d coefficients for %d features", len(a.Coefficients), n)
	}
	if err := finite("coefficients", a.Coefficients...); err != nil {
		return err
	}
	if err := finite("intercept", a.Intercept); err != nil {
		return err
	}

	if a.Scaler != nil {
		if len(a.Scaler.Mean) != n || len(a.Scaler.Scale) != n {
			return fmt.Errorf("scaler has %d means and %d scales for %d features", len(a.Scaler.Mean), len(a.Scaler.Scale), n)
		}
		if err := finite("scaler mean", a.Scaler.Mean...); err != nil {
			return err
		}
		if err := finite("scaler scale", a.Scaler.Scale...); err != nil {
			return err
		}
		for i, s := range a.Scaler.Scale {
			if s == 0 {
				return fmt.Errorf("scaler scale for %q is zero", a.FeatureNames[i])
			}
		}
	}
	return nil
}

func finite(what string, xs ...float64) error {
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%s[%d] is not finite", what, i)
		}
	}
	return nil
}

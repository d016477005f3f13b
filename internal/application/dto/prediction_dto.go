package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/cardiorisk/internal/domain/model"
)

// Result messages shown to the user.
const (
	MessageHighRisk = "High risk of cardiovascular disease!"
	MessageLowRisk  = "Low risk of cardiovascular disease!"
)

// PredictRequest is the input DTO for the PredictRisk use case. Inputs maps
// form field names to numbers, numeric strings or "male"/"female".
type PredictRequest struct {
	Inputs map[string]any `json:"inputs"`
}

// PredictionResponse is the output DTO returned after a prediction.
type PredictionResponse struct {
	PredictedAt  time.Time `json:"predicted_at"`
	ID           uuid.UUID `json:"id"`
	Percent      string    `json:"percent"`
	Display      string    `json:"display"`
	RiskLabel    string    `json:"risk_label"`
	Message      string    `json:"message"`
	Policy       string    `json:"policy"`
	ModelVersion string    `json:"model_version"`
	Probability  float64   `json:"probability"`
	HighRisk     bool      `json:"high_risk"`
}

// FromPrediction maps a domain result to the response DTO.
func FromPrediction(r model.PredictionResult) PredictionResponse {
	msg := MessageLowRisk
	if r.HighRisk() {
		msg = MessageHighRisk
	}
	return PredictionResponse{
		ID:           r.ID(),
		Probability:  r.Probability(),
		Percent:      r.Percent().StringFixed(2),
		Display:      "Probability of cardiovascular disease: " + r.PercentString(),
		RiskLabel:    r.RiskLabel().String(),
		HighRisk:     r.HighRisk(),
		Message:      msg,
		Policy:       r.Policy().String(),
		ModelVersion: r.ModelVersion(),
		PredictedAt:  r.PredictedAt(),
	}
}

// ModelStatusResponse describes the model the process serves.
type ModelStatusResponse struct {
	Features     []string `json:"features"`
	ModelVersion string   `json:"model_version,omitempty"`
	Policy       string   `json:"policy"`
	LoadError    string   `json:"load_error,omitempty"`
	Available    bool     `json:"available"`
}

// ReferenceSampleResponse is the reference sample plus its column means.
type ReferenceSampleResponse struct {
	Records []model.ReferenceRecord `json:"records"`
	Means   ReferenceMeans          `json:"means"`
}

// ReferenceMeans are the means of the continuous reference columns.
type ReferenceMeans struct {
	Age      float64 `json:"age"`
	Trestbps float64 `json:"trestbps"`
	Chol     float64 `json:"chol"`
	Thalach  float64 `json:"thalach"`
}

// FromReferenceSample maps sample records to the response DTO.
func FromReferenceSample(records []model.ReferenceRecord) ReferenceSampleResponse {
	m := model.MeansOf(records)
	if records == nil {
		records = []model.ReferenceRecord{}
	}
	return ReferenceSampleResponse{
		Records: records,
		Means:   ReferenceMeans{Age: m.Age, Trestbps: m.Trestbps, Chol: m.Chol, Thalach: m.Thalach},
	}
}

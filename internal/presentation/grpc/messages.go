package grpc

import "google.golang.org/protobuf/types/known/timestamppb"

// PredictRequest represents the proto PredictRequest message.
type PredictRequest struct {
	Inputs map[string]any `json:"inputs"`
}

// PredictResponse represents the proto PredictResponse message.
type PredictResponse struct {
	ID           string                 `json:"id"`
	Percent      string                 `json:"percent"`
	Display      string                 `json:"display"`
	RiskLabel    string                 `json:"risk_label"`
	Message      string                 `json:"message"`
	Policy       string                 `json:"policy"`
	ModelVersion string                 `json:"model_version"`
	PredictedAt  *timestamppb.Timestamp `json:"predicted_at"`
	Probability  float64                `json:"probability"`
	HighRisk     bool                   `json:"high_risk"`
}

// GetSchemaRequest represents the proto GetSchemaRequest message.
type GetSchemaRequest struct{}

// GetSchemaResponse represents the proto GetSchemaResponse message.
type GetSchemaResponse struct {
	Features     []string   `json:"features"`
	Fields       []FieldMsg `json:"fields"`
	ModelVersion string     `json:"model_version"`
	Policy       string     `json:"policy"`
	LoadError    string     `json:"load_error,omitempty"`
	Available    bool       `json:"available"`
}

// FieldMsg represents the proto Field message.
type FieldMsg struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Kind    string      `json:"kind"`
	Default string      `json:"default"`
	Options []OptionMsg `json:"options,omitempty"`
	Min     float64     `json:"min"`
	Max     float64     `json:"max"`
	Step    float64     `json:"step"`
}

// OptionMsg represents the proto Option message.
type OptionMsg struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

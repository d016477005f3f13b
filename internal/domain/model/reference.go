package model

// ReferenceRecord is one row of the static reference sample shown next to a patient's inputs.
// Categorical columns are one-hot encoded as in the published dataset extract.
type ReferenceRecord struct {
	Age      float64 `json:"age"`
	Trestbps float64 `json:"trestbps"`
	Chol     float64 `json:"chol"`
	Thalach  float64 `json:"thalach"`
	Target   float64 `json:"target"`
	CP1      float64 `json:"cp_1"`
	CP2      float64 `json:"cp_2"`
	CP3      float64 `json:"cp_3"`
	Exang1   float64 `json:"exang_1"`
	Slope1   float64 `json:"slope_1"`
	Slope2   float64 `json:"slope_2"`
}

// ReferenceMeans averages the continuous columns of a sample.
type ReferenceMeans struct {
	Age      float64
	Trestbps float64
	Chol     float64
	Thalach  float64
}

// MeansOf computes the column means of the continuous measurements.
func MeansOf(records []ReferenceRecord) ReferenceMeans {
	var m ReferenceMeans
	if len(records) == 0 {
		return m
	}
	for _, r := range records {
		m.Age += r.Age
		m.Trestbps += r.Trestbps
		m.Chol += r.Chol
		m.Thalach += r.Thalach
	}
	n := float64(len(records))
	m.Age /= n
	m.Trestbps /= n
	m.Chol /= n
	m.Thalach /= n
	return m
}

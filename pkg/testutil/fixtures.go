package testutil

// PatientForm returns a complete form submission as it arrives from the
// dashboard: the ten model features plus fields the model ignores.
func PatientForm() map[string]any {
	return map[string]any{
		"age":      52,
		"sex":      "male",
		"cp":       1,
		"trestbps": 125,
		"chol":     212,
		"fbs":      0,
		"restecg":  1,
		"thalach":  168,
		"exang":    0,
		"oldpeak":  1.0,
		"slope":    2,
		"ca":       2,
		"thal":     3,
	}
}

// HighRiskForm returns a submission the bundled model scores well above one half.
func HighRiskForm() map[string]any {
	return map[string]any{
		"age":      70,
		"sex":      "male",
		"cp":       4,
		"trestbps": 160,
		"chol":     320,
		"fbs":      1,
		"restecg":  2,
		"thalach":  110,
		"exang":    1,
		"oldpeak":  3.5,
		"slope":    1,
		"ca":       3,
		"thal":     3,
	}
}

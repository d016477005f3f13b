package port

import "github.com/bibbank/cardiorisk/internal/domain/model"

// InputValidator checks raw form values before they reach the model.
type InputValidator interface {
	// Validate returns *model.FieldError values (possibly joined) for offending fields.
	Validate(raw model.RawInput) error
}

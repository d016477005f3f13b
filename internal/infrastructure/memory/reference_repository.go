package memory

import (
	"context"

	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/port"
)

var _ port.ReferenceSampleRepository = (*ReferenceSampleRepository)(nil)

// ClevelandSample is the 14-row extract of the Cleveland heart disease data
// shown on the data information page.
var ClevelandSample = []model.ReferenceRecord{
	{Age: 52, Trestbps: 125, Chol: 212, Thalach: 168, Target: 0, Slope2: 1},
	{Age: 53, Trestbps: 140, Chol: 203, Thalach: 155, Target: 0, Exang1: 1},
	{Age: 70, Trestbps: 145, Chol: 174, Thalach: 125, Target: 0, Exang1: 1},
	{Age: 61, Trestbps: 148, Chol: 203, Thalach: 161, Target: 0},
	{Age: 62, Trestbps: 138, Chol: 294, Thalach: 106, Target: 0, Slope1: 1},
	{Age: 58, Trestbps: 100, Chol: 248, Thalach: 122, Target: 1, Slope1: 1},
	{Age: 58, Trestbps: 114, Chol: 318, Thalach: 140, Target: 0},
	{Age: 55, Trestbps: 160, Chol: 289, Thalach: 145, Target: 0, Exang1: 1, Slope1: 1},
	{Age: 46, Trestbps: 120, Chol: 249, Thalach: 144, Target: 0},
	{Age: 54, Trestbps: 122, Chol: 286, Thalach: 116, Target: 0, Exang1: 1, Slope1: 1},
	{Age: 71, Trestbps: 112, Chol: 149, Thalach: 125, Target: 1, Slope1: 1},
	{Age: 43, Trestbps: 132, Chol: 341, Thalach: 136, Target: 0, Exang1: 1, Slope1: 1},
	{Age: 51, Trestbps: 140, Chol: 298, Thalach: 122, Target: 0, Exang1: 1, Slope1: 1},
	{Age: 52, Trestbps: 128, Chol: 204, Thalach: 156, Target: 0, Exang1: 1, Slope1: 1},
}

// ReferenceSampleRepository serves a fixed in-memory sample.
type ReferenceSampleRepository struct {
	records []model.ReferenceRecord
}

// NewReferenceSampleRepository serves records, or ClevelandSample when records is nil.
func NewReferenceSampleRepository(records []model.ReferenceRecord) *ReferenceSampleRepository {
	if records == nil {
		records = ClevelandSample
	}
	return &ReferenceSampleRepository{records: append([]model.ReferenceRecord(nil), records...)}
}

// List returns a copy of the sample.
func (r *ReferenceSampleRepository) List(ctx context.Context) ([]model.ReferenceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]model.ReferenceRecord(nil), r.records...), nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/port"
	pgutil "github.com/bibbank/cardiorisk/pkg/postgres"
)

var _ port.ReferenceSampleRepository = (*ReferenceSampleRepository)(nil)

// ReferenceSampleRepository reads the reference sample from PostgreSQL.
type ReferenceSampleRepository struct {
	db pgutil.Querier
}

// NewReferenceSampleRepository creates a repository over a pool or transaction.
func NewReferenceSampleRepository(db pgutil.Querier) *ReferenceSampleRepository {
	return &ReferenceSampleRepository{db: db}
}

// List returns the sample in display order.
func (r *ReferenceSampleRepository) List(ctx context.Context) ([]model.ReferenceRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT age, trestbps, chol, thalach, target,
		       cp_1, cp_2, cp_3, exang_1, slope_1, slope_2
		FROM reference_samples
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reference samples: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ReferenceRecord, error) {
		var rec model.ReferenceRecord
		err := row.Scan(
			&rec.Age, &rec.Trestbps, &rec.Chol, &rec.Thalach, &rec.Target,
			&rec.CP1, &rec.CP2, &rec.CP3, &rec.Exang1, &rec.Slope1, &rec.Slope2,
		)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan reference samples: %w", err)
	}
	return records, nil
}

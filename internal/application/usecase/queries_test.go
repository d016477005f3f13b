package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardiorisk/internal/application/usecase"
	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/service"
	"github.com/bibbank/cardiorisk/internal/domain/valueobject"
	"github.com/bibbank/cardiorisk/internal/infrastructure/memory"
)

type failingRepository struct{}

func (failingRepository) List(context.Context) ([]model.ReferenceRecord, error) {
	return nil, errors.New("connection refused")
}

func TestGetReferenceSample(t *testing.T) {
	uc := usecase.NewGetReferenceSample(memory.NewReferenceSampleRepository(nil))

	resp, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, resp.Records, 14)
	assert.InDelta(t, 56.143, resp.Means.Age, 1e-3)
	assert.InDelta(t, 137.214, resp.Means.Thalach, 1e-3)
}

func TestGetReferenceSample_RepositoryError(t *testing.T) {
	_, err := usecase.NewGetReferenceSample(failingRepository{}).Execute(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestDescribeModel(t *testing.T) {
	predictor := stubPredictor(t, 0.4)
	resp := usecase.NewDescribeModel(predictor).Execute()

	assert.True(t, resp.Available)
	assert.Equal(t, []string(model.CanonicalSchema), resp.Features)
	assert.Equal(t, "stub", resp.ModelVersion)
	assert.Equal(t, "threshold", resp.Policy)
	assert.Empty(t, resp.LoadError)
}

func TestDescribeModel_Unavailable(t *testing.T) {
	predictor := service.NewUnavailablePredictor(errors.New("corrupt artifact"), valueobject.PolicyNative)
	resp := usecase.NewDescribeModel(predictor).Execute()

	assert.False(t, resp.Available)
	assert.Equal(t, []string{}, resp.Features)
	assert.Equal(t, "native", resp.Policy)
	assert.Equal(t, "corrupt artifact", resp.LoadError)
}

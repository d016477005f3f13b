package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardiorisk/internal/application/usecase"
	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/port"
	"github.com/bibbank/cardiorisk/internal/domain/service"
	"github.com/bibbank/cardiorisk/internal/domain/valueobject"
	"github.com/bibbank/cardiorisk/internal/infrastructure/catalog"
	"github.com/bibbank/cardiorisk/internal/infrastructure/memory"
	"github.com/bibbank/cardiorisk/internal/infrastructure/ml"
	"github.com/bibbank/cardiorisk/internal/presentation/web"
	"github.com/bibbank/cardiorisk/pkg/observability"
)

type failingRepository struct{}

func (failingRepository) List(context.Context) ([]model.ReferenceRecord, error) {
	return nil, errors.New("connection refused")
}

func stubPredictor(t *testing.T, p float64) *service.Predictor {
	t.Helper()
	predictor, err := service.NewPredictor(ml.NewStubClassifier(p, observability.Discard()), model.CanonicalSchema, valueobject.PolicyThreshold, "stub-v1")
	require.NoError(t, err)
	return predictor
}

func unavailablePredictor() *service.Predictor {
	return service.NewUnavailablePredictor(
		&model.ModelLoadError{Path: "models/missing.json", Err: errors.New("no such file or directory")},
		valueobject.PolicyThreshold,
	)
}

func newHandler(t *testing.T, predictor *service.Predictor, repo port.ReferenceSampleRepository) *web.Handler {
	t.Helper()
	logger := observability.Discard()
	if repo == nil {
		repo = memory.NewReferenceSampleRepository(nil)
	}
	h, err := web.NewHandler(
		usecase.NewPredictRisk(predictor, catalog.Default(), nil, nil, logger),
		usecase.NewDescribeModel(predictor),
		usecase.NewGetReferenceSample(repo),
		catalog.Default(),
		web.DefaultCopy(),
		logger,
	)
	require.NoError(t, err)
	return h
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, rec.Body.String()
}

func submit(t *testing.T, h http.Handler, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/prediction", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func patientForm() url.Values {
	return url.Values{
		"age": {"52"}, "sex": {"male"}, "cp": {"1"}, "trestbps": {"125"}, "chol": {"212"},
		"fbs": {"0"}, "restecg": {"1"}, "thalach": {"168"}, "exang": {"0"}, "oldpeak": {"1.0"},
		"slope": {"2"}, "ca": {"2"}, "thal": {"3"},
	}
}

func TestHome(t *testing.T) {
	code, body := get(t, newHandler(t, stubPredictor(t, 0.2), nil), "/")
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, body, "Cardiovascular Diseases (CVDs)")
	assert.Contains(t, body, web.DefaultImageURL)
	assert.Contains(t, body, `href="/prediction"`)
	assert.NotContains(t, body, `id="model-error"`)
}

func TestDataInformation(t *testing.T) {
	code, body := get(t, newHandler(t, stubPredictor(t, 0.2), nil), "/data")
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, body, "Long Beach V")
	assert.Equal(t, 14, strings.Count(body, "<tr>")-2, "one row per sample record plus header and footer")
	assert.Contains(t, body, "<td>52.0</td>")
}

func TestDataInformation_RepositoryFailure(t *testing.T) {
	code, body := get(t, newHandler(t, stubPredictor(t, 0.2), failingRepository{}), "/data")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body, "reference sample is currently unavailable")
	assert.NotContains(t, body, "connection refused")
}

func TestPredictionForm(t *testing.T) {
	code, body := get(t, newHandler(t, stubPredictor(t, 0.2), nil), "/prediction")
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, body, `name="age" min="20" max="100" step="1" value="20"`)
	assert.Contains(t, body, `name="oldpeak" min="0" max="6" step="0.1"`)
	assert.Contains(t, body, `type="radio" name="sex" value="female" checked`)
	assert.NotContains(t, body, `id="risk"`)
}

func TestPredict_HighRisk(t *testing.T) {
	code, body := submit(t, newHandler(t, stubPredictor(t, 0.73), nil), patientForm())
	require.Equal(t, http.StatusOK, code, body)

	assert.Contains(t, body, "Probability of cardiovascular disease: 73.00%")
	assert.Contains(t, body, "High risk of cardiovascular disease!")
	assert.Contains(t, body, `class="chart bar-chart"`)
	assert.Contains(t, body, `class="chart radar-chart"`)
	assert.Contains(t, body, `type="radio" name="sex" value="male" checked`, "the form keeps the submitted values")
}

func TestPredict_LowRiskAtExactlyHalf(t *testing.T) {
	code, body := submit(t, newHandler(t, stubPredictor(t, 0.5), nil), patientForm())
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, body, "50.00%")
	assert.Contains(t, body, "Low risk of cardiovascular disease!")
}

func TestPredict_InvalidInputShowsError(t *testing.T) {
	form := patientForm()
	form.Set("chol", "1000")

	code, body := submit(t, newHandler(t, stubPredictor(t, 0.2), nil), form)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body, `id="prediction-error"`)
	assert.Contains(t, body, "chol")
	assert.NotContains(t, body, `id="risk"`)
}

func TestPredict_ChartsSkippedWhenSampleUnavailable(t *testing.T) {
	code, body := submit(t, newHandler(t, stubPredictor(t, 0.2), failingRepository{}), patientForm())
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, body, "Low risk of cardiovascular disease!")
	assert.NotContains(t, body, "bar-chart")
	assert.Contains(t, body, "radar-chart")
}

func TestDegradedMode(t *testing.T) {
	h := newHandler(t, unavailablePredictor(), nil)

	for _, path := range []string{"/", "/data", "/prediction"} {
		code, body := get(t, h, path)
		assert.Equal(t, http.StatusOK, code, path)
		assert.Contains(t, body, `id="model-error"`, path)
		assert.Contains(t, body, "models/missing.json", path)
	}

	code, body := submit(t, h, patientForm())
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "model unavailable")

	// The service keeps answering after a failed prediction.
	code, _ = get(t, h, "/")
	assert.Equal(t, http.StatusOK, code)
}

func TestUnknownPage(t *testing.T) {
	code, _ := get(t, newHandler(t, stubPredictor(t, 0.2), nil), "/nope")
	assert.Equal(t, http.StatusNotFound, code)
}

package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bibbank/cardiorisk/internal/application/dto"
	"github.com/bibbank/cardiorisk/internal/application/usecase"
	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/infrastructure/catalog"
)

// API paths.
const (
	PathPredictions     = "/api/v1/predictions"
	PathSchema          = "/api/v1/schema"
	PathReferenceSample = "/api/v1/reference-sample"
)

// APIHandler serves the JSON API.
type APIHandler struct {
	predictRisk   *usecase.PredictRisk
	describeModel *usecase.DescribeModel
	reference     *usecase.GetReferenceSample
	catalog       *catalog.Catalog
	logger        *slog.Logger
}

// NewAPIHandler creates the JSON API handler.
func NewAPIHandler(
	predictRisk *usecase.PredictRisk,
	describeModel *usecase.DescribeModel,
	reference *usecase.GetReferenceSample,
	fields *catalog.Catalog,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		predictRisk:   predictRisk,
		describeModel: describeModel,
		reference:     reference,
		catalog:       fields,
		logger:        logger,
	}
}

// RegisterRoutes registers the API endpoints on mux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST "+PathPredictions, h.Predict)
	mux.HandleFunc("GET "+PathSchema, h.Schema)
	mux.HandleFunc("GET "+PathReferenceSample, h.ReferenceSample)
}

// SchemaResponse is the body of GET /api/v1/schema.
type SchemaResponse struct {
	Model  dto.ModelStatusResponse `json:"model"`
	Fields []catalog.Field         `json:"fields"`
}

// Predict handles POST /api/v1/predictions.
func (h *APIHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req dto.PredictRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Inputs) == 0 {
		writeError(w, http.StatusBadRequest, "inputs are required")
		return
	}

	resp, err := h.predictRisk.Execute(r.Context(), req)
	if err != nil {
		writeJSON(w, predictionStatus(err), ErrorResponse{Error: err.Error(), Reason: usecase.ErrorReason(err)})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Schema handles GET /api/v1/schema.
func (h *APIHandler) Schema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SchemaResponse{
		Model:  h.describeModel.Execute(),
		Fields: h.catalog.Fields(),
	})
}

// ReferenceSample handles GET /api/v1/reference-sample.
func (h *APIHandler) ReferenceSample(w http.ResponseWriter, r *http.Request) {
	resp, err := h.reference.Execute(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load reference sample", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "reference sample unavailable")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// predictionStatus maps a prediction failure to an HTTP status code.
func predictionStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, model.ErrSchemaMismatch),
		errors.Is(err, model.ErrInvalidValue),
		errors.Is(err, model.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	}
	var ie *model.InferenceError
	if errors.As(err, &ie) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Package web renders the dashboard pages: home, data information and prediction.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/bibbank/cardiorisk/internal/application/dto"
	"github.com/bibbank/cardiorisk/internal/application/usecase"
	"github.com/bibbank/cardiorisk/internal/domain/model"
	"github.com/bibbank/cardiorisk/internal/domain/service"
	"github.com/bibbank/cardiorisk/internal/infrastructure/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageHome       = "home.html"
	PageData       = "data.html"
	PagePrediction = "prediction.html"
)

// Handler serves the dashboard.
type Handler struct {
	predictRisk   *usecase.PredictRisk
	describeModel *usecase.DescribeModel
	reference     *usecase.GetReferenceSample
	catalog       *catalog.Catalog
	copy          Copy
	pages         map[string]*template.Template
	mux           *http.ServeMux
	logger        *slog.Logger
}

// NewHandler parses the page templates and creates the dashboard handler.
func NewHandler(
	predictRisk *usecase.PredictRisk,
	describeModel *usecase.DescribeModel,
	reference *usecase.GetReferenceSample,
	fields *catalog.Catalog,
	pageCopy Copy,
	logger *slog.Logger,
) (*Handler, error) {
	pages := make(map[string]*template.Template, 3)
	for _, name := range []string{PageHome, PageData, PagePrediction} {
		tpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tpl
	}

	h := &Handler{
		predictRisk:   predictRisk,
		describeModel: describeModel,
		reference:     reference,
		catalog:       fields,
		copy:          pageCopy,
		pages:         pages,
		mux:           http.NewServeMux(),
		logger:        logger,
	}
	h.RegisterRoutes(h.mux)
	return h, nil
}

// RegisterRoutes registers the dashboard pages on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /data", h.data)
	mux.HandleFunc("GET /prediction", h.predictionForm)
	mux.HandleFunc("POST /prediction", h.predict)
}

// ServeHTTP serves the pages registered by RegisterRoutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type formField struct {
	catalog.Field
	Value string
}

type viewModel struct {
	Title string
	Page  string
	Model dto.ModelStatusResponse

	Intro    template.HTML
	ImageURL string

	DataInfo template.HTML
	Sample   *dto.ReferenceSampleResponse

	Fields     []formField
	Result     *dto.PredictionResponse
	Error      string
	BarChart   template.HTML
	RadarChart template.HTML
}

var funcs = template.FuncMap{
	"isChoice": func(f formField) bool { return f.Kind == catalog.KindChoice },
}

func (h *Handler) newViewModel(title, page string) *viewModel {
	return &viewModel{Title: title, Page: page, Model: h.describeModel.Execute()}
}

func (h *Handler) home(w http.ResponseWriter, _ *http.Request) {
	vm := h.newViewModel("Home", PageHome)
	vm.Intro = sanitize(h.copy.Home)
	vm.ImageURL = h.copy.ImageURL
	h.render(w, http.StatusOK, vm)
}

func (h *Handler) data(w http.ResponseWriter, r *http.Request) {
	vm := h.newViewModel("Data Information", PageData)
	vm.DataInfo = sanitize(h.copy.DataInfo)

	sample, err := h.reference.Execute(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to load reference sample", slog.String("error", err.Error()))
		vm.Error = "The reference sample is currently unavailable."
		h.render(w, http.StatusInternalServerError, vm)
		return
	}
	vm.Sample = &sample
	h.render(w, http.StatusOK, vm)
}

func (h *Handler) predictionForm(w http.ResponseWriter, _ *http.Request) {
	vm := h.newViewModel("Prediction", PagePrediction)
	vm.Fields = h.formFields(nil)
	h.render(w, http.StatusOK, vm)
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	vm := h.newViewModel("Prediction", PagePrediction)

	if err := r.ParseForm(); err != nil {
		vm.Fields = h.formFields(nil)
		vm.Error = "The form could not be read."
		h.render(w, http.StatusBadRequest, vm)
		return
	}

	raw := make(model.RawInput, len(h.catalog.Fields()))
	for _, f := range h.catalog.Fields() {
		if v := r.PostForm.Get(f.Name); v != "" {
			raw[f.Name] = v
		}
	}
	vm.Fields = h.formFields(raw)

	resp, err := h.predictRisk.Execute(r.Context(), dto.PredictRequest{Inputs: raw})
	if err != nil {
		vm.Error = "An error occurred during prediction: " + err.Error()
		code := http.StatusUnprocessableEntity
		if errors.Is(err, model.ErrModelUnavailable) {
			code = http.StatusServiceUnavailable
		}
		h.render(w, code, vm)
		return
	}
	vm.Result = &resp

	if sample, err := h.reference.Execute(r.Context()); err == nil {
		vm.BarChart = BarChart(barGroups(raw, sample.Means))
	} else {
		h.logger.WarnContext(r.Context(), "bar chart skipped", slog.String("error", err.Error()))
	}
	vm.RadarChart = RadarChart(h.radarAxes(raw))

	h.render(w, http.StatusOK, vm)
}

// formFields pairs each catalogue field with the submitted value, or its default.
func (h *Handler) formFields(raw model.RawInput) []formField {
	fields := h.catalog.Fields()
	out := make([]formField, len(fields))
	for i, f := range fields {
		out[i] = formField{Field: f, Value: f.Default}
		if v, ok := raw[f.Name].(string); ok {
			out[i].Value = v
		}
	}
	return out
}

func barGroups(raw model.RawInput, means dto.ReferenceMeans) []BarGroup {
	ref := map[string]float64{
		model.FieldAge:      means.Age,
		model.FieldTrestbps: means.Trestbps,
		model.FieldChol:     means.Chol,
		model.FieldThalach:  means.Thalach,
	}
	var groups []BarGroup
	for _, name := range []string{model.FieldAge, model.FieldTrestbps, model.FieldChol, model.FieldThalach} {
		x, err := service.EncodeNumber(raw[name])
		if err != nil {
			continue
		}
		groups = append(groups, BarGroup{Label: name, Patient: x, Reference: ref[name]})
	}
	return groups
}

func (h *Handler) radarAxes(raw model.RawInput) []RadarAxis {
	var axes []RadarAxis
	for _, f := range h.catalog.Fields() {
		v, ok := raw[f.Name]
		if !ok {
			continue
		}
		encode := service.EncodeNumber
		if f.Name == model.FieldSex {
			encode = service.EncodeGender
		}
		x, err := encode(v)
		if err != nil {
			continue
		}
		axes = append(axes, RadarAxis{Label: f.Name, Value: f.Normalize(x)})
	}
	return axes
}

func (h *Handler) render(w http.ResponseWriter, status int, vm *viewModel) {
	var buf bytes.Buffer
	if err := h.pages[vm.Page].ExecuteTemplate(&buf, "layout.html", vm); err != nil {
		h.logger.Error("failed to render page", slog.String("page", vm.Page), slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

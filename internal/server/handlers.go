package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-carprice/internal/observability"
	"github.com/goliatone/go-carprice/pkg/dataset"
	"github.com/goliatone/go-carprice/pkg/form"
	"github.com/goliatone/go-carprice/pkg/orchestrator"
	"github.com/goliatone/go-carprice/pkg/prediction"
	"github.com/goliatone/go-carprice/pkg/predictor"
	"github.com/goliatone/go-carprice/pkg/render"
)

const (
	actionRefresh = "refresh"
	formatParam   = "format"
)

type handlers struct {
	orch    *orchestrator.Orchestrator
	dataset *dataset.Dataset
	logger  *zap.Logger
}

// page renders the starting form. Query values preselect fields so a
// bookmarked URL restores a selection.
func (h *handlers) page(w http.ResponseWriter, r *http.Request) {
	state, err := h.orch.Initial()
	if err != nil {
		h.internalError(w, r, "initial_state_failed", err)
		return
	}

	var errs []error
	if values := firstValues(r.URL.Query()); len(values) > 0 {
		state, errs = h.orch.Apply(state, values)
	}
	h.render(w, r, http.StatusOK, orchestrator.Request{State: state, Errors: errs})
}

// submit applies a posted form. The refresh action only re-renders with the
// cascaded models; anything else asks for an estimate.
func (h *handlers) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(r.Context(), w, NewError("invalid_form", "unable to parse form submission", http.StatusBadRequest))
		return
	}

	state, err := h.orch.Initial()
	if err != nil {
		h.internalError(w, r, "initial_state_failed", err)
		return
	}
	state, errs := h.orch.Apply(state, firstValues(r.PostForm))

	if r.PostForm.Get("action") == actionRefresh {
		h.render(w, r, http.StatusOK, orchestrator.Request{State: state, Errors: errs})
		return
	}
	if len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, orchestrator.Request{State: state, Errors: errs})
		return
	}

	out := h.orch.Predict(r.Context(), state)
	status := http.StatusOK
	if out.Incomplete() {
		status = http.StatusUnprocessableEntity
	}
	h.render(w, r, status, orchestrator.Request{State: out.State, Outcome: &out})
}

func (h *handlers) render(w http.ResponseWriter, r *http.Request, status int, req orchestrator.Request) {
	ctx := r.Context()
	renderer, err := h.pickRenderer(r)
	if err != nil {
		writeError(ctx, w, NewError("unknown_format", err.Error(), http.StatusNotAcceptable))
		return
	}
	req.Renderer = renderer.Name()

	body, err := h.orch.Generate(ctx, req)
	if err != nil {
		h.internalError(w, r, "render_failed", err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *handlers) pickRenderer(r *http.Request) (render.Renderer, error) {
	registry := h.orch.Registry()
	if format := strings.TrimSpace(r.URL.Query().Get(formatParam)); format != "" {
		return registry.Get(format)
	}
	return registry.ForAccept(r.Header.Get("Accept"), defaultRenderer)
}

type optionsResponse struct {
	Field string   `json:"field"`
	Data  []string `json:"data"`
}

// options lists the legal values of a select. Models need a brand.
func (h *handlers) options(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	field := chi.URLParam(r, "field")
	ctrl := h.orch.Controller()

	var values []string
	if field == dataset.FieldModel {
		brand := strings.TrimSpace(r.URL.Query().Get("brand"))
		if brand == "" {
			writeError(ctx, w, NewError("brand_required", "brand query parameter is required for model options", http.StatusBadRequest))
			return
		}
		values = ctrl.ModelOptions(form.State{Brand: brand})
	} else {
		var err error
		values, err = ctrl.Options(field)
		if err != nil {
			writeError(ctx, w, NewError("unknown_field", fmt.Sprintf("%s is not a selectable field", field), http.StatusNotFound))
			return
		}
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(ctx, w, http.StatusOK, optionsResponse{Field: field, Data: values})
}

type predictResponse struct {
	ID     string            `json:"id"`
	Price  float64           `json:"price"`
	Text   string            `json:"text"`
	Record prediction.Record `json:"record"`
}

// predict takes a JSON object keyed by record field names.
func (h *handlers) predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil || body == nil {
		writeError(ctx, w, NewError("invalid_json", "request body must be a JSON object", http.StatusBadRequest))
		return
	}

	values := make(map[string]string, len(body))
	missing := make(map[string][]string)
	for _, field := range prediction.Fields() {
		raw, ok := body[field]
		value := stringify(raw)
		if !ok || value == "" {
			missing[field] = []string{"is required"}
			continue
		}
		values[field] = value
	}
	if len(missing) > 0 {
		writeError(ctx, w, NewError("incomplete_state", "missing required fields", http.StatusUnprocessableEntity).WithFields(missing))
		return
	}

	ctrl := h.orch.Controller()
	state, errs := ctrl.Apply(form.State{}, values)
	if len(errs) == 0 && state.Model != values[dataset.FieldModel] {
		// Apply keeps the cascaded model when the requested one does not
		// belong to the brand; the API reports it instead.
		if _, err := ctrl.SelectField(state, dataset.FieldModel, values[dataset.FieldModel]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		writeError(ctx, w, NewError("invalid_input", "one or more fields are invalid", http.StatusUnprocessableEntity).
			WithFields(wireFields(render.MapErrors(errs...).Fields)))
		return
	}

	out := h.orch.Predict(ctx, state)
	switch {
	case out.Incomplete():
		writeError(ctx, w, NewError("incomplete_state", out.Output.Text, http.StatusUnprocessableEntity).
			WithFields(wireFields(render.MapErrors(out.Err).Fields)))
	case !out.OK():
		observability.FromContext(ctx).Warn("prediction failed", zap.String("attempt_id", out.ID), zap.Error(out.Err))
		writeError(ctx, w, NewError("prediction_failed", out.Output.Text, http.StatusBadGateway))
	default:
		writeJSON(ctx, w, http.StatusOK, predictResponse{
			ID:     out.ID,
			Price:  out.Result.Price,
			Text:   out.Output.Text,
			Record: *out.Record,
		})
	}
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	payload := map[string]any{
		"status":       "ok",
		"dataset_rows": h.dataset.Rows(),
	}
	if r.URL.Query().Get("deep") != "" {
		if pinger, ok := h.orch.Predictor().(predictor.Pinger); ok {
			if err := pinger.Ping(ctx); err != nil {
				observability.FromContext(ctx).Warn("predictor ping failed", zap.Error(err))
				writeError(ctx, w, NewError("predictor_unavailable", "predictor is not reachable", http.StatusServiceUnavailable))
				return
			}
			payload["predictor"] = "ok"
		}
	}
	writeJSON(ctx, w, http.StatusOK, payload)
}

func (h *handlers) internalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	observability.FromContext(r.Context()).Error("request failed", zap.String("code", code), zap.Error(err))
	writeError(r.Context(), w, NewError(code, "internal server error", http.StatusInternalServerError))
}

func firstValues(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, list := range values {
		if key == formatParam || key == "action" || len(list) == 0 {
			continue
		}
		out[key] = list[0]
	}
	return out
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(v)
		return strings.TrimSpace(buf.String())
	}
}

// wireFields renames form field keys to record field names.
func wireFields(fields map[string][]string) map[string][]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(fields))
	for name, messages := range fields {
		if name == form.FieldMileage {
			name = prediction.FieldMileageNumeric
		}
		out[name] = messages
	}
	return out
}

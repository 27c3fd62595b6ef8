package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/aradsms/churn_dashboard/internal/churn_service/dataset"
	"github.com/aradsms/churn_dashboard/internal/churn_service/domain"
)

const maxRequestBodyBytes = 64 << 10

// APIHandler serves the JSON API under /api/v1.
type APIHandler struct {
	svc      PredictionService
	data     *dataset.Dataset
	logger   *slog.Logger
	validate *validator.Validate
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(svc PredictionService, data *dataset.Dataset, logger *slog.Logger, validate *validator.Validate) *APIHandler {
	return &APIHandler{
		svc:      svc,
		data:     data,
		logger:   logger.With("component", "api_handler"),
		validate: validate,
	}
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("Failed to write JSON response", "error", err)
		}
	}
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// RegisterRoutes sets up the routing for the JSON API.
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Post("/predictions", h.CreatePrediction)
	r.Get("/predictions", h.ListPredictions)
	r.Get("/model", h.GetModel)

	r.Route("/charts", func(r chi.Router) {
		r.Get("/total-charges", h.GetTotalCharges)
		r.Get("/state-churn", h.GetStateChurn)
		r.Get("/state-service-calls", h.GetStateServiceCalls)
	})
}

func (h *APIHandler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO PredictionRequestDTO
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&reqDTO); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			respondWithValidation(w, validationFromFieldErrors(fieldErrs))
			return
		}
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	in, err := reqDTO.toCustomerInput()
	if err != nil {
		h.respondWithPredictError(w, r, err)
		return
	}

	p, err := h.svc.Predict(ctx, in)
	if err != nil {
		h.respondWithPredictError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toPredictionResponseDTO(p))
}

func (h *APIHandler) respondWithPredictError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	var infErr *domain.InferenceError
	switch {
	case errors.As(err, &vErr):
		respondWithValidation(w, vErr)
	case errors.As(err, &infErr):
		h.logger.ErrorContext(r.Context(), "Prediction failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Prediction failed")
	default:
		h.logger.ErrorContext(r.Context(), "Unexpected prediction error", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func respondWithValidation(w http.ResponseWriter, vErr *domain.ValidationError) {
	respondWithJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
		Error:  "Validation failed",
		Fields: vErr.Fields,
	})
}

func validationFromFieldErrors(errs validator.ValidationErrors) *domain.ValidationError {
	verr := domain.NewValidationError()
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			verr.Add(fe.Field(), "is required")
		case "min":
			verr.Add(fe.Field(), "must not be negative")
		case "oneof":
			verr.Add(fe.Field(), "must be 0 or 1")
		case "max":
			verr.Add(fe.Field(), "is too long")
		default:
			verr.Add(fe.Field(), "failed "+fe.Tag()+" check")
		}
	}
	return verr
}

func (h *APIHandler) ListPredictions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	preds, err := h.svc.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list predictions", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list predictions")
		return
	}
	resp := ListPredictionsResponseDTO{Predictions: make([]PredictionResponseDTO, 0, len(preds))}
	for _, p := range preds {
		resp.Predictions = append(resp.Predictions, toPredictionResponseDTO(p))
	}
	resp.Count = len(resp.Predictions)
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.svc.ModelInfo())
}

func (h *APIHandler) GetTotalCharges(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.data.TotalChargesByChurn())
}

func (h *APIHandler) GetStateChurn(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.data.ChurnCountsByState())
}

func (h *APIHandler) GetStateServiceCalls(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.data.ServiceCallsByState())
}

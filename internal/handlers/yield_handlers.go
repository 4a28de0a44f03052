package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"yield-advisor/internal/encoding"
	"yield-advisor/internal/features"
	"yield-advisor/internal/models"
	"yield-advisor/internal/predictor"
	"yield-advisor/internal/services"
	"yield-advisor/pkg/logging"
	"yield-advisor/pkg/metrics"
)

const maxBodyBytes = 1 << 20

// HealthChecker is a dependency the health endpoint probes
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// YieldHandler handles prediction, advisory and catalog endpoints
type YieldHandler struct {
	predictions *services.PredictionService
	catalog     *services.CatalogService
	checks      map[string]HealthChecker
	logger      *logging.StructuredLogger
	metrics     *metrics.Collector
}

// NewYieldHandler creates a new yield handler. checks may be nil.
func NewYieldHandler(
	predictions *services.PredictionService,
	catalog *services.CatalogService,
	checks map[string]HealthChecker,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *YieldHandler {
	return &YieldHandler{
		predictions: predictions,
		catalog:     catalog,
		checks:      checks,
		logger:      logger,
		metrics:     metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
	Field   string `json:"field,omitempty"`
}

// Predict handles POST /api/predict
func (h *YieldHandler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe(r, time.Now())

	var req models.PredictionRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.metrics.RecordAPIError("invalid_body", endpointOf(r))
		h.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest, "")
		return
	}

	resp, err := h.predictions.Predict(ctx, &req)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.metrics.RecordAPIRequest(endpointOf(r), r.Method, "200")
	h.sendJSON(w, resp, http.StatusOK)
}

// Advise handles POST /api/advise
func (h *YieldHandler) Advise(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer h.observe(r, time.Now())

	var req models.AdviseRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.metrics.RecordAPIError("invalid_body", endpointOf(r))
		h.sendError(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest, "")
		return
	}

	resp, err := h.predictions.Advise(ctx, &req)
	if err != nil {
		h.sendServiceError(w, r, err)
		return
	}

	h.metrics.RecordAPIRequest(endpointOf(r), r.Method, "200")
	h.sendJSON(w, resp, http.StatusOK)
}

// GetCatalog handles GET /api/catalog
func (h *YieldHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r, time.Now())

	h.metrics.RecordAPIRequest(endpointOf(r), r.Method, "200")
	h.sendJSON(w, h.catalog.Describe(), http.StatusOK)
}

// GetSubLocations handles GET /api/catalog/locations/{location}/sublocations
func (h *YieldHandler) GetSubLocations(w http.ResponseWriter, r *http.Request) {
	defer h.observe(r, time.Now())

	location := mux.Vars(r)["location"]

	resp, err := h.catalog.SubLocations(location)
	if err != nil {
		h.metrics.RecordAPIError("not_found", endpointOf(r))
		h.sendError(w, r, err.Error(), http.StatusNotFound, "location")
		return
	}

	h.metrics.RecordAPIRequest(endpointOf(r), r.Method, "200")
	h.sendJSON(w, resp, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *YieldHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string, len(h.checks)),
	}
	code := http.StatusOK

	for name, check := range h.checks {
		if err := check.HealthCheck(ctx); err != nil {
			h.logger.Warn(ctx, "[HEALTH_CHECK_FAILED] Dependency unhealthy", logging.Fields{
				"dependency": name,
				"error":      err.Error(),
			})
			resp.Checks[name] = "unhealthy"
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "healthy"
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, resp, code)
}

// RegisterRoutes registers all API routes
func (h *YieldHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/predict", h.Predict).Methods("POST")
	router.HandleFunc("/api/advise", h.Advise).Methods("POST")
	router.HandleFunc("/api/catalog", h.GetCatalog).Methods("GET")
	router.HandleFunc("/api/catalog/locations/{location}/sublocations", h.GetSubLocations).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc(OpenAPIPath, OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
}

// sendServiceError maps pipeline errors to HTTP status codes
func (h *YieldHandler) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	endpoint := endpointOf(r)

	var validation *models.ValidationError
	var unknown *encoding.UnknownCategoryError

	switch {
	case errors.As(err, &validation):
		h.metrics.RecordAPIError("validation_error", endpoint)
		h.sendError(w, r, validation.Message, http.StatusBadRequest, validation.Field)
	case errors.As(err, &unknown):
		h.metrics.RecordAPIError("unknown_category", endpoint)
		h.sendError(w, r, err.Error(), http.StatusBadRequest, string(unknown.Field))
	case errors.Is(err, features.ErrMalformedInput):
		h.metrics.RecordAPIError("malformed_input", endpoint)
		h.sendError(w, r, err.Error(), http.StatusBadRequest, "")
	case errors.Is(err, encoding.ErrInvalidHierarchy):
		h.metrics.RecordAPIError("invalid_hierarchy", endpoint)
		h.sendError(w, r, err.Error(), http.StatusUnprocessableEntity, "sublocation")
	case errors.Is(err, predictor.ErrUnavailable):
		h.metrics.RecordAPIError("predictor_unavailable", endpoint)
		h.sendError(w, r, "yield predictor is unavailable, try again later", http.StatusServiceUnavailable, "")
	default:
		h.logger.Error(ctx, "[API_ERROR] Unhandled service error", logging.Fields{
			"endpoint": endpoint,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, "internal error", http.StatusInternalServerError, "")
	}
}

// observe records request duration under the route template
func (h *YieldHandler) observe(r *http.Request, start time.Time) {
	h.metrics.APIRequestDuration.WithLabelValues(endpointOf(r)).Observe(time.Since(start).Seconds())
}

// sendJSON sends a JSON response
func (h *YieldHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *YieldHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int, field string) {
	h.metrics.RecordAPIRequest(endpointOf(r), r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
		Field:   field,
	}

	h.sendJSON(w, response, statusCode)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

// endpointOf returns the matched route template so path variables do not
// inflate metric label cardinality.
func endpointOf(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return r.URL.Path
}

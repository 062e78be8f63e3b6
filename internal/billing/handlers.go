package billing

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-billing/internal/catalog"
	"github.com/noah-isme/backend-billing/internal/common"
	"github.com/noah-isme/backend-billing/internal/customer"
)

// Version is reported by the API info endpoint.
const Version = "1.0.0"

// Handler exposes the bill calculation endpoints.
type Handler struct {
	Svc    *Service
	Logger zerolog.Logger
}

// Calculate handles POST /api/v1/bills/calculate.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "billing service not configured", nil)
		return
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request entity too large", nil)
			return
		}
		common.WriteError(w, common.NewAppError("BAD_REQUEST", "invalid payload", http.StatusBadRequest, err))
		return
	}
	if err := common.Validate(req); err != nil {
		common.WriteError(w, err)
		return
	}
	calc, err := h.Svc.Calculate(r.Context(), req)
	if err != nil {
		h.writeError(w, r, req, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": calc})
}

// Health handles GET /api/v1/bills/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{
		"status":  "OK",
		"message": "Bill service is running",
	}})
}

// Info handles GET / and describes the API.
func (h *Handler) Info(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"name":        "Billing Discounts API",
		"version":     Version,
		"description": "Calculates retail store bills with customer and bill-based discounts",
		"status":      "running",
		"time":        time.Now().UTC(),
		"endpoints": map[string]string{
			"calculate": "/api/v1/bills/calculate",
			"bills":     "/api/v1/bills/health",
			"live":      "/health/live",
			"ready":     "/health/ready",
			"metrics":   "/metrics",
		},
	}})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, req Request, err error) {
	appErr := toAppError(err)
	evt := h.Logger.Warn()
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		evt = h.Logger.Error()
	}
	evt.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("customer_id", req.CustomerID).
		Str("code", appErr.Code).
		Msg("bill calculation failed")
	common.WriteError(w, appErr)
}

func toAppError(err error) *common.AppError {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, customer.ErrCustomerNotFound):
		return common.NotFound("CUSTOMER_NOT_FOUND", err)
	case errors.Is(err, catalog.ErrProductNotFound):
		return common.NotFound("PRODUCT_NOT_FOUND", err)
	case isInvalidArgument(err):
		return common.BadRequest("INVALID_ARGUMENT", err)
	default:
		return common.NewAppError("INTERNAL", "internal server error", http.StatusInternalServerError, err)
	}
}

// Package handler exposes workload submission and forecasting over
// HTTP.
package handler

import (
	"net/http"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/workload/service"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/httputil"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// WorkloadHandler handles workload endpoints.
type WorkloadHandler struct {
	service *service.WorkloadService
	logger  *logger.Logger
}

// NewWorkloadHandler creates a workload handler.
func NewWorkloadHandler(svc *service.WorkloadService, log *logger.Logger) *WorkloadHandler {
	return &WorkloadHandler{
		service: svc,
		logger:  log,
	}
}

// SubmitDaily records today's patient count and returns the short
// forecast.
func (h *WorkloadHandler) SubmitDaily(w http.ResponseWriter, r *http.Request) {
	var input service.SubmitDailyInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.SubmitDaily(r.Context(), principal.MustFromContext(r.Context()), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

// RecordLog appends one raw workload sample.
func (h *WorkloadHandler) RecordLog(w http.ResponseWriter, r *http.Request) {
	var input service.RecordLogInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	log, err := h.service.RecordLog(r.Context(), principal.MustFromContext(r.Context()), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, log)
}

// Forecast returns the long-horizon trend forecast.
func (h *WorkloadHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ForecastNextDay(r.Context(), principal.MustFromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

// Package handler exposes patient intake over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/patient/service"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/httputil"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// PatientHandler handles patient intake endpoints.
type PatientHandler struct {
	service *service.PatientService
	logger  *logger.Logger
}

// NewPatientHandler creates a patient handler.
func NewPatientHandler(svc *service.PatientService, log *logger.Logger) *PatientHandler {
	return &PatientHandler{
		service: svc,
		logger:  log,
	}
}

// Register creates an intake record.
func (h *PatientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	patient, err := h.service.Register(r.Context(), principal.MustFromContext(r.Context()), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, patient)
}

// List lists the caller's facility intake records.
func (h *PatientHandler) List(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.List(r.Context(), principal.MustFromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, patients)
}

// Get returns one intake record.
func (h *PatientHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := patientID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	patient, err := h.service.Get(r.Context(), principal.MustFromContext(r.Context()), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, patient)
}

// Update patches one intake record.
func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := patientID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var input service.UpdateInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	patient, err := h.service.Update(r.Context(), principal.MustFromContext(r.Context()), id, input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, patient)
}

func patientID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("invalid patient id")
	}
	return id, nil
}

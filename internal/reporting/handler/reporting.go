// Package handler exposes issues and monthly reports over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/service"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/httputil"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// ReportingHandler handles issue and report endpoints.
type ReportingHandler struct {
	issues  *service.IssueService
	reports *service.ReportService
	logger  *logger.Logger
}

// NewReportingHandler creates a reporting handler.
func NewReportingHandler(issues *service.IssueService, reports *service.ReportService, log *logger.Logger) *ReportingHandler {
	return &ReportingHandler{
		issues:  issues,
		reports: reports,
		logger:  log,
	}
}

// CreateIssue records an operator-reported issue.
func (h *ReportingHandler) CreateIssue(w http.ResponseWriter, r *http.Request) {
	var input service.CreateIssueInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	issue, err := h.issues.Create(r.Context(), principal.MustFromContext(r.Context()), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, issue)
}

// ListIssues lists issues visible to the caller.
func (h *ReportingHandler) ListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.issues.List(r.Context(), principal.MustFromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, issues)
}

// UpdateIssueStatus advances an issue's lifecycle.
func (h *ReportingHandler) UpdateIssueStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var input service.UpdateStatusInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	issue, err := h.issues.UpdateStatus(r.Context(), principal.MustFromContext(r.Context()), id, input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, issue)
}

// GenerateReport creates or returns the month's draft.
func (h *ReportingHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var input service.GenerateInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	report, err := h.reports.Generate(r.Context(), principal.MustFromContext(r.Context()), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, report)
}

// ListReports lists reports visible to the caller.
func (h *ReportingHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context(), principal.MustFromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, reports)
}

// UpdateReport edits a draft's narrative.
func (h *ReportingHandler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var input service.UpdateContentInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	report, err := h.reports.UpdateContent(r.Context(), principal.MustFromContext(r.Context()), id, input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, report)
}

// SubmitReport hands the draft to the district authority.
func (h *ReportingHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	report, err := h.reports.Submit(r.Context(), principal.MustFromContext(r.Context()), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, report)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("invalid id")
	}
	return id, nil
}

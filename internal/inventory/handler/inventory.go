// Package handler exposes the inventory ledger and restock engine over
// HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/service"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/httputil"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// InventoryHandler handles inventory ledger and restock endpoints.
type InventoryHandler struct {
	service *service.RestockService
	logger  *logger.Logger
}

// NewInventoryHandler creates an inventory handler.
func NewInventoryHandler(svc *service.RestockService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: svc,
		logger:  log,
	}
}

// ListItems lists the caller's inventory ledger.
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), principal.MustFromContext(r.Context()))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, items)
}

// UpsertItem creates or replaces one ledger row.
func (h *InventoryHandler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	var input service.UpsertItemInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	item, err := h.service.UpsertItem(r.Context(), principal.MustFromContext(r.Context()), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, item)
}

// DeleteItem removes one ledger row.
func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemName := chi.URLParam(r, "itemName")

	if err := h.service.DeleteItem(r.Context(), principal.MustFromContext(r.Context()), itemName); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.NoContent(w)
}

// LowStock evaluates the ledger against the threshold.
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context(), principal.MustFromContext(r.Context()), thresholdDays(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, items)
}

// AutoRestockCheck runs the auto-restock scan.
func (h *InventoryHandler) AutoRestockCheck(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.AutoRestockCheck(r.Context(), principal.MustFromContext(r.Context()), thresholdDays(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

// CreateRequest raises a manual restock request.
func (h *InventoryHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var input service.CreateRequestInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	req, err := h.service.CreateRequest(r.Context(), principal.MustFromContext(r.Context()), input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, req)
}

// ListRequests lists requests visible to the caller.
func (h *InventoryHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := service.ListFilter{
		Status:       r.URL.Query().Get("status"),
		FacilityID:   r.URL.Query().Get("facility_id"),
		FacilityName: r.URL.Query().Get("facility_name"),
	}

	reqs, err := h.service.ListRequests(r.Context(), principal.MustFromContext(r.Context()), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, reqs)
}

// ProcessRequest approves or declines a request.
func (h *InventoryHandler) ProcessRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var input service.ProcessRequestInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	req, err := h.service.ProcessRequest(r.Context(), principal.MustFromContext(r.Context()), id, input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, req)
}

// EditRequest partially updates a pending request.
func (h *InventoryHandler) EditRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var input service.EditRequestInput
	if err := httputil.DecodeJSON(r, &input); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(input); err != nil {
		httputil.Error(w, err)
		return
	}

	req, err := h.service.EditRequest(r.Context(), principal.MustFromContext(r.Context()), id, input)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, req)
}

// CancelRequest soft-cancels a pending request.
func (h *InventoryHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	req, err := h.service.CancelRequest(r.Context(), principal.MustFromContext(r.Context()), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, req)
}

// ReceiveRequest confirms delivery of an approved request.
func (h *InventoryHandler) ReceiveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	req, item, err := h.service.ReceiveRequest(r.Context(), principal.MustFromContext(r.Context()), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"request":   req,
		"inventory": item,
	})
}

func requestID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("invalid request id")
	}
	return id, nil
}

func thresholdDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("threshold_days"))
	if err != nil || days <= 0 {
		return 0
	}
	return days
}

// Package service implements the inventory ledger operations and the
// restock decision engine.
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/events"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

const (
	// DefaultThresholdDays is the low-stock cutoff when the caller does
	// not supply one.
	DefaultThresholdDays = 5

	// RestockHorizonDays is the stock level auto-restock aims for.
	RestockHorizonDays = 14
)

// ItemStore is the ledger persistence the engine depends on.
type ItemStore interface {
	ListByFacility(ctx context.Context, facilityID string) ([]*domain.InventoryItem, error)
	GetByName(ctx context.Context, facilityID, itemName string) (*domain.InventoryItem, error)
	Upsert(ctx context.Context, item *domain.InventoryItem) error
	Delete(ctx context.Context, facilityID, itemName string) error
}

// RequestStore is the restock-request persistence the engine depends on.
// CreateBatch and Receive are atomic: all statements commit together or
// none do.
type RequestStore interface {
	Create(ctx context.Context, req *domain.RestockRequest) error
	CreateBatch(ctx context.Context, reqs []*domain.RestockRequest) error
	GetByID(ctx context.Context, id int64) (*domain.RestockRequest, error)
	List(ctx context.Context, filter domain.RequestFilter) ([]*domain.RestockRequest, error)
	PendingItemNames(ctx context.Context, facilityID string) (map[string]bool, error)
	Update(ctx context.Context, req *domain.RestockRequest) error
	Receive(ctx context.Context, req *domain.RestockRequest, receivedBy string) (*domain.InventoryItem, error)
}

// RestockService runs the restock decision engine and the requisition
// lifecycle. Every call takes the caller's Principal explicitly.
type RestockService struct {
	items     ItemStore
	requests  RequestStore
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewRestockService creates a RestockService. publisher may be nil.
func NewRestockService(items ItemStore, requests RequestStore, publisher *events.InventoryEventPublisher, log *logger.Logger) *RestockService {
	return &RestockService{
		items:     items,
		requests:  requests,
		publisher: publisher,
		logger:    log.WithComponent("restock_service"),
	}
}

// ListItems returns the caller's full inventory ledger.
func (s *RestockService) ListItems(ctx context.Context, p *principal.Principal) ([]*domain.InventoryItem, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can view their stock")
	}
	return s.items.ListByFacility(ctx, p.FacilityID)
}

// UpsertItemInput carries a ledger row create-or-replace.
type UpsertItemInput struct {
	ItemName             string  `json:"item_name" validate:"required"`
	ItemType             string  `json:"item_type" validate:"required"`
	CurrentStock         int     `json:"current_stock" validate:"gte=0"`
	Unit                 string  `json:"unit" validate:"required"`
	DailyConsumptionRate float64 `json:"daily_consumption_rate" validate:"gte=0"`
}

// UpsertItem creates or replaces a ledger row for the caller's facility.
func (s *RestockService) UpsertItem(ctx context.Context, p *principal.Principal, input UpsertItemInput) (*domain.InventoryItem, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can manage their stock")
	}

	item := &domain.InventoryItem{
		FacilityID:           p.FacilityID,
		FacilityName:         p.DisplayName,
		ItemName:             input.ItemName,
		ItemType:             input.ItemType,
		CurrentStock:         input.CurrentStock,
		Unit:                 input.Unit,
		DailyConsumptionRate: input.DailyConsumptionRate,
	}
	if err := s.items.Upsert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes a ledger row from the caller's facility.
func (s *RestockService) DeleteItem(ctx context.Context, p *principal.Principal, itemName string) error {
	if !p.IsPHC() {
		return errors.Forbidden("only facility staff can manage their stock")
	}
	return s.items.Delete(ctx, p.FacilityID, itemName)
}

// LowStock evaluates the caller's ledger against the threshold. Rows
// without a strictly positive consumption rate cannot starve and are
// excluded. Pure read, no side effects.
func (s *RestockService) LowStock(ctx context.Context, p *principal.Principal, thresholdDays int) ([]*domain.LowStockItem, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can view their stock")
	}
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}

	items, err := s.items.ListByFacility(ctx, p.FacilityID)
	if err != nil {
		return nil, err
	}

	lowStock := []*domain.LowStockItem{}
	for _, item := range items {
		if item.DailyConsumptionRate <= 0 {
			continue
		}
		daysLeft := item.DaysRemaining()
		if daysLeft > float64(thresholdDays) {
			continue
		}
		lowStock = append(lowStock, &domain.LowStockItem{
			ItemName:             item.ItemName,
			CurrentStock:         item.CurrentStock,
			DailyConsumptionRate: item.DailyConsumptionRate,
			Unit:                 item.Unit,
			DaysRemaining:        math.Round(daysLeft*10) / 10,
		})
	}
	return lowStock, nil
}

// AutoRestockCheck scans the caller's ledger and raises a pending
// request for every item at or under the threshold that does not already
// have one. The whole batch commits together or not at all.
func (s *RestockService) AutoRestockCheck(ctx context.Context, p *principal.Principal, thresholdDays int) (*domain.AutoRestockResult, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can run restock checks")
	}
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}

	items, err := s.items.ListByFacility(ctx, p.FacilityID)
	if err != nil {
		return nil, err
	}
	pending, err := s.requests.PendingItemNames(ctx, p.FacilityID)
	if err != nil {
		return nil, err
	}

	result := &domain.AutoRestockResult{SkippedItems: []string{}}
	batch := []*domain.RestockRequest{}

	for _, item := range items {
		if item.DailyConsumptionRate <= 0 {
			continue
		}
		daysRemaining := item.DaysRemaining()
		if daysRemaining > float64(thresholdDays) {
			continue
		}
		if pending[item.ItemName] {
			result.SkippedItems = append(result.SkippedItems, item.ItemName)
			continue
		}

		quantity := TargetQuantity(item.DailyConsumptionRate, item.CurrentStock)
		priority := PriorityFor(daysRemaining)

		batch = append(batch, &domain.RestockRequest{
			ItemName:       item.ItemName,
			QuantityNeeded: quantity,
			FacilityID:     p.FacilityID,
			FacilityName:   p.DisplayName,
			DistrictID:     p.DistrictID,
			RequestedBy:    requesterName(p),
			Status:         domain.StatusPending,
			PriorityLevel:  &priority,
		})
	}

	if err := s.requests.CreateBatch(ctx, batch); err != nil {
		return nil, err
	}
	result.CreatedRequests = len(batch)

	for _, req := range batch {
		s.publisher.PublishRestockRequested(ctx, req, true)
	}

	s.logger.Info().
		Str("facility_id", p.FacilityID).
		Int("created", result.CreatedRequests).
		Int("skipped", len(result.SkippedItems)).
		Msg("auto restock check completed")
	return result, nil
}

// TargetQuantity computes how many units bring stock up to the restock
// horizon. Truncates toward zero, floored at 1.
func TargetQuantity(dailyRate float64, currentStock int) int {
	quantity := int(RestockHorizonDays*dailyRate - float64(currentStock))
	if quantity < 1 {
		quantity = 1
	}
	return quantity
}

// PriorityFor maps days of stock remaining to an urgency band.
func PriorityFor(daysRemaining float64) domain.Priority {
	switch {
	case daysRemaining <= 2:
		return domain.PriorityHigh
	case daysRemaining <= 5:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// CreateRequestInput carries a manual restock request.
type CreateRequestInput struct {
	ItemName       string `json:"item_name" validate:"required"`
	QuantityNeeded int    `json:"quantity_needed" validate:"required,gt=0"`
}

// CreateRequest raises a manual pending request. Unlike the automated
// check, a manual request is never deduplicated.
func (s *RestockService) CreateRequest(ctx context.Context, p *principal.Principal, input CreateRequestInput) (*domain.RestockRequest, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can request restock")
	}

	req := &domain.RestockRequest{
		ItemName:       input.ItemName,
		QuantityNeeded: input.QuantityNeeded,
		FacilityID:     p.FacilityID,
		FacilityName:   p.DisplayName,
		DistrictID:     p.DistrictID,
		RequestedBy:    requesterName(p),
		Status:         domain.StatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.publisher.PublishRestockRequested(ctx, req, false)
	return req, nil
}

// ListFilter narrows a request listing.
type ListFilter struct {
	Status       string
	FacilityID   string
	FacilityName string
}

// ListRequests returns requests visible to the caller, newest first.
// Facility staff see their own; district authorities see their whole
// district, optionally narrowed by facility id, facility-name substring
// and status.
func (s *RestockService) ListRequests(ctx context.Context, p *principal.Principal, filter ListFilter) ([]*domain.RestockRequest, error) {
	f := domain.RequestFilter{}
	switch p.Role {
	case principal.RolePHC:
		f.FacilityID = p.FacilityID
	case principal.RoleLGA:
		f.DistrictID = p.DistrictID
		if filter.FacilityID != "" {
			f.FacilityHint = filter.FacilityID
		} else if filter.FacilityName != "" {
			f.FacilityHint = filter.FacilityName
		}
	default:
		return nil, errors.Forbidden("unknown role")
	}

	if filter.Status != "" && filter.Status != "all" {
		status := domain.RequestStatus(filter.Status)
		if !status.Valid() {
			return nil, errors.Validation(map[string]string{"status": fmt.Sprintf("unknown status %q", filter.Status)})
		}
		f.Status = status
	}
	return s.requests.List(ctx, f)
}

// ProcessRequestInput carries an approve/decline decision.
type ProcessRequestInput struct {
	Status   string  `json:"status" validate:"required,oneof=approved declined"`
	Comments *string `json:"comments,omitempty"`
}

// ProcessRequest approves or declines a pending request. District
// authorities only; a request outside the caller's district surfaces as
// not found so existence never leaks across districts.
func (s *RestockService) ProcessRequest(ctx context.Context, p *principal.Principal, id int64, input ProcessRequestInput) (*domain.RestockRequest, error) {
	if !p.IsLGA() {
		return nil, errors.Forbidden("only district authorities can approve or decline requests")
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.DistrictID != p.DistrictID {
		return nil, errors.NotFound("restock request")
	}

	newStatus := domain.RequestStatus(input.Status)
	switch newStatus {
	case domain.StatusApproved, domain.StatusDeclined:
	default:
		return nil, errors.Validation(map[string]string{"status": "must be approved or declined"})
	}
	if req.Status != domain.StatusPending {
		return nil, errors.InvalidState(fmt.Sprintf("cannot process request with status %q", req.Status))
	}

	now := time.Now().UTC()
	processedBy := requesterName(p)
	req.Status = newStatus
	if input.Comments != nil && *input.Comments != "" {
		req.Comments = input.Comments
	}
	req.ProcessedBy = &processedBy
	req.ProcessedAt = &now

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, err
	}

	s.publisher.PublishRestockProcessed(ctx, req)
	return req, nil
}

// EditRequestInput carries a partial update to a pending request.
type EditRequestInput struct {
	ItemName       *string `json:"item_name,omitempty"`
	QuantityNeeded *int    `json:"quantity_needed,omitempty" validate:"omitempty,gt=0"`
}

// EditRequest updates item name or quantity on a pending request and
// bumps request_date so district reviewers see it as fresh.
func (s *RestockService) EditRequest(ctx context.Context, p *principal.Principal, id int64, input EditRequestInput) (*domain.RestockRequest, error) {
	req, err := s.ownPendingRequest(ctx, p, id, "edited")
	if err != nil {
		return nil, err
	}

	if input.ItemName != nil && *input.ItemName != "" {
		req.ItemName = *input.ItemName
	}
	if input.QuantityNeeded != nil && *input.QuantityNeeded > 0 {
		req.QuantityNeeded = *input.QuantityNeeded
	}
	req.RequestDate = time.Now().UTC()

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// CancelRequest soft-cancels a pending request, keeping the row with an
// attribution note. Never hard-deletes.
func (s *RestockService) CancelRequest(ctx context.Context, p *principal.Principal, id int64) (*domain.RestockRequest, error) {
	req, err := s.ownPendingRequest(ctx, p, id, "withdrawn")
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("Cancelled by %s", requesterName(p))
	if req.Comments != nil && *req.Comments != "" {
		note = *req.Comments + "\n" + note
	}
	req.Status = domain.StatusCancelled
	req.Comments = &note

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ReceiveRequest confirms delivery of an approved request: the request
// moves to delivered and the matching ledger row gains exactly
// quantity_needed, in one unit of work. A missing ledger row fails the
// whole operation; nothing is created implicitly.
func (s *RestockService) ReceiveRequest(ctx context.Context, p *principal.Principal, id int64) (*domain.RestockRequest, *domain.InventoryItem, error) {
	if !p.IsPHC() {
		return nil, nil, errors.Forbidden("only facility staff can receive stock")
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if req.FacilityID != p.FacilityID {
		return nil, nil, errors.NotFound("restock request")
	}
	if req.Status != domain.StatusApproved {
		return nil, nil, errors.InvalidState(fmt.Sprintf("cannot receive stock with status %q, must be approved", req.Status))
	}
	if _, err := s.items.GetByName(ctx, p.FacilityID, req.ItemName); err != nil {
		return nil, nil, err
	}

	item, err := s.requests.Receive(ctx, req, requesterName(p))
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	receivedBy := requesterName(p)
	req.Status = domain.StatusDelivered
	req.ProcessedBy = &receivedBy
	req.ProcessedAt = &now

	s.publisher.PublishRestockReceived(ctx, req, item)
	s.logger.Info().
		Str("facility_id", p.FacilityID).
		Str("item_name", req.ItemName).
		Int("quantity", req.QuantityNeeded).
		Int("new_stock", item.CurrentStock).
		Msg("restock delivered")
	return req, item, nil
}

// ownPendingRequest fetches a request, checks facility ownership and
// that it is still pending.
func (s *RestockService) ownPendingRequest(ctx context.Context, p *principal.Principal, id int64, action string) (*domain.RestockRequest, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can modify their requests")
	}

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FacilityID != p.FacilityID {
		return nil, errors.NotFound("restock request")
	}
	if req.Status != domain.StatusPending {
		return nil, errors.InvalidState(fmt.Sprintf("request with status %q cannot be %s, only pending requests can", req.Status, action))
	}
	return req, nil
}

// requesterName prefers the operator on shift over the account name.
func requesterName(p *principal.Principal) string {
	if p.OperatorName != "" {
		return p.OperatorName
	}
	return p.DisplayName
}

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/domain"
	apperrors "github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

type fakeItemStore struct {
	items []*domain.InventoryItem
}

func (f *fakeItemStore) ListByFacility(_ context.Context, facilityID string) ([]*domain.InventoryItem, error) {
	out := []*domain.InventoryItem{}
	for _, item := range f.items {
		if item.FacilityID == facilityID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeItemStore) GetByName(_ context.Context, facilityID, itemName string) (*domain.InventoryItem, error) {
	for _, item := range f.items {
		if item.FacilityID == facilityID && item.ItemName == itemName {
			return item, nil
		}
	}
	return nil, apperrors.NotFound("inventory item")
}

func (f *fakeItemStore) Upsert(_ context.Context, item *domain.InventoryItem) error {
	for i, existing := range f.items {
		if existing.FacilityID == item.FacilityID && existing.ItemName == item.ItemName {
			item.ID = existing.ID
			f.items[i] = item
			return nil
		}
	}
	item.ID = int64(len(f.items) + 1)
	f.items = append(f.items, item)
	return nil
}

func (f *fakeItemStore) Delete(_ context.Context, facilityID, itemName string) error {
	for i, item := range f.items {
		if item.FacilityID == facilityID && item.ItemName == itemName {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("inventory item")
}

type fakeRequestStore struct {
	items  *fakeItemStore
	reqs   []*domain.RestockRequest
	nextID int64
}

func (f *fakeRequestStore) Create(_ context.Context, req *domain.RestockRequest) error {
	f.nextID++
	req.ID = f.nextID
	req.RequestDate = time.Now().UTC()
	f.reqs = append(f.reqs, req)
	return nil
}

func (f *fakeRequestStore) CreateBatch(ctx context.Context, reqs []*domain.RestockRequest) error {
	for _, req := range reqs {
		if err := f.Create(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRequestStore) GetByID(_ context.Context, id int64) (*domain.RestockRequest, error) {
	for _, req := range f.reqs {
		if req.ID == id {
			return req, nil
		}
	}
	return nil, apperrors.NotFound("restock request")
}

func (f *fakeRequestStore) List(_ context.Context, filter domain.RequestFilter) ([]*domain.RestockRequest, error) {
	out := []*domain.RestockRequest{}
	for _, req := range f.reqs {
		if filter.FacilityID != "" && req.FacilityID != filter.FacilityID {
			continue
		}
		if filter.DistrictID != "" && req.DistrictID != filter.DistrictID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (f *fakeRequestStore) PendingItemNames(_ context.Context, facilityID string) (map[string]bool, error) {
	pending := map[string]bool{}
	for _, req := range f.reqs {
		if req.FacilityID == facilityID && req.Status == domain.StatusPending {
			pending[req.ItemName] = true
		}
	}
	return pending, nil
}

func (f *fakeRequestStore) Update(_ context.Context, req *domain.RestockRequest) error {
	for i, existing := range f.reqs {
		if existing.ID == req.ID {
			f.reqs[i] = req
			return nil
		}
	}
	return apperrors.NotFound("restock request")
}

func (f *fakeRequestStore) Receive(ctx context.Context, req *domain.RestockRequest, receivedBy string) (*domain.InventoryItem, error) {
	stored, err := f.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if stored.Status != domain.StatusApproved {
		return nil, apperrors.InvalidState("only approved requests can be received")
	}
	item, err := f.items.GetByName(ctx, req.FacilityID, req.ItemName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stored.Status = domain.StatusDelivered
	stored.ProcessedBy = &receivedBy
	stored.ProcessedAt = &now
	item.CurrentStock += req.QuantityNeeded
	item.LastUpdated = now
	return item, nil
}

func newTestService(items *fakeItemStore) (*RestockService, *fakeRequestStore) {
	requests := &fakeRequestStore{items: items}
	svc := NewRestockService(items, requests, nil, logger.New("test", "test"))
	return svc, requests
}

func phcPrincipal() *principal.Principal {
	return &principal.Principal{
		UserID:       "1",
		Role:         principal.RolePHC,
		FacilityID:   "phc-001",
		DistrictID:   "lga-01",
		DisplayName:  "Agege PHC",
		OperatorName: "Nurse Bola",
	}
}

func lgaPrincipal(districtID string) *principal.Principal {
	return &principal.Principal{
		UserID:       "2",
		Role:         principal.RoleLGA,
		FacilityID:   "",
		DistrictID:   districtID,
		DisplayName:  "Agege LGA Office",
		OperatorName: "Supervisor Ade",
	}
}

func paracetamol() *domain.InventoryItem {
	return &domain.InventoryItem{
		ID:                   1,
		FacilityID:           "phc-001",
		FacilityName:         "Agege PHC",
		ItemName:             "Paracetamol",
		ItemType:             "Medication",
		CurrentStock:         100,
		Unit:                 "tablets",
		DailyConsumptionRate: 20,
	}
}

func TestLowStock(t *testing.T) {
	items := &fakeItemStore{items: []*domain.InventoryItem{
		paracetamol(),
		{ID: 2, FacilityID: "phc-001", ItemName: "Gauze", CurrentStock: 500, Unit: "rolls", DailyConsumptionRate: 2},
		{ID: 3, FacilityID: "phc-001", ItemName: "Thermometer", CurrentStock: 3, Unit: "pieces", DailyConsumptionRate: 0},
	}}
	svc, _ := newTestService(items)

	result, err := svc.LowStock(context.Background(), phcPrincipal(), 5)
	require.NoError(t, err)

	// Paracetamol sits exactly on the threshold; Gauze has 250 days,
	// Thermometer has no consumption rate.
	require.Len(t, result, 1)
	assert.Equal(t, "Paracetamol", result[0].ItemName)
	assert.Equal(t, 100, result[0].CurrentStock)
	assert.InDelta(t, 5.0, result[0].DaysRemaining, 0.001)
}

func TestLowStock_ForbiddenForDistrictRole(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})

	_, err := svc.LowStock(context.Background(), lgaPrincipal("lga-01"), 5)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestAutoRestockCheck_CreatesRequest(t *testing.T) {
	items := &fakeItemStore{items: []*domain.InventoryItem{paracetamol()}}
	svc, requests := newTestService(items)

	result, err := svc.AutoRestockCheck(context.Background(), phcPrincipal(), 5)
	require.NoError(t, err)

	assert.Equal(t, 1, result.CreatedRequests)
	assert.Empty(t, result.SkippedItems)

	require.Len(t, requests.reqs, 1)
	req := requests.reqs[0]
	assert.Equal(t, "Paracetamol", req.ItemName)
	assert.Equal(t, 180, req.QuantityNeeded) // 14*20 - 100
	assert.Equal(t, domain.StatusPending, req.Status)
	require.NotNil(t, req.PriorityLevel)
	assert.Equal(t, domain.PriorityMedium, *req.PriorityLevel)
	assert.Equal(t, "Nurse Bola", req.RequestedBy)
}

func TestAutoRestockCheck_SkipsPendingDuplicate(t *testing.T) {
	items := &fakeItemStore{items: []*domain.InventoryItem{paracetamol()}}
	svc, requests := newTestService(items)

	first, err := svc.AutoRestockCheck(context.Background(), phcPrincipal(), 5)
	require.NoError(t, err)
	require.Equal(t, 1, first.CreatedRequests)

	second, err := svc.AutoRestockCheck(context.Background(), phcPrincipal(), 5)
	require.NoError(t, err)

	assert.Equal(t, 0, second.CreatedRequests)
	assert.Equal(t, []string{"Paracetamol"}, second.SkippedItems)
	assert.Len(t, requests.reqs, 1)
}

func TestAutoRestockCheck_IgnoresHealthyItems(t *testing.T) {
	items := &fakeItemStore{items: []*domain.InventoryItem{
		{ID: 1, FacilityID: "phc-001", ItemName: "Gauze", CurrentStock: 500, DailyConsumptionRate: 2},
		{ID: 2, FacilityID: "phc-001", ItemName: "Thermometer", CurrentStock: 3, DailyConsumptionRate: 0},
	}}
	svc, requests := newTestService(items)

	result, err := svc.AutoRestockCheck(context.Background(), phcPrincipal(), 5)
	require.NoError(t, err)

	assert.Equal(t, 0, result.CreatedRequests)
	assert.Empty(t, result.SkippedItems)
	assert.Empty(t, requests.reqs)
}

func TestTargetQuantity(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		stock int
		want  int
	}{
		{"paracetamol scenario", 20, 100, 180},
		{"floor at one", 0.1, 5, 1},
		{"truncates toward zero", 1.5, 10, 11}, // 21 - 10
		{"fractional result truncated", 2.7, 10, 27}, // 37.8 - 10 = 27.8
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetQuantity(tt.rate, tt.stock))
		})
	}
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		days float64
		want domain.Priority
	}{
		{0.5, domain.PriorityHigh},
		{2, domain.PriorityHigh},
		{2.1, domain.PriorityMedium},
		{5, domain.PriorityMedium},
		{5.1, domain.PriorityLow},
		{9, domain.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.1f days", tt.days), func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityFor(tt.days))
		})
	}
}

func TestCreateRequest(t *testing.T) {
	svc, requests := newTestService(&fakeItemStore{})

	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{
		ItemName:       "ORS Sachets",
		QuantityNeeded: 40,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, req.Status)
	assert.Equal(t, "phc-001", req.FacilityID)
	assert.Equal(t, "lga-01", req.DistrictID)
	assert.Nil(t, req.PriorityLevel)
	assert.Len(t, requests.reqs, 1)
}

func TestCreateRequest_ForbiddenForDistrictRole(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})

	_, err := svc.CreateRequest(context.Background(), lgaPrincipal("lga-01"), CreateRequestInput{
		ItemName:       "ORS Sachets",
		QuantityNeeded: 40,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestProcessRequest_Approve(t *testing.T) {
	svc, requests := newTestService(&fakeItemStore{})
	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 50})
	require.NoError(t, err)

	comment := "approved for next supply run"
	updated, err := svc.ProcessRequest(context.Background(), lgaPrincipal("lga-01"), req.ID, ProcessRequestInput{
		Status:   "approved",
		Comments: &comment,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, updated.Status)
	require.NotNil(t, updated.ProcessedBy)
	assert.Equal(t, "Supervisor Ade", *updated.ProcessedBy)
	assert.NotNil(t, updated.ProcessedAt)
	require.NotNil(t, updated.Comments)
	assert.Equal(t, comment, *updated.Comments)
	assert.Equal(t, domain.StatusApproved, requests.reqs[0].Status)
}

func TestProcessRequest_CrossDistrictIsNotFound(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})
	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 50})
	require.NoError(t, err)

	_, err = svc.ProcessRequest(context.Background(), lgaPrincipal("lga-99"), req.ID, ProcessRequestInput{Status: "approved"})

	// NotFound, not Forbidden: existence must not leak across districts.
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.False(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestProcessRequest_AlreadyProcessed(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})
	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 50})
	require.NoError(t, err)

	_, err = svc.ProcessRequest(context.Background(), lgaPrincipal("lga-01"), req.ID, ProcessRequestInput{Status: "declined"})
	require.NoError(t, err)

	_, err = svc.ProcessRequest(context.Background(), lgaPrincipal("lga-01"), req.ID, ProcessRequestInput{Status: "approved"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidState))
}

func TestEditRequest(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})
	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 50})
	require.NoError(t, err)
	created := req.RequestDate

	quantity := 75
	updated, err := svc.EditRequest(context.Background(), phcPrincipal(), req.ID, EditRequestInput{QuantityNeeded: &quantity})
	require.NoError(t, err)

	assert.Equal(t, 75, updated.QuantityNeeded)
	assert.Equal(t, "Paracetamol", updated.ItemName)
	assert.False(t, updated.RequestDate.Before(created))
}

func TestEditRequest_NonPendingIsInvalidState(t *testing.T) {
	svc, requests := newTestService(&fakeItemStore{})
	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 50})
	require.NoError(t, err)

	_, err = svc.ProcessRequest(context.Background(), lgaPrincipal("lga-01"), req.ID, ProcessRequestInput{Status: "approved"})
	require.NoError(t, err)

	quantity := 99
	_, err = svc.EditRequest(context.Background(), phcPrincipal(), req.ID, EditRequestInput{QuantityNeeded: &quantity})

	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidState))
	assert.Equal(t, 50, requests.reqs[0].QuantityNeeded)
}

func TestCancelRequest(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})
	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 50})
	require.NoError(t, err)

	cancelled, err := svc.CancelRequest(context.Background(), phcPrincipal(), req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.Comments)
	assert.Contains(t, *cancelled.Comments, "Cancelled by Nurse Bola")
}

func TestCancelRequest_OtherFacilityIsNotFound(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})
	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 50})
	require.NoError(t, err)

	other := phcPrincipal()
	other.FacilityID = "phc-002"
	_, err = svc.CancelRequest(context.Background(), other, req.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestReceiveRequest(t *testing.T) {
	items := &fakeItemStore{items: []*domain.InventoryItem{paracetamol()}}
	svc, _ := newTestService(items)

	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 180})
	require.NoError(t, err)
	_, err = svc.ProcessRequest(context.Background(), lgaPrincipal("lga-01"), req.ID, ProcessRequestInput{Status: "approved"})
	require.NoError(t, err)

	delivered, item, err := svc.ReceiveRequest(context.Background(), phcPrincipal(), req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDelivered, delivered.Status)
	assert.Equal(t, 280, item.CurrentStock)
	assert.NotNil(t, delivered.ProcessedAt)
}

func TestReceiveRequest_IdempotentByState(t *testing.T) {
	items := &fakeItemStore{items: []*domain.InventoryItem{paracetamol()}}
	svc, _ := newTestService(items)

	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 180})
	require.NoError(t, err)
	_, err = svc.ProcessRequest(context.Background(), lgaPrincipal("lga-01"), req.ID, ProcessRequestInput{Status: "approved"})
	require.NoError(t, err)

	_, _, err = svc.ReceiveRequest(context.Background(), phcPrincipal(), req.ID)
	require.NoError(t, err)

	_, _, err = svc.ReceiveRequest(context.Background(), phcPrincipal(), req.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidState))

	// Incremented exactly once.
	item, err := items.GetByName(context.Background(), "phc-001", "Paracetamol")
	require.NoError(t, err)
	assert.Equal(t, 280, item.CurrentStock)
}

func TestReceiveRequest_PendingIsInvalidState(t *testing.T) {
	items := &fakeItemStore{items: []*domain.InventoryItem{paracetamol()}}
	svc, _ := newTestService(items)

	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 180})
	require.NoError(t, err)

	_, _, err = svc.ReceiveRequest(context.Background(), phcPrincipal(), req.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidState))
}

func TestReceiveRequest_MissingInventoryRowIsNotFound(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})

	req, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Zinc Tablets", QuantityNeeded: 30})
	require.NoError(t, err)
	_, err = svc.ProcessRequest(context.Background(), lgaPrincipal("lga-01"), req.ID, ProcessRequestInput{Status: "approved"})
	require.NoError(t, err)

	_, _, err = svc.ReceiveRequest(context.Background(), phcPrincipal(), req.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestListRequests_ScopedByRole(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})

	_, err := svc.CreateRequest(context.Background(), phcPrincipal(), CreateRequestInput{ItemName: "Paracetamol", QuantityNeeded: 50})
	require.NoError(t, err)
	other := phcPrincipal()
	other.FacilityID = "phc-002"
	other.DistrictID = "lga-02"
	_, err = svc.CreateRequest(context.Background(), other, CreateRequestInput{ItemName: "Gauze", QuantityNeeded: 10})
	require.NoError(t, err)

	own, err := svc.ListRequests(context.Background(), phcPrincipal(), ListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Paracetamol", own[0].ItemName)

	district, err := svc.ListRequests(context.Background(), lgaPrincipal("lga-02"), ListFilter{})
	require.NoError(t, err)
	require.Len(t, district, 1)
	assert.Equal(t, "Gauze", district[0].ItemName)
}

func TestListRequests_InvalidStatusFilter(t *testing.T) {
	svc, _ := newTestService(&fakeItemStore{})

	_, err := svc.ListRequests(context.Background(), phcPrincipal(), ListFilter{Status: "shipped"})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/domain"
	apperrors "github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/testutil"
)

func newRequestRepo(t *testing.T) (*RequestRepository, *testutil.MockDB) {
	mock := testutil.NewMockDB(t)
	return NewRequestRepository(mock.DB, logger.New("test", "test")), mock
}

func TestRequestRepository_Create(t *testing.T) {
	repo, mock := newRequestRepo(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO restock_requests").
		WithArgs("Paracetamol", 180, "phc-001", "Agege PHC", "lga-01", "Nurse Bola",
			domain.StatusPending, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_date"}).AddRow(int64(7), time.Now()))

	req := &domain.RestockRequest{
		ItemName:       "Paracetamol",
		QuantityNeeded: 180,
		FacilityID:     "phc-001",
		FacilityName:   "Agege PHC",
		DistrictID:     "lga-01",
		RequestedBy:    "Nurse Bola",
		Status:         domain.StatusPending,
	}
	err := repo.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(7), req.ID)

	mock.ExpectationsWereMet(t)
}

func TestRequestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newRequestRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 42)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestRequestRepository_CreateBatch_RollsBackOnFailure(t *testing.T) {
	repo, mock := newRequestRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO restock_requests").
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_date"}).AddRow(int64(1), time.Now()))
	mock.ExpectQuery("INSERT INTO restock_requests").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	priority := domain.PriorityHigh
	reqs := []*domain.RestockRequest{
		{ItemName: "Paracetamol", QuantityNeeded: 180, FacilityID: "phc-001", Status: domain.StatusPending, PriorityLevel: &priority},
		{ItemName: "ORS Sachets", QuantityNeeded: 40, FacilityID: "phc-001", Status: domain.StatusPending, PriorityLevel: &priority},
	}
	err := repo.CreateBatch(context.Background(), reqs)
	require.Error(t, err)

	mock.ExpectationsWereMet(t)
}

func TestRequestRepository_Receive(t *testing.T) {
	repo, mock := newRequestRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE restock_requests").
		WithArgs(domain.StatusDelivered, "Nurse Bola", int64(7), domain.StatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE inventory_items").
		WithArgs(180, "phc-001", "Paracetamol").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "facility_id", "facility_name", "item_name", "item_type",
			"current_stock", "unit", "daily_consumption_rate", "last_updated",
		}).AddRow(int64(1), "phc-001", "Agege PHC", "Paracetamol", "Medication", 280, "tablets", 20.0, time.Now()))
	mock.ExpectCommit()

	req := &domain.RestockRequest{
		ID:             7,
		ItemName:       "Paracetamol",
		QuantityNeeded: 180,
		FacilityID:     "phc-001",
		Status:         domain.StatusApproved,
	}
	item, err := repo.Receive(context.Background(), req, "Nurse Bola")
	require.NoError(t, err)
	assert.Equal(t, 280, item.CurrentStock)

	mock.ExpectationsWereMet(t)
}

func TestRequestRepository_Receive_LostStatusRace(t *testing.T) {
	repo, mock := newRequestRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE restock_requests").
		WithArgs(domain.StatusDelivered, "Nurse Bola", int64(7), domain.StatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	req := &domain.RestockRequest{ID: 7, ItemName: "Paracetamol", QuantityNeeded: 180, FacilityID: "phc-001"}
	_, err := repo.Receive(context.Background(), req, "Nurse Bola")
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidState))

	mock.ExpectationsWereMet(t)
}

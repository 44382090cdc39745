package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/database"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
)

const requestColumns = `
	id, item_name, quantity_needed, facility_id, facility_name, district_id,
	requested_by, request_date, status, comments, processed_by, processed_at,
	priority_level`

// RequestRepository persists restock requests.
type RequestRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRequestRepository creates a RequestRepository.
func NewRequestRepository(db *database.DB, log *logger.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: log.WithComponent("restock_request_repository"),
	}
}

const insertRequestQuery = `
	INSERT INTO restock_requests
		(item_name, quantity_needed, facility_id, facility_name, district_id,
		 requested_by, request_date, status, comments, priority_level)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7, $8, $9)
	RETURNING id, request_date`

// Create inserts a single restock request. The partial unique index on
// (facility_id, item_name) WHERE status = 'pending' rejects a second
// open request for the same item.
func (r *RequestRepository) Create(ctx context.Context, req *domain.RestockRequest) error {
	row := r.db.QueryRowxContext(ctx, insertRequestQuery,
		req.ItemName, req.QuantityNeeded, req.FacilityID, req.FacilityName,
		req.DistrictID, req.RequestedBy, req.Status, req.Comments, req.PriorityLevel)
	if err := row.Scan(&req.ID, &req.RequestDate); err != nil {
		return database.MapPQError(err, "failed to create restock request")
	}
	return nil
}

// CreateBatch inserts a set of requests atomically. Used by the
// auto-restock engine so a partial run never leaves a torn batch.
func (r *RequestRepository) CreateBatch(ctx context.Context, reqs []*domain.RestockRequest) error {
	if len(reqs) == 0 {
		return nil
	}
	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, req := range reqs {
			row := tx.QueryRowxContext(ctx, insertRequestQuery,
				req.ItemName, req.QuantityNeeded, req.FacilityID, req.FacilityName,
				req.DistrictID, req.RequestedBy, req.Status, req.Comments, req.PriorityLevel)
			if err := row.Scan(&req.ID, &req.RequestDate); err != nil {
				return database.MapPQError(err, fmt.Sprintf("failed to create restock request for %s", req.ItemName))
			}
		}
		return nil
	})
}

// GetByID returns one restock request.
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*domain.RestockRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM restock_requests WHERE id = $1`

	var req domain.RestockRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("restock request")
		}
		return nil, err
	}
	return &req, nil
}

// List returns requests matching the filter, newest first. Exactly one
// of FacilityID and DistrictID is set by the caller.
func (r *RequestRepository) List(ctx context.Context, filter domain.RequestFilter) ([]*domain.RestockRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM restock_requests WHERE 1=1`
	args := []interface{}{}

	if filter.FacilityID != "" {
		args = append(args, filter.FacilityID)
		query += fmt.Sprintf(" AND facility_id = $%d", len(args))
	}
	if filter.DistrictID != "" {
		args = append(args, filter.DistrictID)
		query += fmt.Sprintf(" AND district_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.FacilityHint != "" {
		args = append(args, "%"+filter.FacilityHint+"%")
		query += fmt.Sprintf(" AND (facility_id ILIKE $%d OR facility_name ILIKE $%d)", len(args), len(args))
	}
	if filter.NameContains != "" {
		args = append(args, "%"+filter.NameContains+"%")
		query += fmt.Sprintf(" AND item_name ILIKE $%d", len(args))
	}
	query += " ORDER BY request_date DESC"

	reqs := []*domain.RestockRequest{}
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, err
	}
	return reqs, nil
}

// PendingItemNames returns the item names with an open pending request
// at a facility. The auto-restock engine skips these.
func (r *RequestRepository) PendingItemNames(ctx context.Context, facilityID string) (map[string]bool, error) {
	names := []string{}
	err := r.db.SelectContext(ctx, &names,
		`SELECT item_name FROM restock_requests WHERE facility_id = $1 AND status = 'pending'`,
		facilityID)
	if err != nil {
		return nil, err
	}
	pending := make(map[string]bool, len(names))
	for _, n := range names {
		pending[n] = true
	}
	return pending, nil
}

// Update persists the mutable fields of a request. Lifecycle rules are
// enforced by the service before this is called.
func (r *RequestRepository) Update(ctx context.Context, req *domain.RestockRequest) error {
	query := `
		UPDATE restock_requests
		SET item_name = $1, quantity_needed = $2, status = $3, comments = $4,
		    processed_by = $5, processed_at = $6, priority_level = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		req.ItemName, req.QuantityNeeded, req.Status, req.Comments,
		req.ProcessedBy, req.ProcessedAt, req.PriorityLevel, req.ID)
	if err != nil {
		return database.MapPQError(err, "failed to update restock request")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("restock request")
	}
	return nil
}

// Receive marks an approved request delivered and folds its quantity
// into the inventory ledger in one transaction. The status guard in the
// first UPDATE makes a concurrent double-receive lose cleanly, and a
// missing ledger row rolls the whole transaction back.
func (r *RequestRepository) Receive(ctx context.Context, req *domain.RestockRequest, receivedBy string) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE restock_requests
			SET status = $1, processed_by = $2, processed_at = NOW()
			WHERE id = $3 AND status = $4`,
			domain.StatusDelivered, receivedBy, req.ID, domain.StatusApproved)
		if err != nil {
			return database.MapPQError(err, "failed to mark request delivered")
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return errors.InvalidState("only approved requests can be received")
		}

		row := tx.QueryRowxContext(ctx, `
			UPDATE inventory_items
			SET current_stock = current_stock + $1, last_updated = NOW()
			WHERE facility_id = $2 AND item_name = $3
			RETURNING id, facility_id, facility_name, item_name, item_type,
			          current_stock, unit, daily_consumption_rate, last_updated`,
			req.QuantityNeeded, req.FacilityID, req.ItemName)
		if err := row.StructScan(&item); err != nil {
			if err == sql.ErrNoRows {
				return errors.NotFound("inventory item")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Package repository contains the PostgreSQL persistence layer for the
// inventory ledger and restock requests.
package repository

import (
	"context"
	"database/sql"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/database"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
)

// ItemRepository persists inventory ledger rows.
type ItemRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewItemRepository creates an ItemRepository.
func NewItemRepository(db *database.DB, log *logger.Logger) *ItemRepository {
	return &ItemRepository{
		db:     db,
		logger: log.WithComponent("inventory_item_repository"),
	}
}

// ListByFacility returns all ledger rows for a facility, newest first.
func (r *ItemRepository) ListByFacility(ctx context.Context, facilityID string) ([]*domain.InventoryItem, error) {
	query := `
		SELECT id, facility_id, facility_name, item_name, item_type,
		       current_stock, unit, daily_consumption_rate, last_updated
		FROM inventory_items
		WHERE facility_id = $1
		ORDER BY last_updated DESC`

	items := []*domain.InventoryItem{}
	if err := r.db.SelectContext(ctx, &items, query, facilityID); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByName returns the ledger row for one item at one facility.
func (r *ItemRepository) GetByName(ctx context.Context, facilityID, itemName string) (*domain.InventoryItem, error) {
	query := `
		SELECT id, facility_id, facility_name, item_name, item_type,
		       current_stock, unit, daily_consumption_rate, last_updated
		FROM inventory_items
		WHERE facility_id = $1 AND item_name = $2`

	var item domain.InventoryItem
	if err := r.db.GetContext(ctx, &item, query, facilityID, itemName); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("inventory item")
		}
		return nil, err
	}
	return &item, nil
}

// Upsert inserts a ledger row or, when the (facility, item) pair already
// exists, replaces its stock level, rate and metadata.
func (r *ItemRepository) Upsert(ctx context.Context, item *domain.InventoryItem) error {
	query := `
		INSERT INTO inventory_items
			(facility_id, facility_name, item_name, item_type,
			 current_stock, unit, daily_consumption_rate, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (facility_id, item_name) DO UPDATE SET
			item_type = EXCLUDED.item_type,
			current_stock = EXCLUDED.current_stock,
			unit = EXCLUDED.unit,
			daily_consumption_rate = EXCLUDED.daily_consumption_rate,
			last_updated = NOW()
		RETURNING id, last_updated`

	row := r.db.QueryRowxContext(ctx, query,
		item.FacilityID, item.FacilityName, item.ItemName, item.ItemType,
		item.CurrentStock, item.Unit, item.DailyConsumptionRate)
	if err := row.Scan(&item.ID, &item.LastUpdated); err != nil {
		return database.MapPQError(err, "failed to upsert inventory item")
	}
	return nil
}

// Delete removes one ledger row.
func (r *ItemRepository) Delete(ctx context.Context, facilityID, itemName string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM inventory_items WHERE facility_id = $1 AND item_name = $2`,
		facilityID, itemName)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("inventory item")
	}
	return nil
}

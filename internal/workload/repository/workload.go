// Package repository contains the PostgreSQL persistence layer for
// daily workloads, facilities and raw workload logs.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/workload/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/database"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
)

// WorkloadRepository persists daily workloads, facility records and raw
// workload logs.
type WorkloadRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewWorkloadRepository creates a WorkloadRepository.
func NewWorkloadRepository(db *database.DB, log *logger.Logger) *WorkloadRepository {
	return &WorkloadRepository{
		db:     db,
		logger: log.WithComponent("workload_repository"),
	}
}

// UpsertDaily inserts today's patient count or overwrites it when the
// facility already submitted for that date.
func (r *WorkloadRepository) UpsertDaily(ctx context.Context, w *domain.DailyWorkload) error {
	query := `
		INSERT INTO daily_workloads (facility_id, date, patient_count, capacity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (facility_id, date) DO UPDATE SET
			patient_count = EXCLUDED.patient_count
		RETURNING id, capacity`

	row := r.db.QueryRowxContext(ctx, query, w.FacilityID, w.Date, w.PatientCount, w.Capacity)
	if err := row.Scan(&w.ID, &w.Capacity); err != nil {
		return database.MapPQError(err, "failed to upsert daily workload")
	}
	return nil
}

// RecentDaily returns the most recent daily rows for a facility, newest
// first, capped at limit.
func (r *WorkloadRepository) RecentDaily(ctx context.Context, facilityID string, limit int) ([]*domain.DailyWorkload, error) {
	query := `
		SELECT id, facility_id, date, patient_count, capacity
		FROM daily_workloads
		WHERE facility_id = $1
		ORDER BY date DESC
		LIMIT $2`

	rows := []*domain.DailyWorkload{}
	if err := r.db.SelectContext(ctx, &rows, query, facilityID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetFacility returns the facility record.
func (r *WorkloadRepository) GetFacility(ctx context.Context, facilityID string) (*domain.Facility, error) {
	query := `
		SELECT facility_id, facility_name, district_id, capacity,
		       consecutive_overload_days, created_at
		FROM facilities
		WHERE facility_id = $1`

	var facility domain.Facility
	if err := r.db.GetContext(ctx, &facility, query, facilityID); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("facility")
		}
		return nil, err
	}
	return &facility, nil
}

// CreateFacility registers a facility record. Called once at signup.
func (r *WorkloadRepository) CreateFacility(ctx context.Context, f *domain.Facility) error {
	query := `
		INSERT INTO facilities (facility_id, facility_name, district_id, capacity, consecutive_overload_days)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (facility_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query,
		f.FacilityID, f.FacilityName, f.DistrictID, f.Capacity, f.ConsecutiveOverloadDays); err != nil {
		return database.MapPQError(err, "failed to create facility")
	}
	return nil
}

// SetOverloadDays persists the consecutive overload counter.
func (r *WorkloadRepository) SetOverloadDays(ctx context.Context, facilityID string, days int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE facilities SET consecutive_overload_days = $1 WHERE facility_id = $2`,
		days, facilityID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("facility")
	}
	return nil
}

// InsertLog appends one raw workload sample.
func (r *WorkloadRepository) InsertLog(ctx context.Context, log *domain.WorkloadLog) error {
	query := `
		INSERT INTO workload_logs (facility_id, queue_count, avg_wait_minutes, completed_visits, recorded_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, recorded_at`

	row := r.db.QueryRowxContext(ctx, query,
		log.FacilityID, log.QueueCount, log.AvgWaitMinutes, log.CompletedVisits)
	if err := row.Scan(&log.ID, &log.RecordedAt); err != nil {
		return database.MapPQError(err, "failed to insert workload log")
	}
	return nil
}

// RecentLogs returns up to limit of the most recent samples for a
// facility, ordered oldest first so sample index i maps to time order.
func (r *WorkloadRepository) RecentLogs(ctx context.Context, facilityID string, limit int) ([]*domain.WorkloadLog, error) {
	query := `
		SELECT id, facility_id, queue_count, avg_wait_minutes, completed_visits, recorded_at
		FROM (
			SELECT id, facility_id, queue_count, avg_wait_minutes, completed_visits, recorded_at
			FROM workload_logs
			WHERE facility_id = $1
			ORDER BY recorded_at DESC
			LIMIT $2
		) recent
		ORDER BY recorded_at ASC`

	logs := []*domain.WorkloadLog{}
	if err := r.db.SelectContext(ctx, &logs, query, facilityID, limit); err != nil {
		return nil, err
	}
	return logs, nil
}

// PurgeLogsBefore deletes raw samples recorded before the cutoff date.
// Returns how many rows went away.
func (r *WorkloadRepository) PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM workload_logs WHERE recorded_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

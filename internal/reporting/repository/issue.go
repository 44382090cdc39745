// Package repository contains the PostgreSQL persistence layer for
// issues and monthly reports.
package repository

import (
	"context"
	"database/sql"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/database"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
)

// IssueRepository persists facility issues.
type IssueRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewIssueRepository creates an IssueRepository.
func NewIssueRepository(db *database.DB, log *logger.Logger) *IssueRepository {
	return &IssueRepository{
		db:     db,
		logger: log.WithComponent("issue_repository"),
	}
}

// Create inserts an issue.
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	query := `
		INSERT INTO issues (facility_id, facility_name, district_id, category, priority, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	row := r.db.QueryRowxContext(ctx, query,
		issue.FacilityID, issue.FacilityName, issue.DistrictID,
		issue.Category, issue.Priority, issue.Description, issue.Status)
	if err := row.Scan(&issue.ID, &issue.CreatedAt); err != nil {
		return database.MapPQError(err, "failed to create issue")
	}
	return nil
}

// GetByID returns one issue.
func (r *IssueRepository) GetByID(ctx context.Context, id int64) (*domain.Issue, error) {
	query := `
		SELECT id, facility_id, facility_name, district_id, category, priority, description, status, created_at
		FROM issues
		WHERE id = $1`

	var issue domain.Issue
	if err := r.db.GetContext(ctx, &issue, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("issue")
		}
		return nil, err
	}
	return &issue, nil
}

// ListByFacility returns a facility's issues, newest first.
func (r *IssueRepository) ListByFacility(ctx context.Context, facilityID string) ([]*domain.Issue, error) {
	return r.list(ctx, `facility_id = $1`, facilityID)
}

// ListByDistrict returns every issue in a district, newest first.
func (r *IssueRepository) ListByDistrict(ctx context.Context, districtID string) ([]*domain.Issue, error) {
	return r.list(ctx, `district_id = $1`, districtID)
}

func (r *IssueRepository) list(ctx context.Context, where string, arg interface{}) ([]*domain.Issue, error) {
	query := `
		SELECT id, facility_id, facility_name, district_id, category, priority, description, status, created_at
		FROM issues
		WHERE ` + where + `
		ORDER BY created_at DESC`

	issues := []*domain.Issue{}
	if err := r.db.SelectContext(ctx, &issues, query, arg); err != nil {
		return nil, err
	}
	return issues, nil
}

// OpenExists reports whether the facility already has an open issue in
// the category. The staffing-shortage dedup hangs off this.
func (r *IssueRepository) OpenExists(ctx context.Context, facilityID, category string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM issues WHERE facility_id = $1 AND category = $2 AND status = $3)`,
		facilityID, category, domain.IssueOpen)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpdateStatus persists a status transition.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id int64, status domain.IssueStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE issues SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("issue")
	}
	return nil
}

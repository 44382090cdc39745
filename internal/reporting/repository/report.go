package repository

import (
	"context"
	"database/sql"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/database"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
)

const reportColumns = `id, facility_id, facility_name, district_id, month, content, status, created_at`

// ReportRepository persists monthly reports and the aggregate counts
// their narratives are generated from.
type ReportRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewReportRepository creates a ReportRepository.
func NewReportRepository(db *database.DB, log *logger.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: log.WithComponent("report_repository"),
	}
}

// Create inserts a draft report. The unique index on (facility_id,
// month) rejects a second draft for the same month.
func (r *ReportRepository) Create(ctx context.Context, report *domain.MonthlyReport) error {
	query := `
		INSERT INTO monthly_reports (facility_id, facility_name, district_id, month, content, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	row := r.db.QueryRowxContext(ctx, query,
		report.FacilityID, report.FacilityName, report.DistrictID,
		report.Month, report.Content, report.Status)
	if err := row.Scan(&report.ID, &report.CreatedAt); err != nil {
		return database.MapPQError(err, "failed to create monthly report")
	}
	return nil
}

// GetByID returns one report.
func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*domain.MonthlyReport, error) {
	var report domain.MonthlyReport
	err := r.db.GetContext(ctx, &report,
		`SELECT `+reportColumns+` FROM monthly_reports WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("report")
		}
		return nil, err
	}
	return &report, nil
}

// GetByFacilityMonth returns the facility's report for one month, or
// nil when none exists yet.
func (r *ReportRepository) GetByFacilityMonth(ctx context.Context, facilityID, month string) (*domain.MonthlyReport, error) {
	var report domain.MonthlyReport
	err := r.db.GetContext(ctx, &report,
		`SELECT `+reportColumns+` FROM monthly_reports WHERE facility_id = $1 AND month = $2`,
		facilityID, month)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// ListByFacility returns a facility's reports, most recent month first.
func (r *ReportRepository) ListByFacility(ctx context.Context, facilityID string) ([]*domain.MonthlyReport, error) {
	reports := []*domain.MonthlyReport{}
	err := r.db.SelectContext(ctx, &reports,
		`SELECT `+reportColumns+` FROM monthly_reports WHERE facility_id = $1 ORDER BY month DESC`,
		facilityID)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// ListSubmittedByDistrict returns submitted reports in a district,
// newest first. Drafts stay invisible to the district authority.
func (r *ReportRepository) ListSubmittedByDistrict(ctx context.Context, districtID string) ([]*domain.MonthlyReport, error) {
	reports := []*domain.MonthlyReport{}
	err := r.db.SelectContext(ctx, &reports,
		`SELECT `+reportColumns+` FROM monthly_reports WHERE district_id = $1 AND status = $2 ORDER BY created_at DESC`,
		districtID, domain.ReportSubmitted)
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Update persists content and status.
func (r *ReportRepository) Update(ctx context.Context, report *domain.MonthlyReport) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE monthly_reports SET content = $1, status = $2 WHERE id = $3`,
		report.Content, report.Status, report.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("report")
	}
	return nil
}

// FacilityCounts are the aggregates the generated narrative reads.
type FacilityCounts struct {
	RestockRequests int
	Issues          int
	LowStockItems   int
}

// CountsForFacility gathers the aggregates feeding a report narrative.
// Low stock here is the fixed below-ten-units cut used by the summary
// text, not the engine's threshold-days rule.
func (r *ReportRepository) CountsForFacility(ctx context.Context, facilityID string) (*FacilityCounts, error) {
	counts := &FacilityCounts{}

	err := r.db.GetContext(ctx, &counts.RestockRequests,
		`SELECT COUNT(*) FROM restock_requests WHERE facility_id = $1`, facilityID)
	if err != nil {
		return nil, err
	}
	err = r.db.GetContext(ctx, &counts.Issues,
		`SELECT COUNT(*) FROM issues WHERE facility_id = $1`, facilityID)
	if err != nil {
		return nil, err
	}
	err = r.db.GetContext(ctx, &counts.LowStockItems,
		`SELECT COUNT(*) FROM inventory_items WHERE facility_id = $1 AND current_stock < 10`, facilityID)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

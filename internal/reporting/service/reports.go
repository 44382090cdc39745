package service

import (
	"context"
	"fmt"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/events"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/repository"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// ReportStore is the persistence the report service depends on.
type ReportStore interface {
	Create(ctx context.Context, report *domain.MonthlyReport) error
	GetByID(ctx context.Context, id int64) (*domain.MonthlyReport, error)
	GetByFacilityMonth(ctx context.Context, facilityID, month string) (*domain.MonthlyReport, error)
	ListByFacility(ctx context.Context, facilityID string) ([]*domain.MonthlyReport, error)
	ListSubmittedByDistrict(ctx context.Context, districtID string) ([]*domain.MonthlyReport, error)
	Update(ctx context.Context, report *domain.MonthlyReport) error
	CountsForFacility(ctx context.Context, facilityID string) (*repository.FacilityCounts, error)
}

// ReportService owns monthly report generation and lifecycle.
type ReportService struct {
	store     ReportStore
	publisher *events.ReportingEventPublisher
	logger    *logger.Logger
}

// NewReportService creates a ReportService. publisher may be nil.
func NewReportService(store ReportStore, publisher *events.ReportingEventPublisher, log *logger.Logger) *ReportService {
	return &ReportService{
		store:     store,
		publisher: publisher,
		logger:    log.WithComponent("report_service"),
	}
}

// GenerateInput names the month to report on, e.g. "2026-08".
type GenerateInput struct {
	Month string `json:"month" validate:"required"`
}

// Generate creates the facility's draft for the month, its narrative
// filled from aggregate counts. Generating again for the same month
// returns the existing report unchanged.
func (s *ReportService) Generate(ctx context.Context, p *principal.Principal, input GenerateInput) (*domain.MonthlyReport, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can generate reports")
	}

	existing, err := s.store.GetByFacilityMonth(ctx, p.FacilityID, input.Month)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	counts, err := s.store.CountsForFacility(ctx, p.FacilityID)
	if err != nil {
		return nil, err
	}

	report := &domain.MonthlyReport{
		FacilityID:   p.FacilityID,
		FacilityName: p.DisplayName,
		DistrictID:   p.DistrictID,
		Month:        input.Month,
		Content:      narrative(input.Month, counts),
		Status:       domain.ReportDraft,
	}
	if err := s.store.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// narrative renders the template-filled executive summary.
func narrative(month string, counts *repository.FacilityCounts) string {
	return fmt.Sprintf(
		"**Monthly Executive Summary - %s**\n\n"+
			"**Operational Overview:**\n"+
			"The facility operated at standard capacity this month. We processed %d inventory restock requests to maintain supply levels. "+
			"Currently, we have %d items flagged as low stock that require attention.\n\n"+
			"**Infrastructure & Issues:**\n"+
			"We logged %d facility issues this month. Key areas of concern include Water Supply and Power stability.\n\n"+
			"**Recommendations:**\n"+
			"We request the LGA to expedite the approval of pending drug orders to ensure continuous care.",
		month, counts.RestockRequests, counts.LowStockItems, counts.Issues)
}

// List returns reports visible to the caller: facilities see their own
// drafts and submissions, district authorities see only submitted
// reports in their district.
func (s *ReportService) List(ctx context.Context, p *principal.Principal) ([]*domain.MonthlyReport, error) {
	switch p.Role {
	case principal.RolePHC:
		return s.store.ListByFacility(ctx, p.FacilityID)
	case principal.RoleLGA:
		return s.store.ListSubmittedByDistrict(ctx, p.DistrictID)
	default:
		return nil, errors.Forbidden("unknown role")
	}
}

// UpdateContentInput carries an edited narrative.
type UpdateContentInput struct {
	Content string `json:"content" validate:"required"`
}

// UpdateContent replaces the narrative of a draft. Submitted reports
// are read-only.
func (s *ReportService) UpdateContent(ctx context.Context, p *principal.Principal, id int64, input UpdateContentInput) (*domain.MonthlyReport, error) {
	report, err := s.ownReport(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.ReportDraft {
		return nil, errors.InvalidState("submitted reports can no longer be edited")
	}

	report.Content = input.Content
	if err := s.store.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Submit hands the draft to the district authority. Terminal.
func (s *ReportService) Submit(ctx context.Context, p *principal.Principal, id int64) (*domain.MonthlyReport, error) {
	report, err := s.ownReport(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.ReportDraft {
		return nil, errors.InvalidState("report has already been submitted")
	}

	report.Status = domain.ReportSubmitted
	if err := s.store.Update(ctx, report); err != nil {
		return nil, err
	}

	s.publisher.PublishReportSubmitted(ctx, report)
	return report, nil
}

func (s *ReportService) ownReport(ctx context.Context, p *principal.Principal, id int64) (*domain.MonthlyReport, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can modify their reports")
	}

	report, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.FacilityID != p.FacilityID {
		return nil, errors.NotFound("report")
	}
	return report, nil
}

// Package service implements issue tracking and monthly report
// generation.
package service

import (
	"context"
	"fmt"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/events"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// staffingShortageDescription is the fixed text on automated overload
// issues.
const staffingShortageDescription = "AUTOMATED ALERT: This facility has exceeded its patient " +
	"capacity for three consecutive days. Immediate staffing support is required."

// IssueStore is the persistence the issue service depends on.
type IssueStore interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id int64) (*domain.Issue, error)
	ListByFacility(ctx context.Context, facilityID string) ([]*domain.Issue, error)
	ListByDistrict(ctx context.Context, districtID string) ([]*domain.Issue, error)
	OpenExists(ctx context.Context, facilityID, category string) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status domain.IssueStatus) error
}

// IssueService owns the issue lifecycle, including the automated
// staffing-shortage path the workload forecaster triggers.
type IssueService struct {
	store     IssueStore
	publisher *events.ReportingEventPublisher
	logger    *logger.Logger
}

// NewIssueService creates an IssueService. publisher may be nil.
func NewIssueService(store IssueStore, publisher *events.ReportingEventPublisher, log *logger.Logger) *IssueService {
	return &IssueService{
		store:     store,
		publisher: publisher,
		logger:    log.WithComponent("issue_service"),
	}
}

// CreateIssueInput carries an operator-reported issue.
type CreateIssueInput struct {
	Category    string `json:"category" validate:"required"`
	Priority    string `json:"priority" validate:"required,oneof=Low Medium High"`
	Description string `json:"description" validate:"required"`
}

// Create records an operator-reported issue, always Open.
func (s *IssueService) Create(ctx context.Context, p *principal.Principal, input CreateIssueInput) (*domain.Issue, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can report issues")
	}

	issue := &domain.Issue{
		FacilityID:   p.FacilityID,
		FacilityName: p.DisplayName,
		DistrictID:   p.DistrictID,
		Category:     input.Category,
		Priority:     input.Priority,
		Description:  input.Description,
		Status:       domain.IssueOpen,
	}
	if err := s.store.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.publisher.PublishIssueOpened(ctx, issue, false)
	return issue, nil
}

// RaiseStaffingShortage opens an automated high-priority staffing issue
// unless the facility already has an open one. Returns nil when the
// open-issue dedup suppressed creation.
func (s *IssueService) RaiseStaffingShortage(ctx context.Context, facilityID, facilityName, districtID string) (*domain.Issue, error) {
	exists, err := s.store.OpenExists(ctx, facilityID, domain.StaffingShortageCategory)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	issue := &domain.Issue{
		FacilityID:   facilityID,
		FacilityName: facilityName,
		DistrictID:   districtID,
		Category:     domain.StaffingShortageCategory,
		Priority:     "High",
		Description:  staffingShortageDescription,
		Status:       domain.IssueOpen,
	}
	if err := s.store.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.publisher.PublishIssueOpened(ctx, issue, true)
	return issue, nil
}

// List returns issues visible to the caller, newest first.
func (s *IssueService) List(ctx context.Context, p *principal.Principal) ([]*domain.Issue, error) {
	switch p.Role {
	case principal.RolePHC:
		return s.store.ListByFacility(ctx, p.FacilityID)
	case principal.RoleLGA:
		return s.store.ListByDistrict(ctx, p.DistrictID)
	default:
		return nil, errors.Forbidden("unknown role")
	}
}

// UpdateStatusInput carries an issue status transition.
type UpdateStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus advances an issue's lifecycle. District authorities
// only; issues outside the caller's district surface as not found.
// Transitions only move forward: Open, In Progress, Resolved.
func (s *IssueService) UpdateStatus(ctx context.Context, p *principal.Principal, id int64, input UpdateStatusInput) (*domain.Issue, error) {
	if !p.IsLGA() {
		return nil, errors.Forbidden("only district authorities can update issue status")
	}

	issue, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.DistrictID != p.DistrictID {
		return nil, errors.NotFound("issue")
	}

	newStatus := domain.IssueStatus(input.Status)
	if !newStatus.Valid() {
		return nil, errors.Validation(map[string]string{"status": fmt.Sprintf("unknown status %q", input.Status)})
	}
	if issueRank(newStatus) < issueRank(issue.Status) {
		return nil, errors.InvalidState(fmt.Sprintf("issue cannot move from %q back to %q", issue.Status, newStatus))
	}

	if err := s.store.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	issue.Status = newStatus
	return issue, nil
}

func issueRank(s domain.IssueStatus) int {
	switch s {
	case domain.IssueOpen:
		return 0
	case domain.IssueInProgress:
		return 1
	case domain.IssueResolved:
		return 2
	}
	return -1
}

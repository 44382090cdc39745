package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/repository"
	apperrors "github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

type fakeIssueStore struct {
	issues []*domain.Issue
	nextID int64
}

func (f *fakeIssueStore) Create(_ context.Context, issue *domain.Issue) error {
	f.nextID++
	issue.ID = f.nextID
	issue.CreatedAt = time.Now().UTC()
	f.issues = append(f.issues, issue)
	return nil
}

func (f *fakeIssueStore) GetByID(_ context.Context, id int64) (*domain.Issue, error) {
	for _, issue := range f.issues {
		if issue.ID == id {
			return issue, nil
		}
	}
	return nil, apperrors.NotFound("issue")
}

func (f *fakeIssueStore) ListByFacility(_ context.Context, facilityID string) ([]*domain.Issue, error) {
	out := []*domain.Issue{}
	for _, issue := range f.issues {
		if issue.FacilityID == facilityID {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (f *fakeIssueStore) ListByDistrict(_ context.Context, districtID string) ([]*domain.Issue, error) {
	out := []*domain.Issue{}
	for _, issue := range f.issues {
		if issue.DistrictID == districtID {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (f *fakeIssueStore) OpenExists(_ context.Context, facilityID, category string) (bool, error) {
	for _, issue := range f.issues {
		if issue.FacilityID == facilityID && issue.Category == category && issue.Status == domain.IssueOpen {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeIssueStore) UpdateStatus(_ context.Context, id int64, status domain.IssueStatus) error {
	for _, issue := range f.issues {
		if issue.ID == id {
			issue.Status = status
			return nil
		}
	}
	return apperrors.NotFound("issue")
}

type fakeReportStore struct {
	reports []*domain.MonthlyReport
	counts  repository.FacilityCounts
	nextID  int64
}

func (f *fakeReportStore) Create(_ context.Context, report *domain.MonthlyReport) error {
	f.nextID++
	report.ID = f.nextID
	report.CreatedAt = time.Now().UTC()
	f.reports = append(f.reports, report)
	return nil
}

func (f *fakeReportStore) GetByID(_ context.Context, id int64) (*domain.MonthlyReport, error) {
	for _, report := range f.reports {
		if report.ID == id {
			return report, nil
		}
	}
	return nil, apperrors.NotFound("report")
}

func (f *fakeReportStore) GetByFacilityMonth(_ context.Context, facilityID, month string) (*domain.MonthlyReport, error) {
	for _, report := range f.reports {
		if report.FacilityID == facilityID && report.Month == month {
			return report, nil
		}
	}
	return nil, nil
}

func (f *fakeReportStore) ListByFacility(_ context.Context, facilityID string) ([]*domain.MonthlyReport, error) {
	out := []*domain.MonthlyReport{}
	for _, report := range f.reports {
		if report.FacilityID == facilityID {
			out = append(out, report)
		}
	}
	return out, nil
}

func (f *fakeReportStore) ListSubmittedByDistrict(_ context.Context, districtID string) ([]*domain.MonthlyReport, error) {
	out := []*domain.MonthlyReport{}
	for _, report := range f.reports {
		if report.DistrictID == districtID && report.Status == domain.ReportSubmitted {
			out = append(out, report)
		}
	}
	return out, nil
}

func (f *fakeReportStore) Update(_ context.Context, report *domain.MonthlyReport) error {
	for i, existing := range f.reports {
		if existing.ID == report.ID {
			f.reports[i] = report
			return nil
		}
	}
	return apperrors.NotFound("report")
}

func (f *fakeReportStore) CountsForFacility(_ context.Context, _ string) (*repository.FacilityCounts, error) {
	counts := f.counts
	return &counts, nil
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
		UserID:      "2",
		Role:        principal.RoleLGA,
		DistrictID:  districtID,
		DisplayName: "Agege LGA Office",
	}
}

func TestIssueService_CreateAndList(t *testing.T) {
	store := &fakeIssueStore{}
	svc := NewIssueService(store, nil, logger.New("test", "test"))

	issue, err := svc.Create(context.Background(), phcPrincipal(), CreateIssueInput{
		Category:    "Water Supply",
		Priority:    "Medium",
		Description: "Borehole pump failed",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.IssueOpen, issue.Status)

	own, err := svc.List(context.Background(), phcPrincipal())
	require.NoError(t, err)
	assert.Len(t, own, 1)

	district, err := svc.List(context.Background(), lgaPrincipal("lga-01"))
	require.NoError(t, err)
	assert.Len(t, district, 1)

	elsewhere, err := svc.List(context.Background(), lgaPrincipal("lga-99"))
	require.NoError(t, err)
	assert.Empty(t, elsewhere)
}

func TestIssueService_RaiseStaffingShortage_Dedup(t *testing.T) {
	store := &fakeIssueStore{}
	svc := NewIssueService(store, nil, logger.New("test", "test"))

	issue, err := svc.RaiseStaffingShortage(context.Background(), "phc-001", "Agege PHC", "lga-01")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, domain.StaffingShortageCategory, issue.Category)
	assert.Equal(t, "High", issue.Priority)

	// Second raise while the first stays open is suppressed.
	dup, err := svc.RaiseStaffingShortage(context.Background(), "phc-001", "Agege PHC", "lga-01")
	require.NoError(t, err)
	assert.Nil(t, dup)
	assert.Len(t, store.issues, 1)

	// Once resolved, a fresh streak may raise a new one.
	_, err = svc.UpdateStatus(context.Background(), lgaPrincipal("lga-01"), issue.ID, UpdateStatusInput{Status: "Resolved"})
	require.NoError(t, err)

	fresh, err := svc.RaiseStaffingShortage(context.Background(), "phc-001", "Agege PHC", "lga-01")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}

func TestIssueService_UpdateStatus(t *testing.T) {
	store := &fakeIssueStore{}
	svc := NewIssueService(store, nil, logger.New("test", "test"))
	issue, err := svc.Create(context.Background(), phcPrincipal(), CreateIssueInput{
		Category: "Power", Priority: "High", Description: "Generator down",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), lgaPrincipal("lga-01"), issue.ID, UpdateStatusInput{Status: "In Progress"})
	require.NoError(t, err)
	assert.Equal(t, domain.IssueInProgress, updated.Status)

	// Backwards transitions are rejected.
	_, err = svc.UpdateStatus(context.Background(), lgaPrincipal("lga-01"), issue.ID, UpdateStatusInput{Status: "Open"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidState))

	// Cross-district lookups surface as not found.
	_, err = svc.UpdateStatus(context.Background(), lgaPrincipal("lga-99"), issue.ID, UpdateStatusInput{Status: "Resolved"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	// Facilities cannot advance status at all.
	_, err = svc.UpdateStatus(context.Background(), phcPrincipal(), issue.ID, UpdateStatusInput{Status: "Resolved"})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestReportService_Generate(t *testing.T) {
	store := &fakeReportStore{counts: repository.FacilityCounts{RestockRequests: 4, Issues: 2, LowStockItems: 3}}
	svc := NewReportService(store, nil, logger.New("test", "test"))

	report, err := svc.Generate(context.Background(), phcPrincipal(), GenerateInput{Month: "2026-08"})
	require.NoError(t, err)

	assert.Equal(t, domain.ReportDraft, report.Status)
	assert.Contains(t, report.Content, "2026-08")
	assert.Contains(t, report.Content, "4 inventory restock requests")
	assert.Contains(t, report.Content, "3 items flagged as low stock")
	assert.Contains(t, report.Content, "2 facility issues")

	// Generating again returns the same draft, not a second one.
	again, err := svc.Generate(context.Background(), phcPrincipal(), GenerateInput{Month: "2026-08"})
	require.NoError(t, err)
	assert.Equal(t, report.ID, again.ID)
	assert.Len(t, store.reports, 1)
}

func TestReportService_EditWhileDraftOnly(t *testing.T) {
	store := &fakeReportStore{}
	svc := NewReportService(store, nil, logger.New("test", "test"))
	report, err := svc.Generate(context.Background(), phcPrincipal(), GenerateInput{Month: "2026-08"})
	require.NoError(t, err)

	edited, err := svc.UpdateContent(context.Background(), phcPrincipal(), report.ID, UpdateContentInput{Content: "Revised narrative"})
	require.NoError(t, err)
	assert.Equal(t, "Revised narrative", edited.Content)

	_, err = svc.Submit(context.Background(), phcPrincipal(), report.ID)
	require.NoError(t, err)

	_, err = svc.UpdateContent(context.Background(), phcPrincipal(), report.ID, UpdateContentInput{Content: "Too late"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidState))
}

func TestReportService_SubmitIsTerminal(t *testing.T) {
	store := &fakeReportStore{}
	svc := NewReportService(store, nil, logger.New("test", "test"))
	report, err := svc.Generate(context.Background(), phcPrincipal(), GenerateInput{Month: "2026-07"})
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), phcPrincipal(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportSubmitted, submitted.Status)

	_, err = svc.Submit(context.Background(), phcPrincipal(), report.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidState))
}

func TestReportService_ListScopedByRole(t *testing.T) {
	store := &fakeReportStore{}
	svc := NewReportService(store, nil, logger.New("test", "test"))

	draft, err := svc.Generate(context.Background(), phcPrincipal(), GenerateInput{Month: "2026-06"})
	require.NoError(t, err)
	submitted, err := svc.Generate(context.Background(), phcPrincipal(), GenerateInput{Month: "2026-07"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), phcPrincipal(), submitted.ID)
	require.NoError(t, err)

	own, err := svc.List(context.Background(), phcPrincipal())
	require.NoError(t, err)
	assert.Len(t, own, 2)

	// The district authority never sees drafts.
	district, err := svc.List(context.Background(), lgaPrincipal("lga-01"))
	require.NoError(t, err)
	require.Len(t, district, 1)
	assert.NotEqual(t, draft.ID, district[0].ID)
}

func TestReportService_OtherFacilityIsNotFound(t *testing.T) {
	store := &fakeReportStore{}
	svc := NewReportService(store, nil, logger.New("test", "test"))
	report, err := svc.Generate(context.Background(), phcPrincipal(), GenerateInput{Month: "2026-08"})
	require.NoError(t, err)

	other := phcPrincipal()
	other.FacilityID = "phc-002"
	_, err = svc.Submit(context.Background(), other, report.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

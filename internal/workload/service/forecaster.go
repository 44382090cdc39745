// Package service implements the workload forecaster: daily submissions,
// overload detection and the long-horizon trend forecast.
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	reportingdomain "github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/workload/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/workload/events"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

const (
	// OverloadStreakDays is the exact streak window that raises an
	// automated staffing issue. The check fires only on a full window:
	// fewer days of history never trigger it.
	OverloadStreakDays = 3

	// ForecastBuffer is the headroom multiplier on the short forecast.
	ForecastBuffer = 1.10

	// LogSampleLimit caps how many raw samples feed the trend fit.
	LogSampleLimit = 14

	// MinTrendSamples is the least history the trend fit accepts.
	MinTrendSamples = 3
)

// WorkloadStore is the persistence the forecaster depends on.
type WorkloadStore interface {
	UpsertDaily(ctx context.Context, w *domain.DailyWorkload) error
	RecentDaily(ctx context.Context, facilityID string, limit int) ([]*domain.DailyWorkload, error)
	GetFacility(ctx context.Context, facilityID string) (*domain.Facility, error)
	SetOverloadDays(ctx context.Context, facilityID string, days int) error
	InsertLog(ctx context.Context, log *domain.WorkloadLog) error
	RecentLogs(ctx context.Context, facilityID string, limit int) ([]*domain.WorkloadLog, error)
}

// IssueRaiser opens automated staffing issues. Deduplication by open
// issue lives behind this boundary; the returned issue is nil when an
// open one already exists.
type IssueRaiser interface {
	RaiseStaffingShortage(ctx context.Context, facilityID, facilityName, districtID string) (*reportingdomain.Issue, error)
}

// WorkloadService ingests daily counts and produces both forecasts.
type WorkloadService struct {
	store     WorkloadStore
	issues    IssueRaiser
	publisher *events.WorkloadEventPublisher
	capacity  int
	logger    *logger.Logger
}

// NewWorkloadService creates a WorkloadService. publisher may be nil;
// capacity is the fixed per-facility daily capacity.
func NewWorkloadService(store WorkloadStore, issues IssueRaiser, publisher *events.WorkloadEventPublisher, capacity int, log *logger.Logger) *WorkloadService {
	return &WorkloadService{
		store:     store,
		issues:    issues,
		publisher: publisher,
		capacity:  capacity,
		logger:    log.WithComponent("workload_service"),
	}
}

// SubmitDailyInput carries a facility's patient count for today.
type SubmitDailyInput struct {
	PatientCount int `json:"patient_count" validate:"gte=0"`
}

// SubmitDaily records today's patient count, checks for a sustained
// overload streak and returns the simple next-day forecast. Submitting
// again on the same day overwrites the count.
func (s *WorkloadService) SubmitDaily(ctx context.Context, p *principal.Principal, input SubmitDailyInput) (*domain.SubmitResult, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can log daily workload")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	workload := &domain.DailyWorkload{
		FacilityID:   p.FacilityID,
		Date:         today,
		PatientCount: input.PatientCount,
		Capacity:     s.capacity,
	}
	if err := s.store.UpsertDaily(ctx, workload); err != nil {
		return nil, err
	}

	recent, err := s.store.RecentDaily(ctx, p.FacilityID, OverloadStreakDays)
	if err != nil {
		return nil, err
	}

	if len(recent) == OverloadStreakDays && allOverloaded(recent) {
		issue, err := s.issues.RaiseStaffingShortage(ctx, p.FacilityID, p.DisplayName, p.DistrictID)
		if err != nil {
			return nil, err
		}
		if issue != nil {
			s.publisher.PublishOverloadDetected(ctx, p.FacilityID, p.DistrictID, input.PatientCount, s.capacity, OverloadStreakDays)
			s.logger.Warn().
				Str("facility_id", p.FacilityID).
				Int64("issue_id", issue.ID).
				Msg("overload streak detected, staffing issue raised")
		}
	}

	forecast := shortForecast(recent)
	status := "Optimal"
	if forecast > s.capacity {
		status = "Overwhelmed"
	}

	return &domain.SubmitResult{
		TomorrowLoad: forecast,
		Status:       status,
		Message:      "Daily workload saved and forecast generated successfully.",
	}, nil
}

// allOverloaded reports whether every day in the window exceeded its
// capacity.
func allOverloaded(days []*domain.DailyWorkload) bool {
	for _, day := range days {
		if !day.Overloaded() {
			return false
		}
	}
	return true
}

// shortForecast is mean of the window plus a 10% buffer, rounded to the
// nearest whole patient. Deterministic for the same inputs.
func shortForecast(recent []*domain.DailyWorkload) int {
	if len(recent) == 0 {
		return 0
	}
	sum := 0
	for _, day := range recent {
		sum += day.PatientCount
	}
	mean := float64(sum) / float64(len(recent))
	return int(math.Round(mean * ForecastBuffer))
}

// RecordLogInput carries one raw intraday sample.
type RecordLogInput struct {
	QueueCount      int     `json:"queue_count" validate:"gte=0"`
	AvgWaitMinutes  float64 `json:"avg_wait_minutes" validate:"gte=0"`
	CompletedVisits int     `json:"completed_visits" validate:"gte=0"`
}

// RecordLog appends a raw workload sample for the caller's facility.
func (s *WorkloadService) RecordLog(ctx context.Context, p *principal.Principal, input RecordLogInput) (*domain.WorkloadLog, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can record workload samples")
	}

	log := &domain.WorkloadLog{
		FacilityID:      p.FacilityID,
		QueueCount:      input.QueueCount,
		AvgWaitMinutes:  input.AvgWaitMinutes,
		CompletedVisits: input.CompletedVisits,
	}
	if err := s.store.InsertLog(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

// ForecastNextDay fits a least-squares line over the most recent raw
// samples (oldest first, index 0..n-1) and predicts the value at index
// n. The persisted overload counter on the facility moves with the
// result: up when the forecast exceeds capacity, back to zero otherwise.
func (s *WorkloadService) ForecastNextDay(ctx context.Context, p *principal.Principal) (*domain.ForecastResult, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can request their forecast")
	}

	facility, err := s.store.GetFacility(ctx, p.FacilityID)
	if err != nil {
		return nil, err
	}

	logs, err := s.store.RecentLogs(ctx, p.FacilityID, LogSampleLimit)
	if err != nil {
		return nil, err
	}
	if len(logs) < MinTrendSamples {
		return nil, errors.InsufficientData("not enough workload history to forecast")
	}

	samples := make([]float64, len(logs))
	for i, log := range logs {
		samples[i] = float64(log.CompletedVisits)
	}
	forecast := linearForecast(samples)

	overloadDays := facility.ConsecutiveOverloadDays
	message := "Normal load expected tomorrow."
	if forecast > float64(facility.Capacity) {
		overloadDays++
		message = fmt.Sprintf("Forecast (%.1f) exceeds capacity (%d).", forecast, facility.Capacity)
	} else {
		overloadDays = 0
	}
	if err := s.store.SetOverloadDays(ctx, p.FacilityID, overloadDays); err != nil {
		return nil, err
	}

	return &domain.ForecastResult{
		ForecastNextDay: forecast,
		Capacity:        facility.Capacity,
		OverloadDays:    overloadDays,
		Message:         message,
	}, nil
}

// linearForecast fits y = a + b*x by ordinary least squares over
// x = 0..n-1 and evaluates at x = n.
func linearForecast(samples []float64) float64 {
	n := float64(len(samples))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range samples {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return sumY / n
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n
	return intercept + slope*n
}

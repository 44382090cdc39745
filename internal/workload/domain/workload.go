// Package domain holds the workload submission and forecasting entities.
package domain

import (
	"time"
)

// DailyWorkload is one facility-day patient count. One row per
// (facility_id, date).
type DailyWorkload struct {
	ID           int64     `db:"id" json:"id"`
	FacilityID   string    `db:"facility_id" json:"facility_id"`
	Date         time.Time `db:"date" json:"date"`
	PatientCount int       `db:"patient_count" json:"patient_count"`
	Capacity     int       `db:"capacity" json:"capacity"`
}

// Overloaded reports whether the day exceeded facility capacity.
func (w *DailyWorkload) Overloaded() bool {
	return w.PatientCount > w.Capacity
}

// Facility is the per-facility record carrying the capacity and the
// persisted overload counter used by the long-horizon forecast.
type Facility struct {
	FacilityID              string    `db:"facility_id" json:"facility_id"`
	FacilityName            string    `db:"facility_name" json:"facility_name"`
	DistrictID              string    `db:"district_id" json:"district_id"`
	Capacity                int       `db:"capacity" json:"capacity"`
	ConsecutiveOverloadDays int       `db:"consecutive_overload_days" json:"consecutive_overload_days"`
	CreatedAt               time.Time `db:"created_at" json:"created_at"`
}

// WorkloadLog is a raw intraday sample. Purged nightly by the
// housekeeping scheduler.
type WorkloadLog struct {
	ID              int64     `db:"id" json:"id"`
	FacilityID      string    `db:"facility_id" json:"facility_id"`
	QueueCount      int       `db:"queue_count" json:"queue_count"`
	AvgWaitMinutes  float64   `db:"avg_wait_minutes" json:"avg_wait_minutes"`
	CompletedVisits int       `db:"completed_visits" json:"completed_visits"`
	RecordedAt      time.Time `db:"recorded_at" json:"recorded_at"`
}

// SubmitResult is returned after a daily submission.
type SubmitResult struct {
	TomorrowLoad int    `json:"tomorrow_load"`
	Status       string `json:"status"`
	Message      string `json:"message"`
}

// ForecastResult is the long-horizon OLS forecast.
type ForecastResult struct {
	ForecastNextDay float64 `json:"forecast_next_day"`
	Capacity        int     `json:"capacity"`
	OverloadDays    int     `json:"overload_days"`
	Message         string  `json:"message"`
}

// Package domain holds the issue and monthly report entities.
package domain

import (
	"time"
)

// IssueStatus is the closed issue lifecycle. Only district authorities
// advance it.
type IssueStatus string

const (
	IssueOpen       IssueStatus = "Open"
	IssueInProgress IssueStatus = "In Progress"
	IssueResolved   IssueStatus = "Resolved"
)

// Valid reports whether the status is one of the closed set.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved:
		return true
	}
	return false
}

// StaffingShortageCategory is the category of automated overload issues,
// deduplicated to at most one Open instance per facility.
const StaffingShortageCategory = "Staffing Shortage"

// Issue is a facility problem report, raised by an operator or by the
// overload detector.
type Issue struct {
	ID           int64       `db:"id" json:"id"`
	FacilityID   string      `db:"facility_id" json:"facility_id"`
	FacilityName string      `db:"facility_name" json:"facility_name"`
	DistrictID   string      `db:"district_id" json:"district_id"`
	Category     string      `db:"category" json:"category"`
	Priority     string      `db:"priority" json:"priority"`
	Description  string      `db:"description" json:"description"`
	Status       IssueStatus `db:"status" json:"status"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

// ReportStatus is the closed monthly report lifecycle. Submitted is
// terminal for content edits.
type ReportStatus string

const (
	ReportDraft     ReportStatus = "Draft"
	ReportSubmitted ReportStatus = "Submitted"
)

// MonthlyReport is a facility's narrative summary for one month, at
// most one per (facility_id, month).
type MonthlyReport struct {
	ID           int64        `db:"id" json:"id"`
	FacilityID   string       `db:"facility_id" json:"facility_id"`
	FacilityName string       `db:"facility_name" json:"facility_name"`
	DistrictID   string       `db:"district_id" json:"district_id"`
	Month        string       `db:"month" json:"month"`
	Content      string       `db:"content" json:"content"`
	Status       ReportStatus `db:"status" json:"status"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

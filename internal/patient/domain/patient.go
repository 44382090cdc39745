// Package domain holds the patient intake entity.
package domain

import (
	"time"

	"github.com/lib/pq"
)

// Sex is the recorded biological sex of a patient.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// Valid reports whether the value is one of the closed set.
func (s Sex) Valid() bool {
	return s == SexMale || s == SexFemale
}

// VisitType is the triage category for an intake visit.
type VisitType string

const (
	VisitEmergency VisitType = "Emergency"
	VisitAcute     VisitType = "Acute"
	VisitRoutine   VisitType = "Routine"
	VisitFollowUp  VisitType = "Follow-up"
)

// Valid reports whether the value is one of the closed set.
func (v VisitType) Valid() bool {
	switch v {
	case VisitEmergency, VisitAcute, VisitRoutine, VisitFollowUp:
		return true
	}
	return false
}

// Patient is one intake record. Vitals is a free-form JSON string
// captured at the point of care.
type Patient struct {
	ID             int64          `db:"id" json:"id"`
	FacilityID     string         `db:"facility_id" json:"facility_id"`
	Name           string         `db:"name" json:"name"`
	Age            int            `db:"age" json:"age"`
	Sex            Sex            `db:"sex" json:"sex"`
	Symptoms       pq.StringArray `db:"symptoms" json:"symptoms"`
	VisitType      VisitType      `db:"visit_type" json:"visit_type"`
	Vitals         string         `db:"vitals" json:"vitals,omitempty"`
	MedicalHistory pq.StringArray `db:"medical_history" json:"medical_history,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

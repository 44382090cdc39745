// Package repository contains the PostgreSQL persistence layer for
// patient intake records.
package repository

import (
	"context"
	"database/sql"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/patient/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/database"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
)

const patientColumns = `id, facility_id, name, age, sex, symptoms,
		       visit_type, vitals, medical_history, created_at, updated_at`

// PatientRepository persists patient intake records.
type PatientRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewPatientRepository creates a PatientRepository.
func NewPatientRepository(db *database.DB, log *logger.Logger) *PatientRepository {
	return &PatientRepository{
		db:     db,
		logger: log.WithComponent("patient_repository"),
	}
}

// Create inserts an intake record.
func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	query := `
		INSERT INTO patients
			(facility_id, name, age, sex, symptoms, visit_type,
			 vitals, medical_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		p.FacilityID, p.Name, p.Age, p.Sex, p.Symptoms, p.VisitType,
		p.Vitals, p.MedicalHistory)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return database.MapPQError(err, "failed to create patient")
	}
	return nil
}

// ListByFacility returns a facility's intake records, newest first.
func (r *PatientRepository) ListByFacility(ctx context.Context, facilityID string) ([]*domain.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE facility_id = $1
		ORDER BY created_at DESC`

	patients := []*domain.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, facilityID); err != nil {
		return nil, err
	}
	return patients, nil
}

// GetByID returns one intake record.
func (r *PatientRepository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	query := `
		SELECT ` + patientColumns + `
		FROM patients
		WHERE id = $1`

	var p domain.Patient
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("patient")
		}
		return nil, err
	}
	return &p, nil
}

// Update rewrites the mutable fields of an intake record.
func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	query := `
		UPDATE patients SET
			name = $1, age = $2, sex = $3, symptoms = $4,
			visit_type = $5, vitals = $6, medical_history = $7,
			updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		p.Name, p.Age, p.Sex, p.Symptoms, p.VisitType,
		p.Vitals, p.MedicalHistory, p.ID)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return errors.NotFound("patient")
		}
		return database.MapPQError(err, "failed to update patient")
	}
	return nil
}

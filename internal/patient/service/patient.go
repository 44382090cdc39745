// Package service implements patient intake CRUD.
package service

import (
	"context"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/patient/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/patient/events"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/errors"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/principal"
)

// PatientStore is the persistence the patient service depends on.
type PatientStore interface {
	Create(ctx context.Context, p *domain.Patient) error
	ListByFacility(ctx context.Context, facilityID string) ([]*domain.Patient, error)
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
	Update(ctx context.Context, p *domain.Patient) error
}

// PatientService manages intake records for a facility.
type PatientService struct {
	store     PatientStore
	publisher *events.PatientEventPublisher
	logger    *logger.Logger
}

// NewPatientService creates a PatientService.
func NewPatientService(store PatientStore, publisher *events.PatientEventPublisher, log *logger.Logger) *PatientService {
	return &PatientService{
		store:     store,
		publisher: publisher,
		logger:    log.WithComponent("patient_service"),
	}
}

// RegisterInput creates an intake record.
type RegisterInput struct {
	Name           string   `json:"name" validate:"required,max=255"`
	Age            int      `json:"age" validate:"required,gt=0"`
	Sex            string   `json:"sex" validate:"required,oneof=Male Female"`
	Symptoms       []string `json:"symptoms" validate:"required,min=1"`
	VisitType      string   `json:"visit_type" validate:"required,oneof=Emergency Acute Routine Follow-up"`
	Vitals         string   `json:"vitals,omitempty"`
	MedicalHistory []string `json:"medical_history,omitempty"`
}

// Register creates an intake record for the caller's facility.
func (s *PatientService) Register(ctx context.Context, p *principal.Principal, input RegisterInput) (*domain.Patient, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can register patients")
	}

	patient := &domain.Patient{
		FacilityID:     p.FacilityID,
		Name:           input.Name,
		Age:            input.Age,
		Sex:            domain.Sex(input.Sex),
		Symptoms:       input.Symptoms,
		VisitType:      domain.VisitType(input.VisitType),
		Vitals:         input.Vitals,
		MedicalHistory: input.MedicalHistory,
	}
	if err := s.store.Create(ctx, patient); err != nil {
		return nil, err
	}

	s.publisher.PublishPatientRegistered(ctx, patient)
	s.logger.Info().
		Int64("patient_id", patient.ID).
		Str("facility_id", patient.FacilityID).
		Str("visit_type", string(patient.VisitType)).
		Msg("patient registered")
	return patient, nil
}

// List returns the caller's facility intake records, newest first.
func (s *PatientService) List(ctx context.Context, p *principal.Principal) ([]*domain.Patient, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can view patient records")
	}
	return s.store.ListByFacility(ctx, p.FacilityID)
}

// Get returns one intake record. Records of other facilities are
// reported as missing.
func (s *PatientService) Get(ctx context.Context, p *principal.Principal, id int64) (*domain.Patient, error) {
	if !p.IsPHC() {
		return nil, errors.Forbidden("only facility staff can view patient records")
	}
	patient, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patient.FacilityID != p.FacilityID {
		return nil, errors.NotFound("patient")
	}
	return patient, nil
}

// UpdateInput patches an intake record. Nil fields are left unchanged.
type UpdateInput struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	Age            *int     `json:"age,omitempty" validate:"omitempty,gt=0"`
	Sex            *string  `json:"sex,omitempty" validate:"omitempty,oneof=Male Female"`
	Symptoms       []string `json:"symptoms,omitempty"`
	VisitType      *string  `json:"visit_type,omitempty" validate:"omitempty,oneof=Emergency Acute Routine Follow-up"`
	Vitals         *string  `json:"vitals,omitempty"`
	MedicalHistory []string `json:"medical_history,omitempty"`
}

// Update patches an intake record at the caller's facility.
func (s *PatientService) Update(ctx context.Context, p *principal.Principal, id int64, input UpdateInput) (*domain.Patient, error) {
	patient, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		patient.Name = *input.Name
	}
	if input.Age != nil {
		patient.Age = *input.Age
	}
	if input.Sex != nil {
		patient.Sex = domain.Sex(*input.Sex)
	}
	if input.Symptoms != nil {
		patient.Symptoms = input.Symptoms
	}
	if input.VisitType != nil {
		patient.VisitType = domain.VisitType(*input.VisitType)
	}
	if input.Vitals != nil {
		patient.Vitals = *input.Vitals
	}
	if input.MedicalHistory != nil {
		patient.MedicalHistory = input.MedicalHistory
	}

	if err := s.store.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

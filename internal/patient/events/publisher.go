// Package events publishes patient intake events to RabbitMQ.
package events

import (
	"context"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/patient/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/messaging"
)

// PatientEventPublisher publishes intake events. A nil publisher is
// valid and publishes nothing.
type PatientEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewPatientEventPublisher creates a patient event publisher.
func NewPatientEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*PatientEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangePatientEvents, "medisense-server", log)
	if err != nil {
		return nil, err
	}

	return &PatientEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishPatientRegistered publishes one event per new intake record.
func (p *PatientEventPublisher) PublishPatientRegistered(ctx context.Context, patient *domain.Patient) {
	if p == nil {
		return
	}
	data := messaging.PatientRegisteredEvent{
		PatientID:  patient.ID,
		FacilityID: patient.FacilityID,
		VisitType:  string(patient.VisitType),
	}

	if err := p.publisher.Publish(ctx, messaging.EventPatientRegistered, data); err != nil {
		p.logger.Error().Err(err).Int64("patient_id", patient.ID).Msg("failed to publish patient registered event")
	}
}

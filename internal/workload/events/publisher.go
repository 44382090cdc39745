// Package events publishes workload domain events to RabbitMQ.
package events

import (
	"context"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/messaging"
)

// WorkloadEventPublisher publishes overload detections. A nil publisher
// publishes nothing.
type WorkloadEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewWorkloadEventPublisher creates a workload event publisher.
func NewWorkloadEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*WorkloadEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeWorkloadEvents, "medisense-server", log)
	if err != nil {
		return nil, err
	}

	return &WorkloadEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishOverloadDetected publishes a sustained-overload detection.
func (p *WorkloadEventPublisher) PublishOverloadDetected(ctx context.Context, facilityID, districtID string, patientCount, capacity, streakDays int) {
	if p == nil {
		return
	}
	data := messaging.OverloadDetectedEvent{
		FacilityID:   facilityID,
		DistrictID:   districtID,
		PatientCount: patientCount,
		Capacity:     capacity,
		StreakDays:   streakDays,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOverloadDetected, data); err != nil {
		p.logger.Error().Err(err).Str("facility_id", facilityID).Msg("failed to publish overload detected event")
	}
}

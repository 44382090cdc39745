// Package events publishes inventory domain events to RabbitMQ.
package events

import (
	"context"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/inventory/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/messaging"
)

// InventoryEventPublisher publishes restock lifecycle events. A nil
// publisher is valid and publishes nothing, so tests and broker-less
// deployments skip messaging without branching at call sites.
type InventoryEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewInventoryEventPublisher creates an inventory event publisher.
func NewInventoryEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*InventoryEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeInventoryEvents, "medisense-server", log)
	if err != nil {
		return nil, err
	}

	return &InventoryEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishRestockRequested publishes one event per created request,
// manual or automated.
func (p *InventoryEventPublisher) PublishRestockRequested(ctx context.Context, req *domain.RestockRequest, automated bool) {
	if p == nil {
		return
	}
	priority := ""
	if req.PriorityLevel != nil {
		priority = string(*req.PriorityLevel)
	}

	data := messaging.RestockRequestedEvent{
		RequestID:  req.ID,
		FacilityID: req.FacilityID,
		DistrictID: req.DistrictID,
		ItemName:   req.ItemName,
		Quantity:   req.QuantityNeeded,
		Priority:   priority,
		Automated:  automated,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRestockRequested, data); err != nil {
		p.logger.Error().Err(err).Int64("request_id", req.ID).Msg("failed to publish restock requested event")
	}
}

// PublishRestockProcessed publishes an approve/decline decision.
func (p *InventoryEventPublisher) PublishRestockProcessed(ctx context.Context, req *domain.RestockRequest) {
	if p == nil {
		return
	}
	processedBy := ""
	if req.ProcessedBy != nil {
		processedBy = *req.ProcessedBy
	}

	data := messaging.RestockProcessedEvent{
		RequestID:   req.ID,
		FacilityID:  req.FacilityID,
		ItemName:    req.ItemName,
		Status:      string(req.Status),
		ProcessedBy: processedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRestockProcessed, data); err != nil {
		p.logger.Error().Err(err).Int64("request_id", req.ID).Msg("failed to publish restock processed event")
	}
}

// PublishRestockReceived publishes a delivery with the new stock level.
func (p *InventoryEventPublisher) PublishRestockReceived(ctx context.Context, req *domain.RestockRequest, item *domain.InventoryItem) {
	if p == nil {
		return
	}
	data := messaging.RestockReceivedEvent{
		RequestID:  req.ID,
		FacilityID: req.FacilityID,
		ItemName:   req.ItemName,
		Quantity:   req.QuantityNeeded,
		NewStock:   item.CurrentStock,
	}

	if err := p.publisher.Publish(ctx, messaging.EventRestockReceived, data); err != nil {
		p.logger.Error().Err(err).Int64("request_id", req.ID).Msg("failed to publish restock received event")
	}
}

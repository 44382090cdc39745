// Package events publishes reporting domain events to RabbitMQ.
package events

import (
	"context"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/internal/reporting/domain"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/messaging"
)

// ReportingEventPublisher publishes issue and report events. A nil
// publisher publishes nothing.
type ReportingEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewReportingEventPublisher creates a reporting event publisher.
func NewReportingEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*ReportingEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeReportingEvents, "medisense-server", log)
	if err != nil {
		return nil, err
	}

	return &ReportingEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishIssueOpened publishes a newly opened issue.
func (p *ReportingEventPublisher) PublishIssueOpened(ctx context.Context, issue *domain.Issue, automated bool) {
	if p == nil {
		return
	}
	data := messaging.IssueOpenedEvent{
		IssueID:    issue.ID,
		FacilityID: issue.FacilityID,
		DistrictID: issue.DistrictID,
		Category:   issue.Category,
		Priority:   issue.Priority,
		Automated:  automated,
	}

	if err := p.publisher.Publish(ctx, messaging.EventIssueOpened, data); err != nil {
		p.logger.Error().Err(err).Int64("issue_id", issue.ID).Msg("failed to publish issue opened event")
	}
}

// PublishReportSubmitted publishes a monthly report submission.
func (p *ReportingEventPublisher) PublishReportSubmitted(ctx context.Context, report *domain.MonthlyReport) {
	if p == nil {
		return
	}
	data := messaging.ReportSubmittedEvent{
		ReportID:   report.ID,
		FacilityID: report.FacilityID,
		DistrictID: report.DistrictID,
		Month:      report.Month,
	}

	if err := p.publisher.Publish(ctx, messaging.EventReportSubmitted, data); err != nil {
		p.logger.Error().Err(err).Int64("report_id", report.ID).Msg("failed to publish report submitted event")
	}
}

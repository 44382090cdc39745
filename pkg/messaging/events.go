package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Inventory events
	EventRestockRequested = "inventory.restock.requested"
	EventRestockProcessed = "inventory.restock.processed"
	EventRestockReceived  = "inventory.restock.received"

	// Workload events
	EventOverloadDetected = "workload.overload.detected"

	// Reporting events
	EventIssueOpened     = "reporting.issue.opened"
	EventReportSubmitted = "reporting.report.submitted"

	// Patient events
	EventPatientRegistered = "patient.registered"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
	ExchangeWorkloadEvents  = "workload.events"
	ExchangeReportingEvents = "reporting.events"
	ExchangePatientEvents   = "patient.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// RestockRequestedEvent is published when a restock request is created,
// whether by an operator or by the auto-restock check.
type RestockRequestedEvent struct {
	RequestID  int64  `json:"request_id"`
	FacilityID string `json:"facility_id"`
	DistrictID string `json:"district_id"`
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
	Priority   string `json:"priority,omitempty"`
	Automated  bool   `json:"automated"`
}

// RestockProcessedEvent is published when a district authority approves
// or declines a request.
type RestockProcessedEvent struct {
	RequestID   int64  `json:"request_id"`
	FacilityID  string `json:"facility_id"`
	ItemName    string `json:"item_name"`
	Status      string `json:"status"`
	ProcessedBy string `json:"processed_by"`
}

// RestockReceivedEvent is published when delivered stock is reconciled
// back into the inventory ledger.
type RestockReceivedEvent struct {
	RequestID  int64  `json:"request_id"`
	FacilityID string `json:"facility_id"`
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
	NewStock   int    `json:"new_stock"`
}

// OverloadDetectedEvent is published when a facility exceeds capacity
// for three consecutive days.
type OverloadDetectedEvent struct {
	FacilityID   string `json:"facility_id"`
	DistrictID   string `json:"district_id"`
	PatientCount int    `json:"patient_count"`
	Capacity     int    `json:"capacity"`
	StreakDays   int    `json:"streak_days"`
}

// IssueOpenedEvent is published when a facility issue is opened,
// whether reported by an operator or raised automatically.
type IssueOpenedEvent struct {
	IssueID    int64  `json:"issue_id"`
	FacilityID string `json:"facility_id"`
	DistrictID string `json:"district_id"`
	Category   string `json:"category"`
	Priority   string `json:"priority"`
	Automated  bool   `json:"automated"`
}

// ReportSubmittedEvent is published when a monthly report is submitted
// to the district authority.
type ReportSubmittedEvent struct {
	ReportID   int64  `json:"report_id"`
	FacilityID string `json:"facility_id"`
	DistrictID string `json:"district_id"`
	Month      string `json:"month"`
}

// PatientRegisteredEvent is published when a new intake record is
// created.
type PatientRegisteredEvent struct {
	PatientID  int64  `json:"patient_id"`
	FacilityID string `json:"facility_id"`
	VisitType  string `json:"visit_type"`
}

// Package domain holds the inventory ledger and restock requisition
// entities shared by the repository and service layers.
package domain

import (
	"time"
)

// RequestStatus is the closed lifecycle of a restock request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusDeclined  RequestStatus = "declined"
	StatusCancelled RequestStatus = "cancelled"
	StatusDelivered RequestStatus = "delivered"
)

// Valid reports whether the status is one of the closed set.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s RequestStatus) Terminal() bool {
	switch s {
	case StatusDeclined, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

// Priority is the urgency band assigned by the restock engine.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// InventoryItem is a per-facility stock row. The engine assumes one row
// per (facility_id, item_name) pair.
type InventoryItem struct {
	ID                   int64     `db:"id" json:"id"`
	FacilityID           string    `db:"facility_id" json:"facility_id"`
	FacilityName         string    `db:"facility_name" json:"facility_name"`
	ItemName             string    `db:"item_name" json:"item_name"`
	ItemType             string    `db:"item_type" json:"item_type"`
	CurrentStock         int       `db:"current_stock" json:"current_stock"`
	Unit                 string    `db:"unit" json:"unit"`
	DailyConsumptionRate float64   `db:"daily_consumption_rate" json:"daily_consumption_rate"`
	LastUpdated          time.Time `db:"last_updated" json:"last_updated"`
}

// DaysRemaining returns how many days of stock remain at the current
// consumption rate. Only meaningful when the rate is strictly positive.
func (i *InventoryItem) DaysRemaining() float64 {
	return float64(i.CurrentStock) / i.DailyConsumptionRate
}

// RestockRequest is a requisition raised by a facility, either manually
// or by the auto-restock engine.
type RestockRequest struct {
	ID             int64         `db:"id" json:"id"`
	ItemName       string        `db:"item_name" json:"item_name"`
	QuantityNeeded int           `db:"quantity_needed" json:"quantity_needed"`
	FacilityID     string        `db:"facility_id" json:"facility_id"`
	FacilityName   string        `db:"facility_name" json:"facility_name"`
	DistrictID     string        `db:"district_id" json:"district_id"`
	RequestedBy    string        `db:"requested_by" json:"requested_by"`
	RequestDate    time.Time     `db:"request_date" json:"request_date"`
	Status         RequestStatus `db:"status" json:"status"`
	Comments       *string       `db:"comments" json:"comments,omitempty"`
	ProcessedBy    *string       `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt    *time.Time    `db:"processed_at" json:"processed_at,omitempty"`
	PriorityLevel  *Priority     `db:"priority_level" json:"priority_level,omitempty"`
}

// LowStockItem is one row of the low-stock evaluation.
type LowStockItem struct {
	ItemName             string  `json:"item_name"`
	CurrentStock         int     `json:"current_stock"`
	DailyConsumptionRate float64 `json:"daily_consumption_rate"`
	Unit                 string  `json:"unit"`
	DaysRemaining        float64 `json:"days_remaining"`
}

// AutoRestockResult summarizes one auto-restock-check invocation.
type AutoRestockResult struct {
	CreatedRequests int      `json:"created_requests"`
	SkippedItems    []string `json:"skipped_items"`
}

// RequestFilter narrows a restock request listing. Facility and district
// scoping is mandatory (exactly one of the two is set by the service);
// the remaining fields are optional.
type RequestFilter struct {
	FacilityID   string
	DistrictID   string
	Status       RequestStatus
	FacilityHint string // LGA-only: facility id or name substring filters
	NameContains string
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestPriority string

const (
	PriorityLow       RequestPriority = "LOW"
	PriorityMedium    RequestPriority = "MEDIUM"
	PriorityHigh      RequestPriority = "HIGH"
	PriorityEmergency RequestPriority = "EMERGENCY"
)

type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "OPEN"
	RequestStatusDispatched RequestStatus = "DISPATCHED"
	RequestStatusCompleted  RequestStatus = "COMPLETED"
	RequestStatusCancelled  RequestStatus = "CANCELLED"
)

// MaintenanceRequest is the tenant-reported issue a work order is derived
// from. Once WorkOrderID is set the record is immutable apart from Status,
// which mirrors the work order's terminal state.
type MaintenanceRequest struct {
	Versioned

	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    RequestPriority `json:"priority"`
	Category    string          `json:"category"`
	PropertyID  uuid.UUID       `json:"property_id"`
	UnitID      *uuid.UUID      `json:"unit_id,omitempty"`
	RequesterID uuid.UUID       `json:"requester_id"`
	Status      RequestStatus   `json:"status"`
	WorkOrderID *uuid.UUID      `json:"work_order_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (mr *MaintenanceRequest) GetID() string {
	return mr.ID.String()
}

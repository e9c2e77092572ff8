package models

import (
	"time"

	"github.com/google/uuid"
)

type WorkOrderStatus string

const (
	WorkOrderStatusOpen       WorkOrderStatus = "OPEN"
	WorkOrderStatusQuoted     WorkOrderStatus = "QUOTED"
	WorkOrderStatusAssigned   WorkOrderStatus = "ASSIGNED"
	WorkOrderStatusInProgress WorkOrderStatus = "IN_PROGRESS"
	WorkOrderStatusCompleted  WorkOrderStatus = "COMPLETED"
	WorkOrderStatusCancelled  WorkOrderStatus = "CANCELLED"
)

// validTransitions is the single authority for work-order status changes.
// Every status write in the service layer must pass through CanTransition;
// repositories enforce the same edge again inside their transactions.
var validTransitions = map[WorkOrderStatus][]WorkOrderStatus{
	WorkOrderStatusOpen:       {WorkOrderStatusQuoted, WorkOrderStatusAssigned, WorkOrderStatusCancelled},
	WorkOrderStatusQuoted:     {WorkOrderStatusAssigned, WorkOrderStatusCancelled},
	WorkOrderStatusAssigned:   {WorkOrderStatusInProgress, WorkOrderStatusOpen},
	WorkOrderStatusInProgress: {WorkOrderStatusCompleted, WorkOrderStatusOpen},
	WorkOrderStatusCompleted:  {},
	WorkOrderStatusCancelled:  {},
}

// CanTransition reports whether from→to is a legal edge.
// OPEN→ASSIGNED exists only for emergency routing, which bypasses quoting.
func CanTransition(from, to WorkOrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s WorkOrderStatus) IsTerminal() bool {
	return s == WorkOrderStatusCompleted || s == WorkOrderStatusCancelled
}

type WorkOrder struct {
	Versioned

	ID          uuid.UUID       `json:"id"`
	RequestID   uuid.UUID       `json:"request_id"`
	PropertyID  uuid.UUID       `json:"property_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      WorkOrderStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (wo *WorkOrder) GetID() string {
	return wo.ID.String()
}

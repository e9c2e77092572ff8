package models

import (
	"time"

	"github.com/google/uuid"
)

type AssignmentSource string

const (
	AssignmentSourceQuote     AssignmentSource = "QUOTE"
	AssignmentSourceEmergency AssignmentSource = "EMERGENCY"
)

// WorkOrderAssignment binds one vendor to one work order. At most one
// assignment is active per work order; a decline releases it (Active=false,
// ReleasedAt set) rather than deleting the row, so history survives.
type WorkOrderAssignment struct {
	ID          uuid.UUID        `json:"id"`
	WorkOrderID uuid.UUID        `json:"work_order_id"`
	VendorID    uuid.UUID        `json:"vendor_id"`
	Source      AssignmentSource `json:"source"`
	Active      bool             `json:"active"`

	CreatedAt  time.Time  `json:"created_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

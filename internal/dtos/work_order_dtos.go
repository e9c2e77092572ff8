package dtos

import (
	"time"

	"github.com/google/uuid"
)

/*
CreateMaintenanceRequestRequest is the tenant-facing payload. EMERGENCY
requests are dispatched immediately; everything else waits for an explicit
dispatch call from the manager surface.
*/
type CreateMaintenanceRequestRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=4000"`
	Priority    string     `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH EMERGENCY"`
	Category    string     `json:"category" validate:"required,max=100"`
	PropertyID  uuid.UUID  `json:"property_id" validate:"required"`
	UnitID      *uuid.UUID `json:"unit_id,omitempty"`
}

type DispatchRequestRequest struct {
	RequestID uuid.UUID `json:"request_id" validate:"required"`
}

type SubmitQuoteRequest struct {
	WorkOrderID uuid.UUID `json:"work_order_id" validate:"required"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Details     string    `json:"details" validate:"max=2000"`
}

type QuoteActionRequest struct {
	QuoteID uuid.UUID `json:"quote_id" validate:"required"`
}

/*
WorkOrderActionRequest is the simple "work_order_id" payload for accept,
decline, complete and cancel.
*/
type WorkOrderActionRequest struct {
	WorkOrderID uuid.UUID `json:"work_order_id" validate:"required"`
}

type UpdateStatusRequest struct {
	WorkOrderID uuid.UUID `json:"work_order_id" validate:"required"`
	Status      string    `json:"status" validate:"required,oneof=OPEN QUOTED ASSIGNED IN_PROGRESS COMPLETED CANCELLED"`
}

type QuoteDTO struct {
	QuoteID     uuid.UUID `json:"quote_id"`
	WorkOrderID uuid.UUID `json:"work_order_id"`
	VendorID    uuid.UUID `json:"vendor_id"`
	Amount      float64   `json:"amount"`
	Details     string    `json:"details,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type AssignmentDTO struct {
	AssignmentID uuid.UUID  `json:"assignment_id"`
	VendorID     uuid.UUID  `json:"vendor_id"`
	Source       string     `json:"source"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	ReleasedAt   *time.Time `json:"released_at,omitempty"`
}

/*
WorkOrderDTO is the full aggregate view: the work order plus its quotes
and the active assignment, with row_version so clients can retry after a
409 with fresh state.
*/
type WorkOrderDTO struct {
	WorkOrderID uuid.UUID      `json:"work_order_id"`
	RequestID   uuid.UUID      `json:"request_id"`
	PropertyID  uuid.UUID      `json:"property_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	RowVersion  int64          `json:"row_version"`
	Quotes      []QuoteDTO     `json:"quotes,omitempty"`
	Assignment  *AssignmentDTO `json:"assignment,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type MaintenanceRequestDTO struct {
	RequestID   uuid.UUID  `json:"request_id"`
	Title       string     `json:"title"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	PropertyID  uuid.UUID  `json:"property_id"`
	Status      string     `json:"status"`
	WorkOrderID *uuid.UUID `json:"work_order_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type OnCallResponse struct {
	PropertyID uuid.UUID `json:"property_id"`
	UserID     uuid.UUID `json:"user_id"`
	StaffName  string    `json:"staff_name,omitempty"`
	At         time.Time `json:"at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "PENDING"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

// WorkOrderQuote is a vendor's bid. For a given work order at most one
// quote ever holds ACCEPTED; accepting one rejects all PENDING siblings
// in the same transaction.
type WorkOrderQuote struct {
	ID          uuid.UUID   `json:"id"`
	WorkOrderID uuid.UUID   `json:"work_order_id"`
	VendorID    uuid.UUID   `json:"vendor_id"`
	Amount      float64     `json:"amount"`
	Details     string      `json:"details"`
	Status      QuoteStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

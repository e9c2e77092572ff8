package models

import (
	"time"

	"github.com/google/uuid"
)

// NoRuleFired is the LastFiredRuleOrder value before any escalation rule
// has been dispatched for a work order.
const NoRuleFired = -1

// WorkOrderSLA tracks time-to-first-response for one work order and carries
// the escalation dedup state. FirstResponseAt is set by the first quote
// submission or the first transition out of OPEN; once set, the escalation
// sweep skips the record.
type WorkOrderSLA struct {
	Versioned

	WorkOrderID        uuid.UUID  `json:"work_order_id"`
	PropertyID         uuid.UUID  `json:"property_id"`
	TriggeredAt        time.Time  `json:"triggered_at"`
	FirstResponseAt    *time.Time `json:"first_response_at,omitempty"`
	LastFiredRuleOrder int        `json:"last_fired_rule_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *WorkOrderSLA) GetID() string {
	return s.WorkOrderID.String()
}

// Elapsed returns time since the SLA trigger.
func (s *WorkOrderSLA) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.TriggeredAt)
}

// Responded reports whether a first response has been recorded.
func (s *WorkOrderSLA) Responded() bool {
	return s.FirstResponseAt != nil
}

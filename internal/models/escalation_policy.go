package models

import (
	"time"

	"github.com/google/uuid"
)

type EscalationAction string

const (
	EscalationActionNotify   EscalationAction = "NOTIFY"
	EscalationActionEscalate EscalationAction = "ESCALATE"
)

// EscalationPolicy is an ordered chain of time-threshold rules scoped to a
// property. Rule order indices are unique and monotonic within a policy.
type EscalationPolicy struct {
	ID         uuid.UUID              `json:"id"`
	PropertyID uuid.UUID              `json:"property_id"`
	Name       string                 `json:"name"`
	Rules      []EscalationPolicyRule `json:"rules,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type EscalationPolicyRule struct {
	ID           uuid.UUID        `json:"id"`
	PolicyID     uuid.UUID        `json:"policy_id"`
	RuleOrder    int              `json:"rule_order"`
	ThresholdMin int              `json:"threshold_minutes"`
	Action       EscalationAction `json:"action"`
	NotifyUserID uuid.UUID        `json:"notify_user_id"`
}

// Threshold converts the stored integer minutes to a duration.
func (r EscalationPolicyRule) Threshold() time.Duration {
	return time.Duration(r.ThresholdMin) * time.Minute
}

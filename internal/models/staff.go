package models

import (
	"time"

	"github.com/google/uuid"
)

// Staff is a notifiable member of the operations team. Escalation rules and
// on-call rotations reference staff by ID; IsDefaultContact marks the
// administrative fallback used when on-call resolution finds no coverage.
type Staff struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	IsDefaultContact bool      `json:"is_default_contact"`

	CreatedAt time.Time `json:"created_at"`
}

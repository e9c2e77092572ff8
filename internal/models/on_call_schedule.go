package models

import (
	"time"

	"github.com/google/uuid"
)

// OnCallSchedule owns the rotations for one property. Rotations may
// overlap (an override shift on top of a base shift); resolution picks
// the one with the latest start.
type OnCallSchedule struct {
	ID         uuid.UUID        `json:"id"`
	PropertyID uuid.UUID        `json:"property_id"`
	Name       string           `json:"name"`
	Rotations  []OnCallRotation `json:"rotations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// OnCallRotation covers [StartsAt, EndsAt) for a single staff member.
type OnCallRotation struct {
	ID         uuid.UUID `json:"id"`
	ScheduleID uuid.UUID `json:"schedule_id"`
	UserID     uuid.UUID `json:"user_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

// Covers reports whether the rotation is current at the given instant.
// The end bound is exclusive so back-to-back shifts never both match.
func (r OnCallRotation) Covers(at time.Time) bool {
	return !at.Before(r.StartsAt) && at.Before(r.EndsAt)
}

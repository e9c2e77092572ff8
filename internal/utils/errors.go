package utils

import (
	"errors"

	"github.com/parkrose/maintenance-service/internal/models"
)

/*
Sentinel errors for the work-order domain. Controllers branch with
errors.Is(err, ErrXYZ) and map each to a stable HTTP code.
*/
var (
	// Operation not legal from the work order's current status
	// (e.g. submitting a quote against an ASSIGNED work order).
	ErrInvalidState = errors.New("invalid_state")

	// Requested status change is not an edge in the transition table.
	ErrInvalidTransition = errors.New("invalid_transition")

	// Referenced work order / quote / vendor / policy / schedule absent.
	ErrNotFound = errors.New("not_found")

	// Concurrency conflicts on versioned aggregates.
	ErrRowVersionConflict = errors.New("row_version_conflict")
	ErrNoRowsUpdated      = errors.New("no_rows_updated")

	// On-call resolution found no rotation covering the instant.
	ErrNoOnCallCoverage = errors.New("no_on_call_coverage")

	// Emergency routing found no vendor matching specialty/area/availability.
	ErrNoSuitableVendor = errors.New("no_suitable_vendor")

	// No escalation policy configured for the property. Non-fatal:
	// the sweep logs and skips.
	ErrConfigurationMissing = errors.New("configuration_missing")

	// Notification/collaborator dispatch failed after bounded retries.
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

/*
RowVersionConflictError is returned when a work-order write loses an
optimistic-concurrency race. It carries the latest WorkOrder so the
controller can return it to the client alongside the 409.
*/
type RowVersionConflictError struct {
	Current *models.WorkOrder
}

func (e *RowVersionConflictError) Error() string {
	return "row_version_conflict"
}

func (e *RowVersionConflictError) Unwrap() error {
	return ErrRowVersionConflict
}

func NewRowVersionConflictError(current *models.WorkOrder) error {
	return &RowVersionConflictError{Current: current}
}

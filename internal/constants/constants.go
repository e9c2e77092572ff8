package constants

import "time"

const (
	// Optimistic-lock retry budget for read-mutate-update entities.
	MaxUpdateRetries = 3

	// Notification dispatch retry policy. Collaborator reads fail fast;
	// only outbound notifications retry.
	NotificationMaxRetries     = 3
	NotificationInitialBackoff = 500 * time.Millisecond

	// Cron specs for background work.
	EscalationSweepSpec = "@every 1m"
	SLAHousekeepingSpec = "10 0 * * *"

	// Settled SLA rows older than this are deleted by housekeeping.
	SLARetentionDays = 30
)

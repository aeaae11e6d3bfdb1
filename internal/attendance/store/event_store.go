package store

import (
	"context"
	"time"
)

// EventRecord captures one classified attendance event for the audit log.
type EventRecord struct {
	StaffID      string
	Date         string
	Kind         string // manual_check_in | manual_check_out | sighting
	Action       string // create_open | close | ignore | reject
	Reason       string
	Confidence   *float64 // sightings only
	AttendanceID *int64   // nil when no record was touched
	ReceivedAt   time.Time
	DecidedAt    time.Time
}

// EventStore persists classified events as an append-only audit log.
type EventStore interface {
	RecordEvent(ctx context.Context, rec EventRecord) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) RecordEvent(ctx context.Context, rec store.EventRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	if rec.DecidedAt.IsZero() {
		rec.DecidedAt = rec.ReceivedAt
	}

	reason := sql.NullString{String: rec.Reason, Valid: rec.Reason != ""}
	var confidence sql.NullFloat64
	if rec.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *rec.Confidence, Valid: true}
	}
	var attendanceID sql.NullInt64
	if rec.AttendanceID != nil {
		attendanceID = sql.NullInt64{Int64: *rec.AttendanceID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO attendance_events
(staff_id, date, kind, action, reason, confidence, attendance_id, received_at, decided_at)
VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9)`,
		rec.StaffID, rec.Date, rec.Kind, rec.Action, reason, confidence, attendanceID,
		rec.ReceivedAt.UTC(), rec.DecidedAt.UTC())
	if err != nil {
		return fmt.Errorf("RecordEvent insert: %w", err)
	}
	return nil
}

func (s *EventStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attendance_events WHERE received_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("PruneOlderThan: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

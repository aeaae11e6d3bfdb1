package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	dbpkg "github.com/ravantech1548/Face-recogn-attendance/internal/db"
)

type EventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewEventStore(db *sql.DB, writer *dbpkg.Worker) *EventStore {
	return &EventStore{db: db, writer: writer}
}

func (s *EventStore) RecordEvent(ctx context.Context, rec store.EventRecord) error {
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now().UTC()
	}
	if rec.DecidedAt.IsZero() {
		rec.DecidedAt = rec.ReceivedAt
	}

	var reason any
	if rec.Reason != "" {
		reason = rec.Reason
	}
	var confidence any
	if rec.Confidence != nil {
		confidence = *rec.Confidence
	}
	var attendanceID any
	if rec.AttendanceID != nil {
		attendanceID = *rec.AttendanceID
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO attendance_events(
  staff_id, date, kind, action, reason, confidence, attendance_id,
  received_at_ms, decided_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.StaffID, rec.Date, rec.Kind, rec.Action, reason, confidence, attendanceID,
			rec.ReceivedAt.UTC().UnixMilli(), rec.DecidedAt.UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}
		return nil
	})
}

// PruneOlderThan deletes event rows received before cutoff and returns the
// number deleted. Attendance rows are never touched.
func (s *EventStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoffMs := cutoff.UTC().UnixMilli()

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM attendance_events
WHERE received_at_ms < ?;
`, cutoffMs)
		if err != nil {
			return fmt.Errorf("PruneOlderThan: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
	dbpkg "github.com/ravantech1548/Face-recogn-attendance/internal/db"
)

// AttendanceStore reads through db and writes through the single-writer
// Worker. Timestamps are stored as UTC unix milliseconds.
type AttendanceStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAttendanceStore(db *sql.DB, writer *dbpkg.Worker) *AttendanceStore {
	return &AttendanceStore{db: db, writer: writer}
}

const attendanceColumns = `attendance_id, staff_id, date, check_in_at_ms, check_out_at_ms, status, created_at_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, extra ...any) (types.AttendanceRecord, error) {
	var (
		rec        types.AttendanceRecord
		checkInMs  int64
		checkOutMs sql.NullInt64
		status     string
		createdMs  int64
	)
	dest := append([]any{
		&rec.AttendanceID, &rec.StaffID, &rec.Date, &checkInMs, &checkOutMs, &status, &createdMs,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return types.AttendanceRecord{}, err
	}
	rec.CheckInTime = time.UnixMilli(checkInMs).UTC()
	if checkOutMs.Valid {
		t := time.UnixMilli(checkOutMs.Int64).UTC()
		rec.CheckOutTime = &t
	}
	rec.Status = types.Status(status)
	rec.CreatedAt = time.UnixMilli(createdMs).UTC()
	return rec, nil
}

func (s *AttendanceStore) FindByStaffDate(ctx context.Context, staffID, date string) (*types.AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+attendanceColumns+`
FROM attendance
WHERE staff_id = ? AND date = ?;
`, staffID, date)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindByStaffDate query: %w", err)
	}
	return &rec, nil
}

func (s *AttendanceStore) Insert(ctx context.Context, rec types.AttendanceRecord) (types.AttendanceRecord, error) {
	if rec.Status == "" {
		rec.Status = types.StatusPresent
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.CheckInTime
	}
	rec.CheckInTime = rec.CheckInTime.UTC().Truncate(time.Millisecond)
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Millisecond)

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO attendance(staff_id, date, check_in_at_ms, status, created_at_ms)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(staff_id, date) DO NOTHING;
`, rec.StaffID, rec.Date, rec.CheckInTime.UnixMilli(), string(rec.Status), rec.CreatedAt.UnixMilli())
		if err != nil {
			return fmt.Errorf("Insert attendance: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("Insert rows affected: %w", err)
		}
		if n == 0 {
			return store.ErrDuplicate
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Insert last id: %w", err)
		}
		rec.AttendanceID = id
		return nil
	})
	if err != nil {
		return types.AttendanceRecord{}, err
	}
	rec.CheckOutTime = nil
	return rec, nil
}

func (s *AttendanceStore) SetCheckOut(ctx context.Context, attendanceID int64, at time.Time) (types.AttendanceRecord, error) {
	ms := at.UTC().UnixMilli()

	var out types.AttendanceRecord
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Only ever move checkout forward.
		res, err := tx.ExecContext(ctx, `
UPDATE attendance
SET check_out_at_ms = CASE
      WHEN check_out_at_ms IS NULL OR check_out_at_ms < ? THEN ?
      ELSE check_out_at_ms
    END
WHERE attendance_id = ?;
`, ms, ms, attendanceID)
		if err != nil {
			return fmt.Errorf("SetCheckOut update: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("SetCheckOut rows affected: %w", err)
		}
		if n == 0 {
			return store.ErrNotFound
		}

		out, err = scanRecord(tx.QueryRowContext(ctx, `
SELECT `+attendanceColumns+` FROM attendance WHERE attendance_id = ?;
`, attendanceID))
		if err != nil {
			return fmt.Errorf("SetCheckOut reload: %w", err)
		}
		return nil
	})
	if err != nil {
		return types.AttendanceRecord{}, err
	}
	return out, nil
}

func (s *AttendanceStore) Query(ctx context.Context, f store.AttendanceFilter) ([]types.AttendanceView, error) {
	var (
		conds []string
		args  []any
	)
	if f.StartDate != "" {
		conds = append(conds, "a.date >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		conds = append(conds, "a.date <= ?")
		args = append(args, f.EndDate)
	}
	if f.StaffID != "" {
		conds = append(conds, "a.staff_id = ?")
		args = append(args, f.StaffID)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT a.attendance_id, a.staff_id, a.date, a.check_in_at_ms, a.check_out_at_ms, a.status, a.created_at_ms,
       s.full_name, s.department
FROM attendance a
JOIN staff s ON s.staff_id = a.staff_id
`+where+`
ORDER BY a.date DESC, a.check_in_at_ms DESC;
`, args...)
	if err != nil {
		return nil, fmt.Errorf("Query attendance: %w", err)
	}
	defer rows.Close()

	out := make([]types.AttendanceView, 0)
	for rows.Next() {
		var v types.AttendanceView
		rec, err := scanRecord(rows, &v.FullName, &v.Department)
		if err != nil {
			return nil, fmt.Errorf("Query scan: %w", err)
		}
		v.AttendanceRecord = rec
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Query rows: %w", err)
	}
	return out, nil
}

func (s *AttendanceStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Package postgres implements the attendance stores on PostgreSQL through
// database/sql and lib/pq. Postgres serialises writers itself, so unlike the
// SQLite stores there is no write worker; uniqueness is enforced by the
// (staff_id, date) index and ON CONFLICT.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

type AttendanceStore struct {
	db *sql.DB
}

func NewAttendanceStore(db *sql.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

const attendanceColumns = `attendance_id, staff_id, to_char(date, 'YYYY-MM-DD'), check_in_time, check_out_time, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, extra ...any) (types.AttendanceRecord, error) {
	var (
		rec      types.AttendanceRecord
		checkOut sql.NullTime
		status   string
	)
	dest := append([]any{
		&rec.AttendanceID, &rec.StaffID, &rec.Date, &rec.CheckInTime, &checkOut, &status, &rec.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return types.AttendanceRecord{}, err
	}
	rec.CheckInTime = rec.CheckInTime.UTC()
	rec.CreatedAt = rec.CreatedAt.UTC()
	if checkOut.Valid {
		t := checkOut.Time.UTC()
		rec.CheckOutTime = &t
	}
	rec.Status = types.Status(status)
	return rec, nil
}

func (s *AttendanceStore) FindByStaffDate(ctx context.Context, staffID, date string) (*types.AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE staff_id = $1 AND date = $2::date`, staffID, date)

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

	row := s.db.QueryRowContext(ctx, `INSERT INTO attendance (staff_id, date, check_in_time, status, created_at)
VALUES ($1, $2::date, $3, $4, $5)
ON CONFLICT (staff_id, date) DO NOTHING
RETURNING `+attendanceColumns,
		rec.StaffID, rec.Date, rec.CheckInTime.UTC(), string(rec.Status), rec.CreatedAt.UTC())

	out, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.AttendanceRecord{}, store.ErrDuplicate
	}
	if err != nil {
		return types.AttendanceRecord{}, fmt.Errorf("Insert attendance: %w", err)
	}
	return out, nil
}

func (s *AttendanceStore) SetCheckOut(ctx context.Context, attendanceID int64, at time.Time) (types.AttendanceRecord, error) {
	row := s.db.QueryRowContext(ctx, `UPDATE attendance
SET check_out_time = CASE
      WHEN check_out_time IS NULL OR check_out_time < $1 THEN $1
      ELSE check_out_time
    END
WHERE attendance_id = $2
RETURNING `+attendanceColumns, at.UTC(), attendanceID)

	out, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.AttendanceRecord{}, store.ErrNotFound
	}
	if err != nil {
		return types.AttendanceRecord{}, fmt.Errorf("SetCheckOut update: %w", err)
	}
	return out, nil
}

func (s *AttendanceStore) Query(ctx context.Context, f store.AttendanceFilter) ([]types.AttendanceView, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.StartDate != "" {
		conds = append(conds, "a.date >= "+arg(f.StartDate)+"::date")
	}
	if f.EndDate != "" {
		conds = append(conds, "a.date <= "+arg(f.EndDate)+"::date")
	}
	if f.StaffID != "" {
		conds = append(conds, "a.staff_id = "+arg(f.StaffID))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT a.attendance_id, a.staff_id, to_char(a.date, 'YYYY-MM-DD'), a.check_in_time, a.check_out_time, a.status, a.created_at, s.full_name, s.department
FROM attendance a
JOIN staff s ON s.staff_id = a.staff_id`+where+`
ORDER BY a.date DESC, a.check_in_time DESC`, args...)
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

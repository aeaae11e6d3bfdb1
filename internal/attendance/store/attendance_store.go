package store

import (
	"context"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

// AttendanceFilter narrows Query. Empty fields impose no constraint.
// Dates are inclusive YYYY-MM-DD strings.
type AttendanceFilter struct {
	StartDate string
	EndDate   string
	StaffID   string
}

// AttendanceStore holds one row per (staff, date).
//
// Insert must be atomic with respect to the (staff_id, date) uniqueness rule
// and return ErrDuplicate on conflict. SetCheckOut never moves an existing
// checkout earlier.
type AttendanceStore interface {
	// FindByStaffDate returns nil, nil when there is no record.
	FindByStaffDate(ctx context.Context, staffID, date string) (*types.AttendanceRecord, error)
	Insert(ctx context.Context, rec types.AttendanceRecord) (types.AttendanceRecord, error)
	SetCheckOut(ctx context.Context, attendanceID int64, at time.Time) (types.AttendanceRecord, error)

	// Query returns records joined with staff, newest date first, then newest
	// check-in first within a date.
	Query(ctx context.Context, f AttendanceFilter) ([]types.AttendanceView, error)

	Ping(ctx context.Context) error
}

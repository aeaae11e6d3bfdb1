package store

import "errors"

var (
	// ErrNotFound is returned when a looked-up row does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicate is returned by AttendanceStore.Insert when a record for the
	// same (staff_id, date) already exists.
	ErrDuplicate = errors.New("store: attendance already exists for staff and date")
)

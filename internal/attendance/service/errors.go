package service

import "errors"

var (
	ErrInvalidStaffID = errors.New("staffId is required")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
	ErrInvalidAction  = errors.New("action must be a manual check-in or check-out")

	ErrAlreadyCheckedIn = errors.New("already checked in today")
	ErrNoOpenCheckIn    = errors.New("no check-in record found for today")
	ErrUnknownStaff     = errors.New("staff member not found or inactive")

	// ErrStorageUnavailable wraps any store failure or timeout. The cause is
	// kept in the chain for logging.
	ErrStorageUnavailable = errors.New("attendance storage unavailable")
)

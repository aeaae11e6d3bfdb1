package types

import "time"

type Status string

const (
	StatusPresent Status = "present"

	// Reserved; nothing assigns these yet.
	StatusAbsent Status = "absent"
	StatusLate   Status = "late"
)

// AttendanceRecord is one staff member's attendance for one calendar day.
type AttendanceRecord struct {
	AttendanceID int64      `json:"attendance_id"`
	StaffID      string     `json:"staff_id"`
	Date         string     `json:"date"` // YYYY-MM-DD
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Status       Status     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// IsOpen reports whether the record has a check-in but no check-out yet.
func (r AttendanceRecord) IsOpen() bool {
	return r.CheckOutTime == nil
}

// AttendanceView is an AttendanceRecord joined with staff display fields.
type AttendanceView struct {
	AttendanceRecord
	FullName   string `json:"full_name"`
	Department string `json:"department"`
}

type StaffActionRequest struct {
	StaffID string `json:"staffId"`
}

type AttendanceResponse struct {
	Message    string           `json:"message"`
	Attendance AttendanceRecord `json:"attendance"`
}

type FaceEventRequest struct {
	StaffID    string   `json:"staffId"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Sighting outcomes as reported to callers.
const (
	SightingCheckedIn  = "checked_in"
	SightingCheckedOut = "checked_out"
	SightingIgnored    = "ignored"
)

// SightingResult is the outcome of one face-recognition sighting.
type SightingResult struct {
	Action     string           `json:"action"`
	Reason     string           `json:"reason,omitempty"`
	Attendance AttendanceRecord `json:"attendance"`
}

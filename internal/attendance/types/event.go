package types

import "time"

// Event sources.
const (
	SourceManual   = "manual"
	SourceSighting = "sighting"
)

// AttendanceEvent is broadcast after the engine handles a check-in,
// check-out or sighting, so UIs can show a toast and operators can tail a log.
type AttendanceEvent struct {
	Action     string            `json:"action"`
	Reason     string            `json:"reason,omitempty"`
	Source     string            `json:"source"`
	StaffID    string            `json:"staff_id"`
	Date       string            `json:"date"`
	Attendance *AttendanceRecord `json:"attendance,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

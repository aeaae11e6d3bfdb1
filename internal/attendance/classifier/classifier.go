// Package classifier decides what an incoming attendance event does to the
// day's record. It performs no I/O.
package classifier

import (
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

// DebounceWindow is the minimum time after check-in before a repeat sighting
// counts as a check-out.
const DebounceWindow = 5 * time.Minute

const (
	ReasonAlreadyCheckedIn = "already checked in"
	ReasonNoCheckIn        = "no check-in found"
	ReasonMinInterval      = "min_interval_not_elapsed"
)

type Kind int

const (
	ManualCheckIn Kind = iota + 1
	ManualCheckOut
	Sighting
)

func (k Kind) String() string {
	switch k {
	case ManualCheckIn:
		return "manual_check_in"
	case ManualCheckOut:
		return "manual_check_out"
	case Sighting:
		return "sighting"
	default:
		return "unknown"
	}
}

// IsManual reports whether k is an explicit administrator action.
func (k Kind) IsManual() bool {
	return k == ManualCheckIn || k == ManualCheckOut
}

type Action int

const (
	CreateOpen Action = iota + 1
	Close
	Ignore
	Reject
)

func (a Action) String() string {
	switch a {
	case CreateOpen:
		return "create_open"
	case Close:
		return "close"
	case Ignore:
		return "ignore"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind Kind
	Now  time.Time
}

// Decision is the mutation to apply. At is the timestamp to write for
// CreateOpen and Close; it is zero for Ignore and Reject.
type Decision struct {
	Action Action
	Reason string
	At     time.Time
}

// Classify maps the existing record for (staff, date), if any, and an
// incoming event to a Decision.
func Classify(existing *types.AttendanceRecord, ev Event) Decision {
	switch ev.Kind {
	case ManualCheckIn:
		if existing != nil {
			return Decision{Action: Reject, Reason: ReasonAlreadyCheckedIn}
		}
		return Decision{Action: CreateOpen, At: ev.Now}

	case ManualCheckOut:
		if existing == nil {
			return Decision{Action: Reject, Reason: ReasonNoCheckIn}
		}
		return Decision{Action: Close, At: closeAt(existing, ev.Now)}

	case Sighting:
		if existing == nil {
			return Decision{Action: CreateOpen, At: ev.Now}
		}
		if existing.IsOpen() && ev.Now.Sub(existing.CheckInTime) < DebounceWindow {
			return Decision{Action: Ignore, Reason: ReasonMinInterval}
		}
		// Open past the window, or already closed: stamp (or re-stamp) checkout.
		return Decision{Action: Close, At: closeAt(existing, ev.Now)}
	}

	return Decision{Action: Reject, Reason: "unknown event kind"}
}

// closeAt keeps checkout from moving backwards or before check-in when the
// server clock steps back.
func closeAt(existing *types.AttendanceRecord, now time.Time) time.Time {
	at := now
	if at.Before(existing.CheckInTime) {
		at = existing.CheckInTime
	}
	if existing.CheckOutTime != nil && at.Before(*existing.CheckOutTime) {
		at = *existing.CheckOutTime
	}
	return at
}

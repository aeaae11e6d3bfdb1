package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

const timeLayout = "15:04:05"

// FormatTable writes attendance rows as a fixed-width table and returns the
// number of rows written.
func FormatTable(w io.Writer, views []types.AttendanceView) int {
	if len(views) == 0 {
		fmt.Fprintln(w, "No attendance records found")
		return 0
	}

	fmt.Fprintf(w, "%-10s %-10s %-20s %-14s %-8s %-8s %s\n",
		"DATE", "STAFF", "NAME", "DEPARTMENT", "IN", "OUT", "HOURS")
	fmt.Fprintf(w, "%-10s %-10s %-20s %-14s %-8s %-8s %s\n",
		"----------", "----------", "--------------------", "--------------", "--------", "--------", "-----")

	for _, v := range views {
		out, hours := "-", "-"
		if v.CheckOutTime != nil {
			out = v.CheckOutTime.UTC().Format(timeLayout)
			hours = fmt.Sprintf("%.2f", v.CheckOutTime.Sub(v.CheckInTime).Hours())
		}
		fmt.Fprintf(w, "%-10s %-10s %-20s %-14s %-8s %-8s %s\n",
			v.Date,
			truncate(v.StaffID, 10),
			truncate(v.FullName, 20),
			truncate(v.Department, 14),
			v.CheckInTime.UTC().Format(timeLayout),
			out,
			hours,
		)
	}

	noun := "record"
	if len(views) != 1 {
		noun = "records"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(views), noun)
	return len(views)
}

// FormatJSONL writes one compact JSON object per row.
func FormatJSONL(w io.Writer, views []types.AttendanceView) error {
	for _, v := range views {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal record %d: %w", v.AttendanceID, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return err
		}
	}
	return nil
}

// FormatEvent writes a one-line, colored notice for a published attendance
// event.
func FormatEvent(w io.Writer, ev types.AttendanceEvent) {
	at := ev.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	stamp := at.UTC().Format(timeLayout)

	switch ev.Action {
	case types.SightingCheckedIn:
		green.Fprintf(w, "✓ [%s] %s checked in (%s, %s)\n", stamp, ev.StaffID, ev.Date, ev.Source)
	case types.SightingCheckedOut:
		cyan.Fprintf(w, "← [%s] %s checked out (%s, %s)\n", stamp, ev.StaffID, ev.Date, ev.Source)
	case types.SightingIgnored:
		yellow.Fprintf(w, "· [%s] %s ignored: %s\n", stamp, ev.StaffID, ev.Reason)
	default:
		fmt.Fprintf(w, "? [%s] %s %s\n", stamp, ev.StaffID, ev.Action)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

package printer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

func TestError(t *testing.T) {
	t.Run("returns error with title", func(t *testing.T) {
		err := Error("Test Error", "This is a test error", []string{})
		require.Error(t, err)
		require.Equal(t, "Test Error", err.Error())
	})

	t.Run("returns error with title for multiple suggestions", func(t *testing.T) {
		err := Error("Test Error", "Explanation", []string{"First option", "Second option"})
		require.Equal(t, "Test Error", err.Error())
	})
}

func TestWriteError_Layout(t *testing.T) {
	var buf bytes.Buffer
	writeError(&buf, "store unreachable", "Could not open the database.",
		map[string]string{"Path": "./data/attendance.db"},
		[]string{"Run migrations", "Check permissions"})

	out := buf.String()
	require.Contains(t, out, "store unreachable")
	require.Contains(t, out, "  Path: ./data/attendance.db")
	require.Contains(t, out, "Either:\n  1. Run migrations\n  2. Check permissions\n")
}

func sampleViews() []types.AttendanceView {
	in := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	out := in.Add(8*time.Hour + 30*time.Minute)
	return []types.AttendanceView{
		{
			AttendanceRecord: types.AttendanceRecord{
				AttendanceID: 1, StaffID: "S1", Date: "2026-03-02",
				CheckInTime: in, CheckOutTime: &out, Status: types.StatusPresent,
			},
			FullName: "Asha Rao", Department: "Engineering",
		},
		{
			AttendanceRecord: types.AttendanceRecord{
				AttendanceID: 2, StaffID: "S2", Date: "2026-03-02",
				CheckInTime: in.Add(time.Hour), Status: types.StatusPresent,
			},
			FullName: "A Very Long Staff Member Name", Department: "Operations",
		},
	}
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	n := FormatTable(&buf, sampleViews())
	require.Equal(t, 2, n)

	out := buf.String()
	require.Contains(t, out, "DATE")
	require.Contains(t, out, "09:00:00 17:30:00 8.50")
	require.Contains(t, out, "A Very Long Staff...")
	require.Contains(t, out, "2 records found")
}

func TestFormatTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.Equal(t, 0, FormatTable(&buf, nil))
	require.Equal(t, "No attendance records found\n", buf.String())
}

func TestFormatJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSONL(&buf, sampleViews()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first types.AttendanceView
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.Equal(t, "S1", first.StaffID)
	require.Equal(t, "Asha Rao", first.FullName)
}

func TestFormatEvent(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)
	tests := []struct {
		ev   types.AttendanceEvent
		want string
	}{
		{types.AttendanceEvent{Action: types.SightingCheckedIn, StaffID: "S1", Date: "2026-03-02", Source: types.SourceSighting, OccurredAt: at},
			"[09:05:00] S1 checked in (2026-03-02, sighting)"},
		{types.AttendanceEvent{Action: types.SightingCheckedOut, StaffID: "S1", Date: "2026-03-02", Source: types.SourceManual, OccurredAt: at},
			"[09:05:00] S1 checked out (2026-03-02, manual)"},
		{types.AttendanceEvent{Action: types.SightingIgnored, StaffID: "S1", Reason: "min_interval_not_elapsed", OccurredAt: at},
			"[09:05:00] S1 ignored: min_interval_not_elapsed"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		FormatEvent(&buf, tt.ev)
		require.Contains(t, buf.String(), tt.want)
	}
}

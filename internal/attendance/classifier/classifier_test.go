package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

var t0 = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func openRecord(checkIn time.Time) *types.AttendanceRecord {
	return &types.AttendanceRecord{
		AttendanceID: 1,
		StaffID:      "S1",
		Date:         "2024-01-15",
		CheckInTime:  checkIn,
		Status:       types.StatusPresent,
		CreatedAt:    checkIn,
	}
}

func closedRecord(checkIn, checkOut time.Time) *types.AttendanceRecord {
	r := openRecord(checkIn)
	r.CheckOutTime = &checkOut
	return r
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		existing *types.AttendanceRecord
		event    Event
		want     Decision
	}{
		{
			name:  "manual check-in without record opens",
			event: Event{Kind: ManualCheckIn, Now: t0},
			want:  Decision{Action: CreateOpen, At: t0},
		},
		{
			name:     "manual check-in with open record rejects",
			existing: openRecord(t0),
			event:    Event{Kind: ManualCheckIn, Now: t0.Add(time.Hour)},
			want:     Decision{Action: Reject, Reason: ReasonAlreadyCheckedIn},
		},
		{
			name:     "manual check-in with closed record rejects",
			existing: closedRecord(t0, t0.Add(time.Hour)),
			event:    Event{Kind: ManualCheckIn, Now: t0.Add(2 * time.Hour)},
			want:     Decision{Action: Reject, Reason: ReasonAlreadyCheckedIn},
		},
		{
			name:  "manual check-out without record rejects",
			event: Event{Kind: ManualCheckOut, Now: t0},
			want:  Decision{Action: Reject, Reason: ReasonNoCheckIn},
		},
		{
			name:     "manual check-out closes inside the debounce window",
			existing: openRecord(t0),
			event:    Event{Kind: ManualCheckOut, Now: t0.Add(time.Minute)},
			want:     Decision{Action: Close, At: t0.Add(time.Minute)},
		},
		{
			name:     "manual check-out overwrites an earlier checkout",
			existing: closedRecord(t0, t0.Add(time.Hour)),
			event:    Event{Kind: ManualCheckOut, Now: t0.Add(2 * time.Hour)},
			want:     Decision{Action: Close, At: t0.Add(2 * time.Hour)},
		},
		{
			name:  "first sighting opens",
			event: Event{Kind: Sighting, Now: t0},
			want:  Decision{Action: CreateOpen, At: t0},
		},
		{
			name:     "sighting at 4m59s is ignored",
			existing: openRecord(t0),
			event:    Event{Kind: Sighting, Now: t0.Add(4*time.Minute + 59*time.Second)},
			want:     Decision{Action: Ignore, Reason: ReasonMinInterval},
		},
		{
			name:     "sighting at exactly 5m closes",
			existing: openRecord(t0),
			event:    Event{Kind: Sighting, Now: t0.Add(5 * time.Minute)},
			want:     Decision{Action: Close, At: t0.Add(5 * time.Minute)},
		},
		{
			name:     "sighting after close re-stamps checkout",
			existing: closedRecord(t0, t0.Add(6*time.Minute)),
			event:    Event{Kind: Sighting, Now: t0.Add(10 * time.Minute)},
			want:     Decision{Action: Close, At: t0.Add(10 * time.Minute)},
		},
		{
			name:     "sighting after close inside the window still re-stamps",
			existing: closedRecord(t0, t0.Add(time.Minute)),
			event:    Event{Kind: Sighting, Now: t0.Add(2 * time.Minute)},
			want:     Decision{Action: Close, At: t0.Add(2 * time.Minute)},
		},
		{
			name:     "clock stepping back never moves checkout earlier",
			existing: closedRecord(t0, t0.Add(time.Hour)),
			event:    Event{Kind: ManualCheckOut, Now: t0.Add(30 * time.Minute)},
			want:     Decision{Action: Close, At: t0.Add(time.Hour)},
		},
		{
			name:     "checkout is never before check-in",
			existing: openRecord(t0),
			event:    Event{Kind: ManualCheckOut, Now: t0.Add(-time.Minute)},
			want:     Decision{Action: Close, At: t0},
		},
		{
			name:     "sighting before check-in is ignored",
			existing: openRecord(t0),
			event:    Event{Kind: Sighting, Now: t0.Add(-time.Minute)},
			want:     Decision{Action: Ignore, Reason: ReasonMinInterval},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.existing, tt.event)
			assert.Equal(t, tt.want.Action, got.Action, "action")
			assert.Equal(t, tt.want.Reason, got.Reason, "reason")
			assert.True(t, tt.want.At.Equal(got.At), "at: want %v, got %v", tt.want.At, got.At)
		})
	}
}

func TestClassify_UnknownKindRejects(t *testing.T) {
	got := Classify(nil, Event{Kind: Kind(99), Now: t0})
	assert.Equal(t, Reject, got.Action)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "manual_check_in", ManualCheckIn.String())
	assert.Equal(t, "manual_check_out", ManualCheckOut.String())
	assert.Equal(t, "sighting", Sighting.String())
	assert.True(t, ManualCheckOut.IsManual())
	assert.False(t, Sighting.IsManual())
}

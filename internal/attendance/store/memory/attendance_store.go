package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

type dayKey struct {
	staffID string
	date    string
}

// AttendanceStore keeps attendance rows in memory. It is intended for tests
// and the "memory" store mode.
type AttendanceStore struct {
	mu      sync.RWMutex
	nextID  int64
	rows    map[int64]types.AttendanceRecord
	byDay   map[dayKey]int64
	staff   *StaffStore
	pingErr error
}

// NewAttendanceStore returns a store that joins against staff in Query.
func NewAttendanceStore(staff *StaffStore) *AttendanceStore {
	if staff == nil {
		staff = NewStaffStore(nil)
	}
	return &AttendanceStore{
		rows:  make(map[int64]types.AttendanceRecord),
		byDay: make(map[dayKey]int64),
		staff: staff,
	}
}

func (s *AttendanceStore) FindByStaffDate(_ context.Context, staffID, date string) (*types.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byDay[dayKey{staffID, date}]
	if !ok {
		return nil, nil
	}
	rec := cloneRecord(s.rows[id])
	return &rec, nil
}

func (s *AttendanceStore) Insert(_ context.Context, rec types.AttendanceRecord) (types.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := dayKey{rec.StaffID, rec.Date}
	if _, exists := s.byDay[k]; exists {
		return types.AttendanceRecord{}, store.ErrDuplicate
	}

	s.nextID++
	rec.AttendanceID = s.nextID
	if rec.Status == "" {
		rec.Status = types.StatusPresent
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.CheckInTime
	}
	s.rows[rec.AttendanceID] = cloneRecord(rec)
	s.byDay[k] = rec.AttendanceID
	return cloneRecord(rec), nil
}

func (s *AttendanceStore) SetCheckOut(_ context.Context, attendanceID int64, at time.Time) (types.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rows[attendanceID]
	if !ok {
		return types.AttendanceRecord{}, store.ErrNotFound
	}
	if at.Before(rec.CheckInTime) {
		return types.AttendanceRecord{}, fmt.Errorf("SetCheckOut %d: checkout %s before check-in %s",
			attendanceID, at.Format(time.RFC3339), rec.CheckInTime.Format(time.RFC3339))
	}
	if rec.CheckOutTime == nil || rec.CheckOutTime.Before(at) {
		t := at
		rec.CheckOutTime = &t
	}
	s.rows[attendanceID] = rec
	return cloneRecord(rec), nil
}

func (s *AttendanceStore) Query(_ context.Context, f store.AttendanceFilter) ([]types.AttendanceView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.AttendanceView, 0)
	for _, rec := range s.rows {
		if f.StartDate != "" && rec.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && rec.Date > f.EndDate {
			continue
		}
		if f.StaffID != "" && rec.StaffID != f.StaffID {
			continue
		}
		// Inner join: rows for unknown staff are not reported.
		m, ok := s.staff.lookup(rec.StaffID)
		if !ok {
			continue
		}
		out = append(out, types.AttendanceView{
			AttendanceRecord: cloneRecord(rec),
			FullName:         m.FullName,
			Department:       m.Department,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CheckInTime.After(out[j].CheckInTime)
	})
	return out, nil
}

func (s *AttendanceStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pingErr
}

// SetPingError makes Ping fail. Test-only helper.
func (s *AttendanceStore) SetPingError(err error) {
	s.mu.Lock()
	s.pingErr = err
	s.mu.Unlock()
}

// Len returns the number of stored rows. Test-only helper.
func (s *AttendanceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func cloneRecord(r types.AttendanceRecord) types.AttendanceRecord {
	if r.CheckOutTime != nil {
		t := *r.CheckOutTime
		r.CheckOutTime = &t
	}
	return r
}

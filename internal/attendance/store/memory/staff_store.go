package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

type StaffStore struct {
	mu    sync.RWMutex
	staff map[string]types.StaffMember
}

func NewStaffStore(members []types.StaffMember) *StaffStore {
	s := &StaffStore{staff: make(map[string]types.StaffMember, len(members))}
	for _, m := range members {
		s.Put(m)
	}
	return s
}

// Put adds or replaces a staff member. Test and dev helper.
func (s *StaffStore) Put(m types.StaffMember) {
	m.StaffID = strings.TrimSpace(m.StaffID)
	if m.StaffID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff[m.StaffID] = m
}

func (s *StaffStore) GetStaff(_ context.Context, staffID string) (types.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.staff[staffID]
	if !ok {
		return types.StaffMember{}, store.ErrNotFound
	}
	return m, nil
}

func (s *StaffStore) ListActiveStaff(_ context.Context) ([]types.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.StaffMember, 0, len(s.staff))
	for _, m := range s.staff {
		if m.IsActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffID < out[j].StaffID })
	return out, nil
}

func (s *StaffStore) lookup(staffID string) (types.StaffMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.staff[staffID]
	return m, ok
}

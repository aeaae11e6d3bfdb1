package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
)

// EventStore is an in-memory append-only log of classified attendance events.
// It is intended for use in tests and dev environments.
type EventStore struct {
	mu     sync.Mutex
	events []store.EventRecord
	err    error
}

func NewEventStore() *EventStore {
	return &EventStore{}
}

func (s *EventStore) RecordEvent(_ context.Context, rec store.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, rec)
	return nil
}

func (s *EventStore) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var deleted int64
	for _, ev := range s.events {
		if ev.ReceivedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, ev)
	}
	s.events = kept
	return deleted, nil
}

// Events returns a copy of all recorded events.  Test-only helper.
func (s *EventStore) Events() []store.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.EventRecord, len(s.events))
	copy(out, s.events)
	return out
}

// FailWith makes RecordEvent return err. Test-only helper.
func (s *EventStore) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

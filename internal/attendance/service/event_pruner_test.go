package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/clock"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/service"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store/memory"
)

func TestEventPruner_DisabledWhenRetentionZero(t *testing.T) {
	es := memory.NewEventStore()
	pruner := service.NewEventPruner(es, service.PrunerConfig{
		RetentionDays: 0,
		IntervalHours: 1,
	}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pruner.Start(ctx)
	// Stop should return immediately.
	pruner.Stop()
}

func TestEventPruner_PrunesOldEvents(t *testing.T) {
	es := memory.NewEventStore()
	ctx := context.Background()
	now := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	for _, rec := range []store.EventRecord{
		{StaffID: "S1", Date: "2026-03-01", Kind: "sighting", Action: "create_open", ReceivedAt: now.AddDate(0, 0, -40)},
		{StaffID: "S1", Date: "2026-04-09", Kind: "sighting", Action: "close", ReceivedAt: now.AddDate(0, 0, -1)},
	} {
		if err := es.RecordEvent(ctx, rec); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	pruner := service.NewEventPruner(es, service.PrunerConfig{
		RetentionDays: 30,
		Clock:         clock.NewManual(now),
	}, silentLogger())

	if deleted := pruner.PruneOnce(ctx); deleted != 1 {
		t.Errorf("expected 1 pruned, got %d", deleted)
	}
	left := es.Events()
	if len(left) != 1 || left[0].Date != "2026-04-09" {
		t.Errorf("expected the recent event to survive, got %+v", left)
	}
}

func TestEventPruner_StopIsIdempotent(t *testing.T) {
	es := memory.NewEventStore()
	pruner := service.NewEventPruner(es, service.PrunerConfig{
		RetentionDays: 30,
		IntervalHours: 1,
	}, silentLogger())

	ctx, cancel := context.WithCancel(context.Background())
	pruner.Start(ctx)

	cancel()
	pruner.Stop()
	pruner.Stop()
}

func TestEventPruner_StopWithoutStart(t *testing.T) {
	pruner := service.NewEventPruner(memory.NewEventStore(), service.PrunerConfig{RetentionDays: 30}, silentLogger())
	pruner.Stop()
}

package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/clock"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/service"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store/memory"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStaff() []types.StaffMember {
	return []types.StaffMember{
		{StaffID: "S1", FullName: "Asha Rao", Department: "Engineering", IsActive: true},
		{StaffID: "S2", FullName: "Ben Ito", Department: "Operations", IsActive: true},
		{StaffID: "S3", FullName: "Cy Left", Department: "Operations", IsActive: false},
	}
}

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []types.AttendanceEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev types.AttendanceEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []types.AttendanceEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.AttendanceEvent, len(p.events))
	copy(out, p.events)
	return out
}

type harness struct {
	svc     *service.AttendanceService
	clk     *clock.Manual
	staff   *memory.StaffStore
	records *memory.AttendanceStore
	events  *memory.EventStore
	pub     *recordingPublisher
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	records store.AttendanceStore
	opts    service.Options
}

func withRecords(rs store.AttendanceStore) harnessOption {
	return func(c *harnessConfig) { c.records = rs }
}

func withOptions(fn func(*service.Options)) harnessOption {
	return func(c *harnessConfig) { fn(&c.opts) }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	h := &harness{
		clk:    clock.NewManual(t0),
		staff:  memory.NewStaffStore(testStaff()),
		events: memory.NewEventStore(),
		pub:    &recordingPublisher{},
	}
	h.records = memory.NewAttendanceStore(h.staff)

	cfg := harnessConfig{
		records: h.records,
		opts: service.Options{
			Clock:     h.clk,
			Logger:    silentLogger(),
			Publisher: h.pub,
		},
	}
	for _, o := range opts {
		o(&cfg)
	}

	dir := service.NewStaffDirectory(h.staff, time.Minute, silentLogger())
	h.svc = service.NewAttendanceService(cfg.records, dir, h.events, cfg.opts)
	return h
}

func ptr[T any](v T) *T { return &v }

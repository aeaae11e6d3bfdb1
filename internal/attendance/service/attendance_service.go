package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/classifier"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/clock"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
	"github.com/ravantech1548/Face-recogn-attendance/internal/monitoring"
)

const DefaultStoreTimeout = 5 * time.Second

type Options struct {
	Clock        clock.Clock
	Location     *time.Location // calendar used for the date partition; UTC when nil
	StoreTimeout time.Duration
	Logger       *slog.Logger
	Publisher    Publisher
}

// Filter selects records for QueryRecords. Empty fields impose no
// constraint; dates are inclusive YYYY-MM-DD.
type Filter struct {
	StartDate string
	EndDate   string
	StaffID   string
}

// AttendanceService turns manual actions and face sightings into at most one
// attendance record per staff member per day.
type AttendanceService struct {
	records   store.AttendanceStore
	staff     *StaffDirectory
	events    store.EventStore
	clock     clock.Clock
	loc       *time.Location
	timeout   time.Duration
	logger    *slog.Logger
	publisher Publisher
	locks     *KeyedMutex
}

// NewAttendanceService wires the engine. events may be nil to disable the
// audit log.
func NewAttendanceService(records store.AttendanceStore, staff *StaffDirectory, events store.EventStore, opt Options) *AttendanceService {
	if opt.Clock == nil {
		opt.Clock = clock.System{}
	}
	if opt.Location == nil {
		opt.Location = time.UTC
	}
	if opt.StoreTimeout <= 0 {
		opt.StoreTimeout = DefaultStoreTimeout
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Publisher == nil {
		opt.Publisher = nopPublisher{}
	}
	return &AttendanceService{
		records:   records,
		staff:     staff,
		events:    events,
		clock:     opt.Clock,
		loc:       opt.Location,
		timeout:   opt.StoreTimeout,
		logger:    opt.Logger,
		publisher: opt.Publisher,
		locks:     NewKeyedMutex(),
	}
}

// outcome is what one classified event did to the day's record.
type outcome struct {
	decision classifier.Decision
	record   *types.AttendanceRecord
}

// RecordManualAction applies an administrator check-in or check-out for
// today. A rejected action returns ErrAlreadyCheckedIn or ErrNoOpenCheckIn.
func (s *AttendanceService) RecordManualAction(ctx context.Context, staffID string, kind classifier.Kind) (types.AttendanceRecord, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return types.AttendanceRecord{}, ErrInvalidStaffID
	}
	if !kind.IsManual() {
		return types.AttendanceRecord{}, ErrInvalidAction
	}

	now := s.now()
	date := clock.DateOf(now, s.loc)

	ctx, span := monitoring.StartAttendanceSpan(ctx, "attendance.RecordManualAction", staffID, date)
	defer span.End()
	span.SetAttributes(attribute.String("attendance.kind", kind.String()))

	if err := s.resolveStaff(ctx, staffID, date); err != nil {
		monitoring.RecordSpanError(span, err)
		return types.AttendanceRecord{}, err
	}

	out, err := s.apply(ctx, staffID, date, kind, now, nil)
	if err != nil {
		monitoring.RecordSpanError(span, err)
		return types.AttendanceRecord{}, err
	}

	if out.decision.Action == classifier.Reject {
		switch out.decision.Reason {
		case classifier.ReasonAlreadyCheckedIn:
			return types.AttendanceRecord{}, ErrAlreadyCheckedIn
		case classifier.ReasonNoCheckIn:
			return types.AttendanceRecord{}, ErrNoOpenCheckIn
		default:
			return types.AttendanceRecord{}, fmt.Errorf("%w: %s", ErrInvalidAction, out.decision.Reason)
		}
	}
	return *out.record, nil
}

// RecordSighting applies one face-recognition hit. Debounced sightings come
// back as SightingIgnored with a reason, not as an error. confidence is only
// recorded; threshold filtering belongs to the recognizer.
func (s *AttendanceService) RecordSighting(ctx context.Context, staffID string, confidence *float64) (types.SightingResult, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return types.SightingResult{}, ErrInvalidStaffID
	}

	now := s.now()
	date := clock.DateOf(now, s.loc)

	ctx, span := monitoring.StartAttendanceSpan(ctx, "attendance.RecordSighting", staffID, date)
	defer span.End()

	if err := s.resolveStaff(ctx, staffID, date); err != nil {
		monitoring.RecordSpanError(span, err)
		return types.SightingResult{}, err
	}

	out, err := s.apply(ctx, staffID, date, classifier.Sighting, now, confidence)
	if err != nil {
		monitoring.RecordSpanError(span, err)
		return types.SightingResult{}, err
	}

	res := types.SightingResult{Reason: out.decision.Reason}
	switch out.decision.Action {
	case classifier.CreateOpen:
		res.Action = types.SightingCheckedIn
	case classifier.Close:
		res.Action = types.SightingCheckedOut
	case classifier.Ignore:
		res.Action = types.SightingIgnored
	default:
		return types.SightingResult{}, fmt.Errorf("unexpected sighting decision %s", out.decision.Action)
	}
	if out.record != nil {
		res.Attendance = *out.record
	}
	span.SetAttributes(attribute.String("attendance.action", res.Action))
	return res, nil
}

// QueryRecords lists records joined with staff names, newest date first.
func (s *AttendanceService) QueryRecords(ctx context.Context, f Filter) ([]types.AttendanceView, error) {
	sf := store.AttendanceFilter{
		StartDate: strings.TrimSpace(f.StartDate),
		EndDate:   strings.TrimSpace(f.EndDate),
		StaffID:   strings.TrimSpace(f.StaffID),
	}
	for _, d := range []string{sf.StartDate, sf.EndDate} {
		if d == "" {
			continue
		}
		if _, err := clock.ParseDate(d); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
	}

	ctx, span := monitoring.StartChildSpan(ctx, "attendance.QueryRecords")
	defer span.End()

	sctx, cancel := s.storeContext(ctx)
	defer cancel()

	started := time.Now()
	views, err := s.records.Query(sctx, sf)
	monitoring.ObserveStore("query", started, err)
	if err != nil {
		err = storageError("query", err)
		s.logger.Error("attendance query failed",
			"start_date", sf.StartDate, "end_date", sf.EndDate, "staff_id", sf.StaffID, "err", err)
		monitoring.RecordSpanError(span, err)
		return nil, err
	}
	return views, nil
}

// Ping checks that the attendance store is reachable.
func (s *AttendanceService) Ping(ctx context.Context) error {
	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	return s.records.Ping(sctx)
}

func (s *AttendanceService) resolveStaff(ctx context.Context, staffID, date string) error {
	sctx, cancel := s.storeContext(ctx)
	defer cancel()

	_, err := s.staff.Resolve(sctx, staffID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUnknownStaff), errors.Is(err, ErrInvalidStaffID):
		return err
	default:
		err = storageError("resolve_staff", err)
		s.logger.Error("staff lookup failed", "staff_id", staffID, "date", date, "err", err)
		return err
	}
}

// now reads the clock at the engine's resolution, so the times it compares
// are the times the store keeps.
func (s *AttendanceService) now() time.Time {
	return s.clock.Now().Truncate(clock.Resolution)
}

// apply decides and stores one event, then appends it to the audit log and
// publishes it. Both side effects run after the key lock is released.
func (s *AttendanceService) apply(ctx context.Context, staffID, date string, kind classifier.Kind, now time.Time, confidence *float64) (outcome, error) {
	out, err := s.decide(ctx, staffID, date, kind, now)
	if err != nil {
		return outcome{}, err
	}

	monitoring.RecordDecision(kind.String(), out.decision.Action.String())
	s.recordEvent(ctx, kind, out, staffID, date, confidence, now)
	if out.decision.Action != classifier.Reject {
		s.publish(ctx, kind, out, staffID, date)
	}
	return out, nil
}

// decide runs lookup, classify and mutate for one (staff, date) under its
// key lock. An insert that loses a race with another process is re-read and
// re-classified once.
func (s *AttendanceService) decide(ctx context.Context, staffID, date string, kind classifier.Kind, now time.Time) (outcome, error) {
	unlock := s.locks.Lock(staffID + "|" + date)
	defer unlock()

	for attempt := 0; ; attempt++ {
		existing, err := s.find(ctx, staffID, date)
		if err != nil {
			return outcome{}, err
		}

		d := classifier.Classify(existing, classifier.Event{Kind: kind, Now: now})
		out := outcome{decision: d, record: existing}

		switch d.Action {
		case classifier.CreateOpen:
			rec, err := s.insert(ctx, types.AttendanceRecord{
				StaffID:     staffID,
				Date:        date,
				CheckInTime: d.At,
				Status:      types.StatusPresent,
				CreatedAt:   d.At,
			})
			if errors.Is(err, store.ErrDuplicate) && attempt == 0 {
				s.logger.Debug("attendance insert raced, re-reading", "staff_id", staffID, "date", date)
				continue
			}
			if err != nil {
				return outcome{}, s.logStorage("insert", staffID, date, err)
			}
			out.record = &rec

		case classifier.Close:
			rec, err := s.setCheckOut(ctx, existing.AttendanceID, d.At)
			if err != nil {
				return outcome{}, s.logStorage("set_check_out", staffID, date, err)
			}
			out.record = &rec

		case classifier.Ignore:
			s.logger.Debug("sighting ignored", "staff_id", staffID, "date", date, "reason", d.Reason)

		case classifier.Reject:
			s.logger.Info("attendance action rejected",
				"staff_id", staffID, "date", date, "kind", kind.String(), "reason", d.Reason)
		}

		return out, nil
	}
}

func (s *AttendanceService) find(ctx context.Context, staffID, date string) (*types.AttendanceRecord, error) {
	sctx, cancel := s.storeContext(ctx)
	defer cancel()

	started := time.Now()
	rec, err := s.records.FindByStaffDate(sctx, staffID, date)
	monitoring.ObserveStore("find", started, err)
	if err != nil {
		return nil, s.logStorage("find", staffID, date, err)
	}
	return rec, nil
}

func (s *AttendanceService) insert(ctx context.Context, rec types.AttendanceRecord) (types.AttendanceRecord, error) {
	sctx, cancel := s.storeContext(ctx)
	defer cancel()

	started := time.Now()
	out, err := s.records.Insert(sctx, rec)
	if errors.Is(err, store.ErrDuplicate) {
		monitoring.ObserveStore("insert", started, nil)
		return out, err
	}
	monitoring.ObserveStore("insert", started, err)
	return out, err
}

func (s *AttendanceService) setCheckOut(ctx context.Context, attendanceID int64, at time.Time) (types.AttendanceRecord, error) {
	sctx, cancel := s.storeContext(ctx)
	defer cancel()

	started := time.Now()
	out, err := s.records.SetCheckOut(sctx, attendanceID, at)
	monitoring.ObserveStore("set_check_out", started, err)
	return out, err
}

// storeContext detaches from the caller's cancellation so an apply that has
// started runs to completion or timeout, never half way.
func (s *AttendanceService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func (s *AttendanceService) logStorage(op, staffID, date string, err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	err = storageError(op, err)
	s.logger.Error("attendance store failed", "op", op, "staff_id", staffID, "date", date, "err", err)
	return err
}

func storageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

// recordEvent appends to the audit log. Failures are logged and counted but
// never returned.
func (s *AttendanceService) recordEvent(ctx context.Context, kind classifier.Kind, out outcome, staffID, date string, confidence *float64, receivedAt time.Time) {
	if s.events == nil {
		return
	}

	rec := store.EventRecord{
		StaffID:    staffID,
		Date:       date,
		Kind:       kind.String(),
		Action:     out.decision.Action.String(),
		Reason:     out.decision.Reason,
		Confidence: confidence,
		ReceivedAt: receivedAt,
		DecidedAt:  s.now(),
	}
	if out.record != nil {
		id := out.record.AttendanceID
		rec.AttendanceID = &id
	}

	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.events.RecordEvent(sctx, rec); err != nil {
		monitoring.RecordEventLogFailure()
		s.logger.Warn("attendance event log append failed", "staff_id", staffID, "date", date, "err", err)
	}
}

func (s *AttendanceService) publish(ctx context.Context, kind classifier.Kind, out outcome, staffID, date string) {
	ev := types.AttendanceEvent{
		Action:     publishedAction(out.decision.Action),
		Reason:     out.decision.Reason,
		Source:     types.SourceSighting,
		StaffID:    staffID,
		Date:       date,
		Attendance: out.record,
		OccurredAt: s.now(),
	}
	if kind.IsManual() {
		ev.Source = types.SourceManual
	}

	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.publisher.Publish(sctx, ev); err != nil {
		monitoring.RecordPublishFailure()
		s.logger.Warn("attendance event publish failed", "staff_id", staffID, "date", date, "err", err)
	}
}

func publishedAction(a classifier.Action) string {
	switch a {
	case classifier.CreateOpen:
		return types.SightingCheckedIn
	case classifier.Close:
		return types.SightingCheckedOut
	case classifier.Ignore:
		return types.SightingIgnored
	}
	return a.String()
}

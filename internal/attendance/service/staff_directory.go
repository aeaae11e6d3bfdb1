package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

// StaffDirectory resolves staff ids against the staff store. It keeps a
// snapshot of active staff that is reloaded on an interval, and falls back
// to the store on a miss so newly added staff are visible immediately.
type StaffDirectory struct {
	store    store.StaffStore
	interval time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	active   map[string]types.StaffMember
	loadedAt time.Time

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewStaffDirectory creates a directory but does not start the refresh loop.
// An interval <= 0 disables the snapshot entirely; every Resolve then hits
// the store.
func NewStaffDirectory(st store.StaffStore, interval time.Duration, logger *slog.Logger) *StaffDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &StaffDirectory{
		store:    st,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Resolve returns the active staff member for staffID, or ErrUnknownStaff.
// Other errors come from the store.
func (d *StaffDirectory) Resolve(ctx context.Context, staffID string) (types.StaffMember, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return types.StaffMember{}, ErrInvalidStaffID
	}

	d.mu.RLock()
	m, ok := d.active[staffID]
	d.mu.RUnlock()
	if ok {
		return m, nil
	}

	m, err := d.store.GetStaff(ctx, staffID)
	if errors.Is(err, store.ErrNotFound) {
		return types.StaffMember{}, ErrUnknownStaff
	}
	if err != nil {
		return types.StaffMember{}, err
	}
	if !m.IsActive {
		return types.StaffMember{}, ErrUnknownStaff
	}

	if d.interval > 0 {
		d.mu.Lock()
		if d.active == nil {
			d.active = make(map[string]types.StaffMember)
		}
		d.active[m.StaffID] = m
		d.mu.Unlock()
	}
	return m, nil
}

// Refresh replaces the snapshot with the store's current active staff.
func (d *StaffDirectory) Refresh(ctx context.Context) error {
	members, err := d.store.ListActiveStaff(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]types.StaffMember, len(members))
	for _, m := range members {
		next[m.StaffID] = m
	}

	d.mu.Lock()
	d.active = next
	d.loadedAt = time.Now().UTC()
	d.mu.Unlock()
	return nil
}

// Size returns the number of staff in the snapshot.
func (d *StaffDirectory) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.active)
}

// Start loads the snapshot and keeps reloading it every interval until ctx
// is cancelled or Stop is called.
func (d *StaffDirectory) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		if d.interval <= 0 {
			d.logger.Info("staff directory refresh disabled")
			close(d.done)
			return
		}

		ctx, d.cancel = context.WithCancel(ctx)
		go d.loop(ctx)

		d.logger.Info("staff directory refresh started", "interval", d.interval.String())
	})
}

// Stop ends the refresh loop and waits for it. Safe to call without Start.
func (d *StaffDirectory) Stop() {
	d.startOnce.Do(func() { close(d.done) })
	if d.cancel != nil {
		d.cancel()
	}
	<-d.done
}

func (d *StaffDirectory) loop(ctx context.Context) {
	defer close(d.done)

	d.refresh(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.refresh(ctx)
		}
	}
}

func (d *StaffDirectory) refresh(ctx context.Context) {
	if err := d.Refresh(ctx); err != nil {
		if ctx.Err() == nil {
			d.logger.Warn("staff directory refresh failed", "err", err)
		}
		return
	}
	d.logger.Debug("staff directory refreshed", "active", d.Size())
}

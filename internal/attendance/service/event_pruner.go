package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/clock"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
)

// EventPruner periodically deletes audit log rows older than a configurable
// retention period. Attendance records themselves are never pruned.
//
// A retention of 0 disables pruning entirely.
type EventPruner struct {
	store     store.EventStore
	clock     clock.Clock
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// PrunerConfig holds the parameters for NewEventPruner.
type PrunerConfig struct {
	// RetentionDays is how many days of event history to keep.
	// 0 means keep everything (pruner will not start).
	RetentionDays int

	// IntervalHours is how often the pruner runs. Defaults to 6.
	IntervalHours int

	// Clock defaults to the system clock.
	Clock clock.Clock
}

// NewEventPruner creates a pruner but does not start it.
func NewEventPruner(s store.EventStore, cfg PrunerConfig, logger *slog.Logger) *EventPruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &EventPruner{
		store:     s,
		clock:     cfg.Clock,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start runs an immediate prune, then repeats on the configured interval
// until ctx is cancelled or Stop is called.
func (p *EventPruner) Start(ctx context.Context) {
	p.once.Do(func() {
		if p.retention <= 0 {
			p.logger.Info("event pruner disabled (retention=0)")
			close(p.done)
			return
		}

		ctx, p.cancel = context.WithCancel(ctx)
		go p.loop(ctx)

		p.logger.Info("event pruner started",
			"retention_days", int(p.retention.Hours()/24),
			"interval_hours", int(p.interval.Hours()))
	})
}

// Stop signals the pruner to exit and waits for it. Safe without Start.
func (p *EventPruner) Stop() {
	p.once.Do(func() { close(p.done) })
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *EventPruner) loop(ctx context.Context) {
	defer close(p.done)

	// Clean up any backlog first.
	p.PruneOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PruneOnce(ctx)
		}
	}
}

// PruneOnce deletes events older than the retention window and returns the
// number removed.
func (p *EventPruner) PruneOnce(ctx context.Context) int64 {
	cutoff := p.clock.Now().UTC().Add(-p.retention)
	deleted, err := p.store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("event prune failed", "err", err)
		return 0
	}
	if deleted > 0 {
		p.logger.Info("event prune", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}
	return deleted
}

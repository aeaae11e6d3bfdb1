package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store/memory"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store/postgres"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store/sqlite"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
	"github.com/ravantech1548/Face-recogn-attendance/internal/config"
	"github.com/ravantech1548/Face-recogn-attendance/internal/db"
)

// stack is the set of stores backing one process.
type stack struct {
	records store.AttendanceStore
	staff   store.StaffStore
	events  store.EventStore

	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func openStack(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stack, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return openMemory(logger), nil
	case config.StoreSQLite:
		return openSQLite(ctx, cfg, logger)
	case config.StorePostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func openMemory(logger *slog.Logger) *stack {
	members := make([]types.StaffMember, 0, len(db.DefaultDevStaff))
	for _, s := range db.DefaultDevStaff {
		members = append(members, types.StaffMember{
			StaffID:    s.StaffID,
			FullName:   s.FullName,
			Department: s.Department,
			IsActive:   true,
		})
	}
	staff := memory.NewStaffStore(members)

	logger.Warn("using in-memory store; attendance is lost on restart", "staff", len(members))
	return &stack{
		records: memory.NewAttendanceStore(staff),
		staff:   staff,
		events:  memory.NewEventStore(),
	}
}

func openSQLite(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stack, error) {
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", cfg.DBPath, err)
	}

	if cfg.Env == "dev" {
		if err := db.SeedDev(ctx, conn, db.SeedDevOptions{}); err != nil {
			_ = conn.Close()
			return nil, err
		}
		logger.Info("seeded dev staff", "count", len(db.DefaultDevStaff))
	}

	writer := db.NewWorker(conn)
	logger.Info("sqlite store ready", "path", cfg.DBPath)

	return &stack{
		records: sqlite.NewAttendanceStore(conn, writer),
		staff:   sqlite.NewStaffStore(conn),
		events:  sqlite.NewEventStore(conn, writer),
		closers: []func(){
			func() { _ = conn.Close() },
			writer.Close,
		},
	}, nil
}

func openPostgres(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stack, error) {
	conn, err := db.OpenPostgres(ctx, db.PostgresConfig{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	logger.Info("postgres store ready")

	return &stack{
		records: postgres.NewAttendanceStore(conn),
		staff:   postgres.NewStaffStore(conn),
		events:  postgres.NewEventStore(conn),
		closers: []func(){func() { _ = conn.Close() }},
	}, nil
}

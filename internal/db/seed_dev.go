package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type SeedStaff struct {
	StaffID    string
	FullName   string
	Department string
}

type SeedDevOptions struct {
	// Staff to upsert. When empty, DefaultDevStaff is used.
	Staff []SeedStaff
}

// DefaultDevStaff gives a fresh dev database someone to check in.
var DefaultDevStaff = []SeedStaff{
	{StaffID: "S1", FullName: "Dev Staff One", Department: "Engineering"},
	{StaffID: "S2", FullName: "Dev Staff Two", Department: "Operations"},
}

// SeedDev upserts staff rows into a SQLite database. Dev only; staff CRUD
// lives in the admin tooling.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	staff := opt.Staff
	if len(staff) == 0 {
		staff = DefaultDevStaff
	}

	for _, s := range staff {
		id := strings.TrimSpace(s.StaffID)
		if id == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, `
INSERT INTO staff(staff_id, full_name, department, is_active, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, 1, ?, ?)
ON CONFLICT(staff_id) DO UPDATE SET
  full_name = excluded.full_name,
  department = excluded.department,
  is_active = 1,
  updated_at_ms = excluded.updated_at_ms;
`, id, s.FullName, s.Department, now, now); err != nil {
			return fmt.Errorf("seed staff %s: %w", id, err)
		}
	}

	return nil
}

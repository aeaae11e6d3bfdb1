package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

type StaffStore struct {
	db *sql.DB
}

func NewStaffStore(db *sql.DB) *StaffStore {
	return &StaffStore{db: db}
}

func (s *StaffStore) GetStaff(ctx context.Context, staffID string) (types.StaffMember, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return types.StaffMember{}, store.ErrNotFound
	}

	var (
		m      types.StaffMember
		active int
	)
	err := s.db.QueryRowContext(ctx, `
SELECT staff_id, full_name, department, is_active
FROM staff
WHERE staff_id = ?;
`, staffID).Scan(&m.StaffID, &m.FullName, &m.Department, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return types.StaffMember{}, store.ErrNotFound
	}
	if err != nil {
		return types.StaffMember{}, fmt.Errorf("GetStaff query: %w", err)
	}
	m.IsActive = active == 1
	return m, nil
}

func (s *StaffStore) ListActiveStaff(ctx context.Context) ([]types.StaffMember, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT staff_id, full_name, department
FROM staff
WHERE is_active = 1
ORDER BY staff_id;
`)
	if err != nil {
		return nil, fmt.Errorf("ListActiveStaff query: %w", err)
	}
	defer rows.Close()

	var out []types.StaffMember
	for rows.Next() {
		m := types.StaffMember{IsActive: true}
		if err := rows.Scan(&m.StaffID, &m.FullName, &m.Department); err != nil {
			return nil, fmt.Errorf("ListActiveStaff scan: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

package store

import (
	"context"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

// StaffStore is a read-only view of the staff directory.
type StaffStore interface {
	GetStaff(ctx context.Context, staffID string) (types.StaffMember, error)
	ListActiveStaff(ctx context.Context) ([]types.StaffMember, error)
}

package service

import (
	"context"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

// Publisher broadcasts attendance events to UIs and log tailers. Delivery is
// best-effort; a failed publish never fails the originating call.
type Publisher interface {
	Publish(ctx context.Context, ev types.AttendanceEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, types.AttendanceEvent) error { return nil }

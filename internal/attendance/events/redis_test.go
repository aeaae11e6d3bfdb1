package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

func setupPublisher(t *testing.T) (*RedisPublisher, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	t.Cleanup(mr.Close)

	p, err := NewRedisPublisher(&redis.Options{Addr: mr.Addr()}, "test")
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, mr
}

func TestNewRedisPublisher_RequiresNamespace(t *testing.T) {
	_, err := NewRedisPublisher(&redis.Options{Addr: "localhost:0"}, "")
	assert.Error(t, err)
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "attendance:attendance_events", ChannelName("attendance"))
}

func TestPublishSubscribe_RoundTrip(t *testing.T) {
	p, _ := setupPublisher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, p.Ping(ctx))

	sub, err := p.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ev := types.AttendanceEvent{
		Action:  types.SightingCheckedIn,
		Source:  types.SourceSighting,
		StaffID: "S1",
		Date:    "2026-03-02",
		Attendance: &types.AttendanceRecord{
			AttendanceID: 1, StaffID: "S1", Date: "2026-03-02",
			CheckInTime: checkIn, Status: types.StatusPresent, CreatedAt: checkIn,
		},
		OccurredAt: checkIn,
	}
	require.NoError(t, p.Publish(ctx, ev))

	select {
	case got := <-sub.Events():
		assert.Equal(t, "S1", got.StaffID)
		assert.Equal(t, types.SightingCheckedIn, got.Action)
		require.NotNil(t, got.Attendance)
		assert.True(t, got.Attendance.CheckInTime.Equal(checkIn))
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestSubscribe_BadPayloadGoesToErrors(t *testing.T) {
	p, mr := setupPublisher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := p.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	mr.Publish(ChannelName("test"), "{not json")

	select {
	case err := <-sub.Errors():
		assert.Error(t, err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for decode error")
	}
}

func TestPublish_FailsWhenRedisDown(t *testing.T) {
	p, mr := setupPublisher(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, p.Publish(ctx, types.AttendanceEvent{StaffID: "S1"}))
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/service"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/store/memory"
	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

func TestStaffDirectory_RefreshLoadsActiveOnly(t *testing.T) {
	st := memory.NewStaffStore(testStaff())
	dir := service.NewStaffDirectory(st, time.Minute, silentLogger())

	require.NoError(t, dir.Refresh(context.Background()))
	assert.Equal(t, 2, dir.Size())
}

func TestStaffDirectory_MissFallsBackToStore(t *testing.T) {
	st := memory.NewStaffStore(testStaff())
	dir := service.NewStaffDirectory(st, time.Minute, silentLogger())
	ctx := context.Background()
	require.NoError(t, dir.Refresh(ctx))

	st.Put(types.StaffMember{StaffID: "S9", FullName: "New Hire", IsActive: true})

	m, err := dir.Resolve(ctx, " S9 ")
	require.NoError(t, err)
	assert.Equal(t, "New Hire", m.FullName)

	_, err = dir.Resolve(ctx, "S3")
	assert.ErrorIs(t, err, service.ErrUnknownStaff)
	_, err = dir.Resolve(ctx, "nobody")
	assert.ErrorIs(t, err, service.ErrUnknownStaff)
	_, err = dir.Resolve(ctx, "")
	assert.ErrorIs(t, err, service.ErrInvalidStaffID)
}

func TestStaffDirectory_RefreshDropsDeactivated(t *testing.T) {
	st := memory.NewStaffStore(testStaff())
	dir := service.NewStaffDirectory(st, time.Minute, silentLogger())
	ctx := context.Background()
	require.NoError(t, dir.Refresh(ctx))

	st.Put(types.StaffMember{StaffID: "S1", FullName: "Asha Rao", IsActive: false})
	require.NoError(t, dir.Refresh(ctx))

	_, err := dir.Resolve(ctx, "S1")
	assert.ErrorIs(t, err, service.ErrUnknownStaff)
}

func TestStaffDirectory_StartStop(t *testing.T) {
	st := memory.NewStaffStore(testStaff())
	dir := service.NewStaffDirectory(st, time.Hour, silentLogger())

	dir.Start(context.Background())
	assert.Eventually(t, func() bool { return dir.Size() == 2 }, time.Second, 5*time.Millisecond)

	dir.Stop()
	dir.Stop()
}

func TestStaffDirectory_StopWithoutStart(t *testing.T) {
	dir := service.NewStaffDirectory(memory.NewStaffStore(nil), time.Minute, silentLogger())

	done := make(chan struct{})
	go func() {
		dir.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without Start")
	}
}

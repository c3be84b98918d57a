package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malinawb/malina-bot/store"
	"github.com/malinawb/malina-bot/types"
)

const adminID int64 = 42

func newTestService(t *testing.T) (*Service, *store.MemoryStore, *time.Time) {
	t.Helper()
	now := base
	s := store.NewMemoryStore()
	s.SetClock(func() time.Time { return now })
	svc := NewService(s, Config{
		DailyCost: 13,
		AdminIDs:  []int64{adminID},
		Clock:     func() time.Time { return now },
	})
	return svc, s, &now
}

func TestIsEntitled_CreatesRecordOnFirstSight(t *testing.T) {
	svc, s, _ := newTestService(t)

	ent, err := svc.IsEntitled(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ent.Entitled)
	assert.Equal(t, int64(0), ent.Balance)

	rec, err := s.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, base, rec.CreatedAt)
}

func TestIsEntitled_ByBalance(t *testing.T) {
	svc, s, _ := newTestService(t)
	seedRecord(t, s, 7, 100)

	ent, err := svc.IsEntitled(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ent.Entitled)
	assert.Equal(t, types.EntitledByBalance, ent.State().Kind)
}

func TestIsEntitled_SettlesOnAccess(t *testing.T) {
	svc, s, clock := newTestService(t)
	seedRecord(t, s, 7, 100)

	*clock = base.Add(3 * 24 * time.Hour)
	ent, err := svc.IsEntitled(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ent.Entitled)
	assert.Equal(t, int64(100-3*13), ent.Balance)
}

func TestIsEntitled_TrialWindow(t *testing.T) {
	svc, _, clock := newTestService(t)

	_, err := svc.IsEntitled(context.Background(), 7)
	require.NoError(t, err)
	_, err = svc.GrantTrial(context.Background(), 7, 0)
	require.NoError(t, err)

	*clock = base.Add(23 * time.Hour)
	ent, err := svc.IsEntitled(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, ent.Entitled)
	assert.Equal(t, types.EntitledByTrial, ent.State().Kind)

	*clock = base.Add(25 * time.Hour)
	ent, err = svc.IsEntitled(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ent.Entitled)
	assert.Equal(t, types.EntitledNone, ent.State().Kind)
}

func TestGrantTrial_OneShot(t *testing.T) {
	svc, s, _ := newTestService(t)
	seedRecord(t, s, 7, 50)

	rec, err := svc.GrantTrial(context.Background(), 7, 0)
	require.NoError(t, err)
	assert.True(t, rec.TrialActivated)
	require.NotNil(t, rec.TrialUntil)
	assert.Equal(t, base.Add(DefaultTrialPeriod), *rec.TrialUntil)
	// the paid balance is a separate track
	assert.Equal(t, int64(50), rec.Balance)

	_, err = svc.GrantTrial(context.Background(), 7, 0)
	assert.ErrorIs(t, err, types.ErrTrialUsed)
}

func TestGrantTrial_NotRepeatableAfterExpiry(t *testing.T) {
	svc, s, clock := newTestService(t)
	seedRecord(t, s, 7, 0)

	_, err := svc.GrantTrial(context.Background(), 7, 0)
	require.NoError(t, err)

	*clock = base.Add(30 * 24 * time.Hour)
	_, err = svc.GrantTrial(context.Background(), 7, 0)
	assert.ErrorIs(t, err, types.ErrTrialUsed)
}

func TestAdjustBalance_AdminOnly(t *testing.T) {
	svc, s, _ := newTestService(t)
	seedRecord(t, s, 7, 100)

	_, err := svc.AdjustBalance(context.Background(), 7, 50, 999)
	assert.ErrorIs(t, err, types.ErrNotAdmin)

	rec, err := svc.AdjustBalance(context.Background(), 7, 50, adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(150), rec.Balance)
}

func TestAdjustBalance_MayGoNegative(t *testing.T) {
	svc, s, _ := newTestService(t)
	seedRecord(t, s, 7, 100)

	rec, err := svc.AdjustBalance(context.Background(), 7, -500, adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(-400), rec.Balance)
}

func TestAdjustBalance_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AdjustBalance(context.Background(), 404, 50, adminID)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSuspendAndReinstate(t *testing.T) {
	svc, s, _ := newTestService(t)
	seedRecord(t, s, 7, 100)

	rec, err := svc.Suspend(context.Background(), 7, adminID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Balance)
	assert.True(t, rec.TrialActivated)
	assert.Nil(t, rec.TrialUntil)

	// suspended: no balance and no trial available
	_, err = svc.GrantTrial(context.Background(), 7, 0)
	assert.ErrorIs(t, err, types.ErrTrialUsed)

	rec, err = svc.Reinstate(context.Background(), 7, adminID)
	require.NoError(t, err)
	assert.False(t, rec.TrialActivated)
	// a fresh trial is possible again, the balance stays zeroed
	assert.Equal(t, int64(0), rec.Balance)
	_, err = svc.GrantTrial(context.Background(), 7, 0)
	require.NoError(t, err)
}

func TestCancelTrial(t *testing.T) {
	svc, s, _ := newTestService(t)
	seedRecord(t, s, 7, 0)

	_, err := svc.GrantTrial(context.Background(), 7, 0)
	require.NoError(t, err)

	rec, err := svc.CancelTrial(context.Background(), 7, adminID)
	require.NoError(t, err)
	assert.False(t, rec.TrialActivated)
	assert.Nil(t, rec.TrialUntil)

	ent, err := svc.IsEntitled(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ent.Entitled)
}

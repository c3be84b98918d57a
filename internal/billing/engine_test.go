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

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	s.SetClock(func() time.Time { return base })
	return s
}

func seedRecord(t *testing.T, s *store.MemoryStore, userID, balance int64) {
	t.Helper()
	_, err := s.Create(context.Background(), userID)
	require.NoError(t, err)
	_, err = s.Update(context.Background(), userID, func(rec *types.AccessRecord) error {
		rec.Balance = balance
		return nil
	})
	require.NoError(t, err)
}

func TestSettle_ChargesWholeDays(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, 13)
	seedRecord(t, s, 1, 100)

	// 3 days and change since created_at: exactly 3 days billed.
	rec, err := engine.Settle(context.Background(), 1, base.Add(3*24*time.Hour+5*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(100-3*13), rec.Balance)
	require.NotNil(t, rec.LastBilling)
	assert.Equal(t, base.Add(3*24*time.Hour), *rec.LastBilling)
}

func TestSettle_PartialCoverageForfeitsArrears(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, 13)
	seedRecord(t, s, 1, 20)

	// 10 days elapsed but the balance covers only one. The anchor
	// advances by the single paid day; the other nine are forfeited,
	// never billed retroactively.
	rec, err := engine.Settle(context.Background(), 1, base.Add(10*24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(7), rec.Balance)
	require.NotNil(t, rec.LastBilling)
	assert.Equal(t, base.Add(24*time.Hour), *rec.LastBilling)
}

func TestSettle_IdempotentWithinDay(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, 13)
	seedRecord(t, s, 1, 100)

	now := base.Add(2*24*time.Hour + time.Hour)
	first, err := engine.Settle(context.Background(), 1, now)
	require.NoError(t, err)

	second, err := engine.Settle(context.Background(), 1, now.Add(10*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, first.Balance, second.Balance)
	assert.Equal(t, *first.LastBilling, *second.LastBilling)
}

func TestSettle_BalanceNeverNegative(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, 13)
	seedRecord(t, s, 1, 5)

	// Less than one day's worth of balance: nothing is charged at all.
	rec, err := engine.Settle(context.Background(), 1, base.Add(40*24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(5), rec.Balance)
	assert.GreaterOrEqual(t, rec.Balance, int64(0))
}

func TestSettle_NoChargeDuringTrial(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, 13)
	seedRecord(t, s, 1, 100)

	trialUntil := base.Add(24 * time.Hour)
	_, err := s.Update(context.Background(), 1, func(rec *types.AccessRecord) error {
		rec.TrialActivated = true
		rec.TrialUntil = &trialUntil
		return nil
	})
	require.NoError(t, err)

	// Inside the trial window the anchor is trial_until, which is still
	// in the future: no days elapsed, no charge, no anchor stamped.
	rec, err := engine.Settle(context.Background(), 1, base.Add(12*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(100), rec.Balance)
	assert.Nil(t, rec.LastBilling)
}

func TestSettle_PaidTimeStartsAfterTrial(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, 13)
	seedRecord(t, s, 1, 100)

	trialUntil := base.Add(24 * time.Hour)
	_, err := s.Update(context.Background(), 1, func(rec *types.AccessRecord) error {
		rec.TrialActivated = true
		rec.TrialUntil = &trialUntil
		return nil
	})
	require.NoError(t, err)

	// Two full days past trial end: two paid days, anchored on trial_until.
	rec, err := engine.Settle(context.Background(), 1, trialUntil.Add(2*24*time.Hour+time.Hour))
	require.NoError(t, err)

	assert.Equal(t, int64(100-2*13), rec.Balance)
	require.NotNil(t, rec.LastBilling)
	assert.Equal(t, trialUntil.Add(2*24*time.Hour), *rec.LastBilling)
}

func TestSettle_ArchivedRefused(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, 13)
	seedRecord(t, s, 1, 100)

	_, err := s.Update(context.Background(), 1, func(rec *types.AccessRecord) error {
		rec.IsArchived = true
		return nil
	})
	require.NoError(t, err)

	_, err = engine.Settle(context.Background(), 1, base.Add(48*time.Hour))
	assert.ErrorIs(t, err, types.ErrArchived)
}

func TestSettle_AnchorNeverMovesBackward(t *testing.T) {
	s := newTestStore(t)
	engine := NewEngine(s, 13)
	seedRecord(t, s, 1, 1000)

	rec, err := engine.Settle(context.Background(), 1, base.Add(5*24*time.Hour))
	require.NoError(t, err)
	anchor := *rec.LastBilling

	// A sweep running with a slightly earlier clock must not rewind.
	rec, err = engine.Settle(context.Background(), 1, base.Add(4*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, anchor, *rec.LastBilling)
}

func TestDefaultDailyCost(t *testing.T) {
	assert.Equal(t, int64(13), int64(DefaultDailyCost))
	engine := NewEngine(store.NewMemoryStore(), 0)
	assert.Equal(t, int64(13), engine.DailyCost())
}

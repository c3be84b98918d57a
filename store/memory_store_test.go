package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malinawb/malina-bot/types"
)

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newClockedStore() *MemoryStore {
	s := NewMemoryStore()
	s.SetClock(func() time.Time { return testBase })
	return s
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	s := newClockedStore()

	rec, err := s.Create(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.UserID)
	assert.Equal(t, testBase, rec.CreatedAt)
	assert.Equal(t, int64(0), rec.Balance)

	got, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = s.Create(context.Background(), 1)
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = s.Get(context.Background(), 2)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMemoryStore_UpdateUnknownUser(t *testing.T) {
	s := newClockedStore()
	_, err := s.Update(context.Background(), 404, func(rec *types.AccessRecord) error {
		rec.Balance = 10
		return nil
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMemoryStore_MutateErrorDiscardsChanges(t *testing.T) {
	s := newClockedStore()
	_, err := s.Create(context.Background(), 1)
	require.NoError(t, err)

	_, err = s.Update(context.Background(), 1, func(rec *types.AccessRecord) error {
		rec.Balance = 999
		return types.ErrTrialUsed
	})
	assert.ErrorIs(t, err, types.ErrTrialUsed)

	rec, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Balance)
}

func TestMemoryStore_UpdatePreservesIdentityFields(t *testing.T) {
	s := newClockedStore()
	_, err := s.Create(context.Background(), 1)
	require.NoError(t, err)

	rec, err := s.Update(context.Background(), 1, func(rec *types.AccessRecord) error {
		rec.UserID = 999
		rec.CreatedAt = rec.CreatedAt.Add(time.Hour)
		rec.Balance = 10
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.UserID)
	assert.Equal(t, testBase, rec.CreatedAt)
	assert.Equal(t, int64(10), rec.Balance)
}

func TestMemoryStore_ListIDsSorted(t *testing.T) {
	s := newClockedStore()
	for _, id := range []int64{30, 10, 20} {
		_, err := s.Create(context.Background(), id)
		require.NoError(t, err)
	}
	ids, err := s.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, ids)
}

func seedArchivedSeller(t *testing.T, s *MemoryStore, userID int64, seller string, balance int64) {
	t.Helper()
	_, err := s.Create(context.Background(), userID)
	require.NoError(t, err)
	_, err = s.Update(context.Background(), userID, func(rec *types.AccessRecord) error {
		rec.SellerName = seller
		rec.Balance = balance
		rec.IsArchived = true
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStore_FindBySeller(t *testing.T) {
	s := newClockedStore()
	seedArchivedSeller(t, s, 1, "ooo-malina", 250)

	rec, err := s.FindBySeller(context.Background(), "ooo-malina", true)
	require.NoError(t, err)
	assert.Equal(t, int64(250), rec.Balance)

	_, err = s.FindBySeller(context.Background(), "ooo-malina", false)
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = s.FindBySeller(context.Background(), "", true)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMemoryStore_SellerUniqueAmongLive(t *testing.T) {
	s := newClockedStore()
	for _, id := range []int64{1, 2} {
		_, err := s.Create(context.Background(), id)
		require.NoError(t, err)
	}
	_, err := s.Update(context.Background(), 1, func(rec *types.AccessRecord) error {
		rec.SellerName = "ooo-malina"
		return nil
	})
	require.NoError(t, err)

	_, err = s.Update(context.Background(), 2, func(rec *types.AccessRecord) error {
		rec.SellerName = "ooo-malina"
		return nil
	})
	assert.ErrorIs(t, err, types.ErrConflict)

	// archiving record 1 frees the identity for a live record
	_, err = s.Update(context.Background(), 1, func(rec *types.AccessRecord) error {
		rec.IsArchived = true
		return nil
	})
	require.NoError(t, err)
	_, err = s.Update(context.Background(), 2, func(rec *types.AccessRecord) error {
		rec.SellerName = "ooo-malina"
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStore_Rebind(t *testing.T) {
	s := newClockedStore()
	seedArchivedSeller(t, s, 1, "ooo-malina", 250)

	rec, err := s.Rebind(context.Background(), "ooo-malina", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.UserID)
	assert.False(t, rec.IsArchived)
	assert.Equal(t, int64(250), rec.Balance)

	_, err = s.Get(context.Background(), 1)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMemoryStore_RebindNoArchivedMatch(t *testing.T) {
	s := newClockedStore()
	_, err := s.Rebind(context.Background(), "nobody", 2)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestMemoryStore_RebindAbsorbsEmptyPlaceholder(t *testing.T) {
	s := newClockedStore()
	seedArchivedSeller(t, s, 1, "ooo-malina", 250)
	_, err := s.Create(context.Background(), 2)
	require.NoError(t, err)

	rec, err := s.Rebind(context.Background(), "ooo-malina", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(250), rec.Balance)
}

func TestMemoryStore_RebindRefusesNonEmptyTarget(t *testing.T) {
	s := newClockedStore()
	seedArchivedSeller(t, s, 1, "ooo-malina", 250)
	_, err := s.Create(context.Background(), 2)
	require.NoError(t, err)
	_, err = s.Update(context.Background(), 2, func(rec *types.AccessRecord) error {
		rec.Balance = 5
		return nil
	})
	require.NoError(t, err)

	_, err = s.Rebind(context.Background(), "ooo-malina", 2)
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestMemoryStore_RebindRefusesLiveSellerCollision(t *testing.T) {
	s := newClockedStore()
	seedArchivedSeller(t, s, 1, "ooo-malina", 250)

	// a different live account already claimed the identity
	_, err := s.Create(context.Background(), 3)
	require.NoError(t, err)
	_, err = s.Update(context.Background(), 3, func(rec *types.AccessRecord) error {
		rec.SellerName = "ooo-malina"
		return nil
	})
	require.NoError(t, err)

	_, err = s.Rebind(context.Background(), "ooo-malina", 2)
	assert.ErrorIs(t, err, types.ErrConflict)
}

func TestMemoryStore_NoOpUpdateKeepsTimestamp(t *testing.T) {
	s := NewMemoryStore()
	now := testBase
	s.SetClock(func() time.Time { return now })

	_, err := s.Create(context.Background(), 1)
	require.NoError(t, err)

	now = testBase.Add(time.Hour)
	rec, err := s.Update(context.Background(), 1, func(rec *types.AccessRecord) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, testBase, rec.UpdatedAt)
}

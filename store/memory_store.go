package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/malinawb/malina-bot/types"
)

// MemoryStore is an in-memory AccessStore with the same transactional
// contract as PostgresStore: the whole read-modify-write runs under one
// lock, so per-record updates are serializable. Used by tests and local
// runs without a database.
type MemoryStore struct {
	mu      sync.Mutex
	records map[int64]*types.AccessRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[int64]*types.AccessRecord),
		now:     time.Now,
	}
}

// SetClock overrides the timestamp source for created_at/updated_at.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func clone(rec *types.AccessRecord) *types.AccessRecord {
	cp := *rec
	if rec.TrialUntil != nil {
		t := *rec.TrialUntil
		cp.TrialUntil = &t
	}
	if rec.LastBilling != nil {
		t := *rec.LastBilling
		cp.LastBilling = &t
	}
	return &cp
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*types.AccessRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return nil, types.ErrNotFound
	}
	return clone(rec), nil
}

func (s *MemoryStore) Create(_ context.Context, userID int64) (*types.AccessRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[userID]; ok {
		return nil, types.ErrConflict
	}
	now := s.now()
	rec := &types.AccessRecord{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.records[userID] = rec
	return clone(rec), nil
}

func (s *MemoryStore) Update(_ context.Context, userID int64, mutate func(*types.AccessRecord) error) (*types.AccessRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[userID]
	if !ok {
		return nil, types.ErrNotFound
	}
	rec := clone(current)
	if err := mutate(rec); err != nil {
		return nil, err
	}
	rec.UserID = current.UserID
	rec.CreatedAt = current.CreatedAt

	if !recordUnchanged(current, rec) {
		if err := s.checkSellerUnique(rec); err != nil {
			return nil, err
		}
		rec.UpdatedAt = s.now()
		s.records[userID] = clone(rec)
	}
	return rec, nil
}

// checkSellerUnique mirrors the partial unique index of the Postgres
// schema: at most one non-archived record per seller_name.
func (s *MemoryStore) checkSellerUnique(rec *types.AccessRecord) error {
	if rec.IsArchived || rec.SellerName == "" {
		return nil
	}
	for id, other := range s.records {
		if id == rec.UserID || other.IsArchived {
			continue
		}
		if other.SellerName == rec.SellerName {
			return types.ErrConflict
		}
	}
	return nil
}

func (s *MemoryStore) ListIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStore) FindBySeller(_ context.Context, sellerName string, archived bool) (*types.AccessRecord, error) {
	sellerName = strings.TrimSpace(sellerName)
	if sellerName == "" {
		return nil, types.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.SellerName == sellerName && rec.IsArchived == archived {
			return clone(rec), nil
		}
	}
	return nil, types.ErrNotFound
}

func (s *MemoryStore) Rebind(_ context.Context, sellerName string, newUserID int64) (*types.AccessRecord, error) {
	sellerName = strings.TrimSpace(sellerName)
	if sellerName == "" {
		return nil, types.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var archivedRec *types.AccessRecord
	for _, rec := range s.records {
		if rec.SellerName == sellerName && rec.IsArchived {
			archivedRec = rec
			break
		}
	}
	if archivedRec == nil {
		return nil, types.ErrNotFound
	}

	if placeholder, ok := s.records[newUserID]; ok {
		if placeholder.Balance != 0 || placeholder.TrialActivated || placeholder.SellerName != "" {
			return nil, types.ErrConflict
		}
		delete(s.records, newUserID)
	}
	for id, other := range s.records {
		if id != archivedRec.UserID && !other.IsArchived && other.SellerName == sellerName {
			return nil, types.ErrConflict
		}
	}

	delete(s.records, archivedRec.UserID)
	rec := clone(archivedRec)
	rec.UserID = newUserID
	rec.IsArchived = false
	rec.UpdatedAt = s.now()
	s.records[newUserID] = rec
	return clone(rec), nil
}

package billing

import (
	"context"
	"errors"
	"time"

	"github.com/malinawb/malina-bot/types"
)

// DefaultTrialPeriod is the one-shot trial length.
const DefaultTrialPeriod = 24 * time.Hour

// Config carries the externally supplied knobs: the daily charge, the
// trial length and the privileged actor set. Nothing here is read from
// process-wide state.
type Config struct {
	DailyCost   int64
	TrialPeriod time.Duration
	AdminIDs    []int64

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Service is the entitlement surface exposed to calling code: the
// evaluator, the trial issuer, admin adjustments and archive/restore.
// All state goes through the AccessStore; Service itself is stateless
// and safe for concurrent use.
type Service struct {
	store       types.AccessStore
	engine      *Engine
	admins      map[int64]struct{}
	trialPeriod time.Duration
	now         func() time.Time
}

func NewService(store types.AccessStore, cfg Config) *Service {
	admins := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = struct{}{}
	}
	trial := cfg.TrialPeriod
	if trial <= 0 {
		trial = DefaultTrialPeriod
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:       store,
		engine:      NewEngine(store, cfg.DailyCost),
		admins:      admins,
		trialPeriod: trial,
		now:         now,
	}
}

func (s *Service) DailyCost() int64 {
	return s.engine.DailyCost()
}

func (s *Service) TrialPeriod() time.Duration {
	return s.trialPeriod
}

// Engine exposes the accrual engine, e.g. for the settlement scheduler.
func (s *Service) Engine() *Engine {
	return s.engine
}

func (s *Service) IsAdmin(actor int64) bool {
	_, ok := s.admins[actor]
	return ok
}

// Get returns the raw record without settling or creating anything.
func (s *Service) Get(ctx context.Context, userID int64) (*types.AccessRecord, error) {
	return s.store.Get(ctx, userID)
}

// ListUserIDs returns every known record id, archived included.
func (s *Service) ListUserIDs(ctx context.Context) ([]int64, error) {
	return s.store.ListIDs(ctx)
}

// IsEntitled is the single read path for "may this user use the service
// now". The record is created on first sight, settled opportunistically
// (pay-on-access), and the user is entitled iff the balance is positive
// or the trial window is still open. Archived records are never
// entitled and are not settled.
func (s *Service) IsEntitled(ctx context.Context, userID int64) (*types.Entitlement, error) {
	now := s.now()

	rec, err := s.store.Get(ctx, userID)
	if errors.Is(err, types.ErrNotFound) {
		rec, err = s.store.Create(ctx, userID)
		if errors.Is(err, types.ErrConflict) {
			// Lost a create race; the other writer's record is fine.
			rec, err = s.store.Get(ctx, userID)
		}
	}
	if err != nil {
		return nil, err
	}

	if rec.IsArchived {
		return snapshot(rec, now), nil
	}

	rec, err = s.engine.Settle(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	return snapshot(rec, now), nil
}

func snapshot(rec *types.AccessRecord, now time.Time) *types.Entitlement {
	trialActive := rec.TrialActive(now)
	return &types.Entitlement{
		Entitled:    !rec.IsArchived && (rec.Balance > 0 || trialActive),
		Balance:     rec.Balance,
		TrialActive: trialActive,
		TrialUntil:  rec.TrialUntil,
		IsArchived:  rec.IsArchived,
	}
}

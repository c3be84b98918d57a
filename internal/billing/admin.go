package billing

import (
	"context"

	"github.com/malinawb/malina-bot/types"
)

// Admin operations. Every call checks the actor against the injected
// privileged set and fails with ErrNotAdmin otherwise. Unlike the
// accrual engine these paths are escape hatches: AdjustBalance is
// unclamped and Suspend/Reinstate rewrite the trial flags directly.

func (s *Service) requireAdmin(actor int64) error {
	if !s.IsAdmin(actor) {
		return types.ErrNotAdmin
	}
	return nil
}

// AdjustBalance applies a signed correction to the balance. The delta
// may drive the balance below zero; that is intentional (chargebacks,
// manual corrections) and distinct from the engine's clamp.
func (s *Service) AdjustBalance(ctx context.Context, userID, delta, actor int64) (*types.AccessRecord, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, userID, func(rec *types.AccessRecord) error {
		if rec.IsArchived {
			return types.ErrArchived
		}
		rec.Balance += delta
		return nil
	})
}

// CancelTrial voids the trial entirely, making a new grant possible.
func (s *Service) CancelTrial(ctx context.Context, userID, actor int64) (*types.AccessRecord, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, userID, func(rec *types.AccessRecord) error {
		if rec.IsArchived {
			return types.ErrArchived
		}
		rec.TrialActivated = false
		rec.TrialUntil = nil
		return nil
	})
}

// Suspend is the coarse ban: the balance is zeroed and the trial flag is
// set spent so the user cannot re-enter through a fresh trial.
func (s *Service) Suspend(ctx context.Context, userID, actor int64) (*types.AccessRecord, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, userID, func(rec *types.AccessRecord) error {
		if rec.IsArchived {
			return types.ErrArchived
		}
		rec.Balance = 0
		rec.TrialActivated = true
		rec.TrialUntil = nil
		return nil
	})
}

// Reinstate lifts a suspension. The trial flags are cleared so the user
// may activate a fresh trial; a zeroed balance is not restored, it has
// to be topped up through AdjustBalance.
func (s *Service) Reinstate(ctx context.Context, userID, actor int64) (*types.AccessRecord, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, userID, func(rec *types.AccessRecord) error {
		if rec.IsArchived {
			return types.ErrArchived
		}
		rec.TrialActivated = false
		rec.TrialUntil = nil
		return nil
	})
}

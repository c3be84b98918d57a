package billing

import (
	"context"
	"strings"

	"github.com/malinawb/malina-bot/types"
)

// Archive soft-deletes the account: the API key is cleared and the trial
// flag forced off, while balance, seller identity and creation date are
// preserved so the account can be restored later. An archived record is
// invisible to the evaluator and refused by every other mutation.
func (s *Service) Archive(ctx context.Context, userID int64) (*types.AccessRecord, error) {
	return s.store.Update(ctx, userID, func(rec *types.AccessRecord) error {
		if rec.IsArchived {
			return types.ErrArchived
		}
		rec.IsArchived = true
		rec.APIKey = ""
		rec.TrialActivated = false
		rec.TrialUntil = nil
		return nil
	})
}

// FindRestorable returns the archived record bound to a seller identity,
// or ErrNotFound when nothing is waiting to be restored.
func (s *Service) FindRestorable(ctx context.Context, sellerName string) (*types.AccessRecord, error) {
	sellerName = strings.TrimSpace(sellerName)
	if sellerName == "" {
		return nil, types.ErrNotFound
	}
	return s.store.FindBySeller(ctx, sellerName, true)
}

// Restore re-targets the archived record matching sellerName to a new
// user_id and clears the archived flag, so the restored account is live
// immediately. The caller must have verified sellerName against the
// marketplace with a fresh credential first; this core does not.
func (s *Service) Restore(ctx context.Context, sellerName string, newUserID int64) (*types.AccessRecord, error) {
	sellerName = strings.TrimSpace(sellerName)
	if sellerName == "" {
		return nil, types.ErrNotFound
	}
	return s.store.Rebind(ctx, sellerName, newUserID)
}

// BindSeller stores a verified API key and seller identity on a live
// record. At most one live record may hold a seller identity; binding a
// seller already owned by another live account fails with ErrConflict.
func (s *Service) BindSeller(ctx context.Context, userID int64, apiKey string, id types.SellerIdentity) (*types.AccessRecord, error) {
	return s.store.Update(ctx, userID, func(rec *types.AccessRecord) error {
		if rec.IsArchived {
			return types.ErrArchived
		}
		rec.APIKey = strings.TrimSpace(apiKey)
		rec.SellerName = strings.TrimSpace(id.SellerName)
		rec.TradeMark = strings.TrimSpace(id.TradeMark)
		return nil
	})
}

// UnbindSeller removes the stored credential and seller identity from a
// live record without archiving it.
func (s *Service) UnbindSeller(ctx context.Context, userID int64) (*types.AccessRecord, error) {
	return s.store.Update(ctx, userID, func(rec *types.AccessRecord) error {
		if rec.IsArchived {
			return types.ErrArchived
		}
		rec.APIKey = ""
		rec.SellerName = ""
		rec.TradeMark = ""
		return nil
	})
}

package billing

import (
	"context"
	"time"

	"github.com/malinawb/malina-bot/types"
)

// GrantTrial issues the one-shot trial: trial_until = now + duration.
// A record whose trial was ever activated is rejected with ErrTrialUsed;
// the grant is never observably repeatable and never extends a window.
// The paid balance and the settlement anchor are left untouched: trial
// and paid time are independent tracks.
func (s *Service) GrantTrial(ctx context.Context, userID int64, duration time.Duration) (*types.AccessRecord, error) {
	if duration <= 0 {
		duration = s.trialPeriod
	}
	until := s.now().Add(duration)
	return s.store.Update(ctx, userID, func(rec *types.AccessRecord) error {
		if rec.IsArchived {
			return types.ErrArchived
		}
		if rec.TrialActivated {
			return types.ErrTrialUsed
		}
		rec.TrialActivated = true
		rec.TrialUntil = &until
		return nil
	})
}

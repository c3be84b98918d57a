package billing

import (
	"context"
	"time"

	"github.com/malinawb/malina-bot/types"
)

// DefaultDailyCost is the per-day charge in minor units: the 399 RUB
// monthly price spread over 30 days.
const DefaultDailyCost = 399 / 30

// Engine converts elapsed wall-clock time into consumed balance. It
// charges whole days only, never more than the balance covers, and a
// repeated run within the same day is a no-op.
//
// Arrears policy: days the balance could not cover are forfeited. The
// anchor advances only by what was paid, and after a later top-up the
// next settlement catches up within the then-current elapsed window; it
// never bills or refunds days retroactively. Swapping this policy only
// requires replacing Engine, not its callers.
type Engine struct {
	store     types.AccessStore
	dailyCost int64
}

func NewEngine(store types.AccessStore, dailyCost int64) *Engine {
	if dailyCost <= 0 {
		dailyCost = DefaultDailyCost
	}
	return &Engine{store: store, dailyCost: dailyCost}
}

func (e *Engine) DailyCost() int64 {
	return e.dailyCost
}

// Settle charges the record for whole days elapsed since its settlement
// anchor. Archived records are refused with ErrArchived.
func (e *Engine) Settle(ctx context.Context, userID int64, now time.Time) (*types.AccessRecord, error) {
	return e.store.Update(ctx, userID, func(rec *types.AccessRecord) error {
		if rec.IsArchived {
			return types.ErrArchived
		}
		e.apply(rec, now)
		return nil
	})
}

// apply runs the accrual step in place and reports whether the record
// changed. The anchor is last_billing, falling back to trial_until (paid
// time starts after the trial) and then to created_at. last_billing is
// only ever stamped with a value <= now, and never moves backward.
func (e *Engine) apply(rec *types.AccessRecord, now time.Time) bool {
	anchor := rec.LastBilling
	if anchor == nil {
		anchor = rec.TrialUntil
	}
	if anchor == nil && !rec.CreatedAt.IsZero() {
		t := rec.CreatedAt
		anchor = &t
	}
	if anchor == nil {
		// Record has no usable anchor at all: stamp it now, charge nothing.
		t := now
		rec.LastBilling = &t
		return true
	}

	elapsed := wholeDays(now.Sub(*anchor))
	if elapsed <= 0 {
		return false
	}
	payable := elapsed
	if affordable := rec.Balance / e.dailyCost; affordable < payable {
		payable = affordable
	}
	if payable <= 0 {
		return false
	}

	rec.Balance -= payable * e.dailyCost
	next := anchor.Add(time.Duration(payable) * 24 * time.Hour)
	rec.LastBilling = &next
	return true
}

func wholeDays(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d / (24 * time.Hour))
}

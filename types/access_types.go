package types

import "time"

// AccessRecord is the per-subscriber entitlement state, one row per
// Telegram user_id. An archived record keeps its balance, seller identity
// and creation date so the account can later be restored under a new
// user_id after the seller identity has been re-verified.
type AccessRecord struct {
	UserID         int64
	Balance        int64 // minor currency units (RUB)
	TrialActivated bool
	TrialUntil     *time.Time
	LastBilling    *time.Time // settlement anchor: charged up to here
	IsArchived     bool
	APIKey         string
	SellerName     string
	TradeMark      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TrialActive reports whether the record is inside its trial window.
func (r *AccessRecord) TrialActive(now time.Time) bool {
	return r.TrialActivated && r.TrialUntil != nil && !now.After(*r.TrialUntil)
}

// Entitlement is the snapshot returned to calling surfaces after a
// settle-on-access pass. No error is raised for an unentitled user; the
// fields are enough to render the buy / trial-expired / blocked states.
type Entitlement struct {
	Entitled    bool
	Balance     int64
	TrialActive bool
	TrialUntil  *time.Time
	IsArchived  bool
}

type EntitlementKind int

const (
	EntitledNone EntitlementKind = iota
	EntitledByBalance
	EntitledByTrial
)

// EntitlementState is the tagged view of what currently grants access:
// a paid balance, an active trial, or nothing. Exactly one variant holds.
type EntitlementState struct {
	Kind   EntitlementKind
	Amount int64     // set for EntitledByBalance
	Until  time.Time // set for EntitledByTrial
}

// State collapses the snapshot into its tagged variant. An active trial
// wins over balance: balance is not consumed while the trial runs.
func (e *Entitlement) State() EntitlementState {
	switch {
	case e.TrialActive && e.TrialUntil != nil:
		return EntitlementState{Kind: EntitledByTrial, Until: *e.TrialUntil}
	case e.Balance > 0 && !e.IsArchived:
		return EntitlementState{Kind: EntitledByBalance, Amount: e.Balance}
	default:
		return EntitlementState{Kind: EntitledNone}
	}
}

// SellerIdentity is the verified marketplace identity derived from an
// API key. SellerName is the join key for archive/restore.
type SellerIdentity struct {
	SellerName string
	TradeMark  string
}

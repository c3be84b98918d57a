package types

import "context"

// AccessStore is the persistence contract for AccessRecord.
//
// Update runs the mutator against a row-locked copy of the record inside
// one transaction, so concurrent settlements of the same record serialize
// instead of double-charging. Implementations skip the write when the
// mutator leaves the record unchanged.
type AccessStore interface {
	Get(ctx context.Context, userID int64) (*AccessRecord, error)
	Create(ctx context.Context, userID int64) (*AccessRecord, error)
	Update(ctx context.Context, userID int64, mutate func(*AccessRecord) error) (*AccessRecord, error)
	ListIDs(ctx context.Context) ([]int64, error)

	// FindBySeller returns the archived (or, with archived=false, the
	// live) record bound to a seller identity, or ErrNotFound.
	FindBySeller(ctx context.Context, sellerName string, archived bool) (*AccessRecord, error)

	// Rebind retargets the archived record matching sellerName to a new
	// user_id and clears its archived flag, all in one transaction. An
	// empty placeholder record already created for newUserID is absorbed;
	// a placeholder carrying value fails with ErrConflict.
	Rebind(ctx context.Context, sellerName string, newUserID int64) (*AccessRecord, error)
}

// IdentityVerifier confirms a seller identity from a marketplace API
// key. The billing core never calls it; the bot surface does, before
// binding a seller or restoring an archived account.
type IdentityVerifier interface {
	VerifySeller(ctx context.Context, apiKey string) (*SellerIdentity, error)
}

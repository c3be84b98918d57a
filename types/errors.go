package types

import "errors"

// Expected control-flow outcomes. Callers branch on these with
// errors.Is; only store/transport failures are treated as faults.
var (
	ErrNotFound           = errors.New("access record not found")
	ErrConflict           = errors.New("access record already exists")
	ErrArchived           = errors.New("access record is archived")
	ErrTrialUsed          = errors.New("trial already activated")
	ErrNotAdmin           = errors.New("actor is not an administrator")
	ErrVerificationFailed = errors.New("seller verification failed")
)

package types

// ChatState tracks a user's position in a multi-step input flow.
type ChatState string

const (
	StateIdle             ChatState = "idle"
	StateAwaitAPIKey      ChatState = "await_api_key"
	StateAwaitRestoreKey  ChatState = "await_restore_key"
	StateAwaitAdminAmount ChatState = "await_admin_amount"
)

// StateStore keeps per-user chat state between messages. Data carries
// flow parameters, e.g. the target user id of an admin balance change.
type StateStore interface {
	GetState(userID int64) (ChatState, map[string]string, error)
	SetState(userID int64, state ChatState, data map[string]string) error
	ClearState(userID int64) error
}

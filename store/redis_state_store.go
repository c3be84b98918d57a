package store

import (
	"fmt"
	"time"

	"github.com/malinawb/malina-bot/types"
)

// RedisStateStore keeps per-user chat state (awaiting API key, awaiting
// admin amount) between messages. Entries expire on their own so an
// abandoned flow never sticks.
type RedisStateStore struct {
	client *RedisClient
	ttl    time.Duration
}

func NewRedisStateStore(redisClient *RedisClient, ttlHours int) *RedisStateStore {
	ttl := time.Duration(ttlHours) * time.Hour
	if ttlHours <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStateStore{client: redisClient, ttl: ttl}
}

type chatStateEntry struct {
	State types.ChatState   `json:"state"`
	Data  map[string]string `json:"data,omitempty"`
}

func (s *RedisStateStore) stateKey(userID int64) string {
	return s.client.generateKey("chat_state", fmt.Sprintf("%d", userID))
}

func (s *RedisStateStore) GetState(userID int64) (types.ChatState, map[string]string, error) {
	var entry chatStateEntry
	if err := s.client.Get(s.stateKey(userID), &entry); err != nil {
		return types.StateIdle, nil, nil
	}
	if entry.State == "" {
		return types.StateIdle, nil, nil
	}
	return entry.State, entry.Data, nil
}

func (s *RedisStateStore) SetState(userID int64, state types.ChatState, data map[string]string) error {
	return s.client.Set(s.stateKey(userID), chatStateEntry{State: state, Data: data}, s.ttl)
}

func (s *RedisStateStore) ClearState(userID int64) error {
	return s.client.Del(s.stateKey(userID))
}

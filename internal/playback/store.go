package playback

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/venuecast/venuecast-backend/pkg/redis"
)

// Store persists the scheduler document across restarts.
type Store interface {
	// Load returns the saved state or nil when none exists.
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
	Clear(ctx context.Context) error
}

// RedisStore keeps the document as a JSON blob under a fixed key.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore builds a store over the shared redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context) (*State, error) {
	raw, err := s.client.Get(ctx, s.client.PlaybackStateKey())
	if err != nil {
		if redis.IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading playback state: %w", err)
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decoding playback state: %w", err)
	}
	if state.Backlog == nil {
		state.Backlog = []Item{}
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding playback state: %w", err)
	}
	if err := s.client.Set(ctx, s.client.PlaybackStateKey(), raw, 0); err != nil {
		return fmt.Errorf("saving playback state: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.client.PlaybackStateKey()); err != nil {
		return fmt.Errorf("clearing playback state: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store for tests and single-node dev runs. It
// round-trips through JSON so serialization bugs surface in tests too.
type MemoryStore struct {
	mu  sync.Mutex
	raw []byte
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.raw == nil {
		return nil, nil
	}
	var state State
	if err := json.Unmarshal(s.raw, &state); err != nil {
		return nil, err
	}
	if state.Backlog == nil {
		state.Backlog = []Item{}
	}
	return &state, nil
}

func (s *MemoryStore) Save(ctx context.Context, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.raw = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.raw = nil
	s.mu.Unlock()
	return nil
}

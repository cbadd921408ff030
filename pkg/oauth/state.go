package oauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore keeps CSRF state values between Begin and Complete.
// Consume must be atomic: a state is accepted at most once.
type StateStore interface {
	Store(ctx context.Context, state string, ttl time.Duration) error
	// Consume removes state, returning ErrStateNotFound when it is unknown,
	// expired or already used.
	Consume(ctx context.Context, state string) error
}

// MemoryStateStore is a process-local StateStore. States are lost on restart and
// not shared between instances.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

var _ StateStore = (*MemoryStateStore)(nil)

// NewMemoryStateStore returns an empty in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStateStore) Store(_ context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, exp := range s.states {
		if !now.Before(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(ttl)
	return nil
}

func (s *MemoryStateStore) Consume(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.states[state]
	if !ok {
		return ErrStateNotFound
	}
	delete(s.states, state)
	if !s.now().Before(exp) {
		return ErrStateNotFound
	}
	return nil
}

// RedisStateStore keeps states in Redis so any instance can complete a flow.
type RedisStateStore struct {
	client redis.UniversalClient
	prefix string
}

var _ StateStore = (*RedisStateStore)(nil)

// NewRedisStateStore returns a StateStore writing keys as prefix+state.
func NewRedisStateStore(client redis.UniversalClient, prefix string) *RedisStateStore {
	if prefix == "" {
		prefix = "oauth:state:"
	}
	return &RedisStateStore{client: client, prefix: prefix}
}

func (s *RedisStateStore) Store(ctx context.Context, state string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, s.prefix+state, 1, ttl).Result()
	if err != nil {
		return fmt.Errorf("oauth: store state: %w", err)
	}
	if !ok {
		return errors.New("oauth: state collision")
	}
	return nil
}

// Consume uses GETDEL so two concurrent callbacks cannot both accept a state.
func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	if err := s.client.GetDel(ctx, s.prefix+state).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrStateNotFound
		}
		return fmt.Errorf("oauth: consume state: %w", err)
	}
	return nil
}

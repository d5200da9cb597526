package alerting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownStore tracks the last firing time per rule id. Cooldowns are
// keyed by rule id alone, not (rule, source): one source's firing
// suppresses the rule for every source until the cooldown elapses.
type CooldownStore interface {
	// LastFired returns the recorded firing time for a rule, or false if
	// the rule has never fired (or the record has expired).
	LastFired(ctx context.Context, ruleID string) (time.Time, bool, error)
	// MarkFired records a firing time for a rule.
	MarkFired(ctx context.Context, ruleID string, t time.Time, cooldown time.Duration) error
}

// MemoryCooldownStore is the default in-process store.
type MemoryCooldownStore struct {
	lastFired map[string]time.Time
}

// NewMemoryCooldownStore creates an empty in-memory store.
func NewMemoryCooldownStore() *MemoryCooldownStore {
	return &MemoryCooldownStore{lastFired: make(map[string]time.Time)}
}

// LastFired implements CooldownStore.
func (m *MemoryCooldownStore) LastFired(_ context.Context, ruleID string) (time.Time, bool, error) {
	t, ok := m.lastFired[ruleID]
	return t, ok, nil
}

// MarkFired implements CooldownStore.
func (m *MemoryCooldownStore) MarkFired(_ context.Context, ruleID string, t time.Time, _ time.Duration) error {
	m.lastFired[ruleID] = t
	return nil
}

// RedisCooldownStore shares cooldown state across replicas through Redis.
// Records expire with the cooldown itself, so Redis holds only live
// suppressions.
type RedisCooldownStore struct {
	client *redis.Client
	prefix string
}

// NewRedisCooldownStore creates a store over an existing Redis client.
func NewRedisCooldownStore(client *redis.Client) *RedisCooldownStore {
	return &RedisCooldownStore{client: client, prefix: "hawkline:cooldown:"}
}

// LastFired implements CooldownStore.
func (r *RedisCooldownStore) LastFired(ctx context.Context, ruleID string) (time.Time, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+ruleID).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get cooldown for %s: %w", ruleID, err)
	}
	return time.UnixMilli(val), true, nil
}

// MarkFired implements CooldownStore.
func (r *RedisCooldownStore) MarkFired(ctx context.Context, ruleID string, t time.Time, cooldown time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+ruleID, t.UnixMilli(), cooldown).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown for %s: %w", ruleID, err)
	}
	return nil
}

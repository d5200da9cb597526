package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hawkline-systems/hawkline/internal/signal"
)

// Engine holds the alert rule set and evaluates every enabled rule against
// each ingested signal. It is not safe for concurrent use; the owning
// facade serializes calls.
type Engine struct {
	rules     []Rule
	cooldowns CooldownStore
}

// NewEngine creates an engine with no rules. A nil store falls back to the
// in-memory cooldown store.
func NewEngine(store CooldownStore) *Engine {
	if store == nil {
		store = NewMemoryCooldownStore()
	}
	return &Engine{cooldowns: store}
}

// AddRule registers a rule. Re-registering an existing id replaces the
// rule in place, keeping its position in evaluation order.
func (e *Engine) AddRule(r Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for i, existing := range e.rules {
		if existing.ID == r.ID {
			e.rules[i] = r
			return nil
		}
	}
	e.rules = append(e.rules, r)
	return nil
}

// RemoveRule deletes a rule by id.
func (e *Engine) RemoveRule(id string) error {
	for i, r := range e.rules {
		if r.ID == id {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("alert rule %s not found", id)
}

// SetEnabled toggles a rule without removing it.
func (e *Engine) SetEnabled(id string, enabled bool) error {
	for i, r := range e.rules {
		if r.ID == id {
			e.rules[i].Enabled = enabled
			return nil
		}
	}
	return fmt.Errorf("alert rule %s not found", id)
}

// Rules returns the registered rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate runs every enabled rule against the signal. All rules whose
// cooldown has elapsed and whose condition matches fire; their alerts are
// returned in rule registration order. A cooldown store failure disables
// suppression for that rule rather than dropping the alert.
func (e *Engine) Evaluate(ctx context.Context, s signal.Signal, now time.Time) []signal.TriggeredAlert {
	var alerts []signal.TriggeredAlert
	for _, r := range e.rules {
		if !r.Enabled {
			continue
		}
		last, fired, err := e.cooldowns.LastFired(ctx, r.ID)
		if err == nil && fired && now.Sub(last) < r.Cooldown {
			continue
		}
		if !r.Condition.Matches(s) {
			continue
		}

		id, _ := uuid.NewV7()
		alerts = append(alerts, signal.TriggeredAlert{
			ID:       id.String(),
			RuleID:   r.ID,
			Priority: r.Priority,
			Signal:   s,
			FiredAt:  now,
		})
		_ = e.cooldowns.MarkFired(ctx, r.ID, now, r.Cooldown)
	}
	return alerts
}

package correlation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hawkline-systems/hawkline/internal/history"
	"github.com/hawkline-systems/hawkline/internal/signal"
)

// Engine holds the correlation rule set and evaluates every rule against
// the shared history on each ingested signal. It is not safe for
// concurrent use; the owning facade serializes calls.
type Engine struct {
	rules   []Rule
	history *history.History
}

// NewEngine creates an engine over the given history with no rules
// registered.
func NewEngine(h *history.History) *Engine {
	return &Engine{history: h}
}

// AddRule registers a rule. Rules are evaluated in registration order.
// Re-registering an existing id replaces the rule in place.
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
	return fmt.Errorf("correlation rule %s not found", id)
}

// Rules returns the registered rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Process appends the signal to the history and evaluates every rule
// against the updated window. All matching rules emit composites, in
// registration order.
func (e *Engine) Process(s signal.Signal, now time.Time) []signal.Composite {
	e.history.Append(s)

	var composites []signal.Composite
	for _, rule := range e.rules {
		if c, ok := e.evaluate(rule, now); ok {
			composites = append(composites, c)
		}
	}
	return composites
}

// evaluate runs one rule against the current window. The rule matches only
// when every required kind is represented by at least one in-window signal
// and the mean confidence over the collected signals clears the threshold.
func (e *Engine) evaluate(rule Rule, now time.Time) (signal.Composite, bool) {
	required := make(map[string]bool, len(rule.RequiredKinds))
	for _, k := range rule.RequiredKinds {
		required[k] = true
	}

	var matched []signal.Signal
	seen := make(map[string]bool, len(required))
	for _, s := range e.history.WindowSince(now, rule.Window) {
		if required[s.Kind] {
			matched = append(matched, s)
			seen[s.Kind] = true
		}
	}
	if len(seen) < len(required) {
		return signal.Composite{}, false
	}

	var sum float64
	for _, s := range matched {
		sum += s.ConfidenceOrZero()
	}
	avg := sum / float64(len(matched))
	if avg < rule.MinAverageConfidence {
		return signal.Composite{}, false
	}

	return buildComposite(rule, matched, avg, now), true
}

// confidenceBoost is the fixed correlation bonus applied to the mean
// confidence of the contributing signals, capped at 1.0.
const confidenceBoost = 1.1

func buildComposite(rule Rule, matched []signal.Signal, avg float64, now time.Time) signal.Composite {
	boosted := avg * confidenceBoost
	if boosted > 1.0 {
		boosted = 1.0
	}

	sources := make([]string, 0, len(matched))
	seenSource := make(map[string]bool, len(matched))
	fingerprints := make([]string, 0, len(matched))
	kinds := make([]string, 0, len(matched))
	for _, s := range matched {
		if !seenSource[s.Source] {
			seenSource[s.Source] = true
			sources = append(sources, s.Source)
		}
		fingerprints = append(fingerprints, s.Fingerprint)
		kinds = append(kinds, s.Kind)
	}

	return signal.Composite{
		ID:                  uuid.New().String(),
		Pattern:             rule.OutputPattern,
		Confidence:          boosted,
		ContributingSources: sources,
		ProducedAt:          now,
		Metadata: map[string]any{
			"rule_id":                   rule.ID,
			signal.MetaPattern:          rule.OutputPattern,
			signal.MetaContributors:     fingerprints,
			signal.MetaContributorKinds: kinds,
		},
	}
}

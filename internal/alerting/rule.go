package alerting

import (
	"fmt"
	"time"

	"github.com/hawkline-systems/hawkline/internal/signal"
)

// Rule is an alert rule: a condition over a single signal, a priority, and
// a cooldown suppressing repeat firings.
type Rule struct {
	ID        string
	Priority  signal.Priority
	Cooldown  time.Duration
	Enabled   bool
	Condition Condition
}

// Validate rejects malformed rules at registration time.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("alert rule: id is required")
	}
	if !r.Priority.IsValid() {
		return fmt.Errorf("alert rule %s: invalid priority %q", r.ID, r.Priority)
	}
	if r.Cooldown <= 0 {
		return fmt.Errorf("alert rule %s: cooldown must be positive", r.ID)
	}
	if r.Condition == nil {
		return fmt.Errorf("alert rule %s: condition is required", r.ID)
	}
	return nil
}

// DefaultRules returns the built-in alert rules. All are overridable or
// removable through the registration API.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:        "high-confidence-detection",
			Priority:  signal.PriorityHigh,
			Cooldown:  30 * time.Second,
			Enabled:   true,
			Condition: ConfidenceAbove{Kind: "detection", Threshold: 0.9},
		},
		{
			ID:        "composite-pattern",
			Priority:  signal.PriorityCritical,
			Cooldown:  60 * time.Second,
			Enabled:   true,
			Condition: CompositePattern{},
		},
		{
			ID:        "long-dormancy-reactivation",
			Priority:  signal.PriorityMedium,
			Cooldown:  120 * time.Second,
			Enabled:   true,
			Condition: MetadataAbove{Field: "dormancy_hours", Threshold: 72},
		},
		{
			ID:        "deployment-burst",
			Priority:  signal.PriorityHigh,
			Cooldown:  60 * time.Second,
			Enabled:   true,
			Condition: MetadataAbove{Field: "deploys_per_hour", Threshold: 10},
		},
	}
}

// Package correlation implements time-windowed multi-kind correlation over
// the signal history, emitting composite signals when a rule's required
// kinds co-occur with sufficient aggregate confidence.
package correlation

import (
	"fmt"
	"time"
)

// Rule declares which signal kinds must co-occur, inside what trailing
// window and above what mean confidence, to emit a composite.
type Rule struct {
	ID                   string        `json:"id"`
	RequiredKinds        []string      `json:"required_kinds"`
	Window               time.Duration `json:"window"`
	MinAverageConfidence float64       `json:"min_average_confidence"`
	OutputPattern        string        `json:"output_pattern"`
}

// Validate rejects malformed rules at registration time so they never
// reach evaluation.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("correlation rule: id is required")
	}
	if len(r.RequiredKinds) == 0 {
		return fmt.Errorf("correlation rule %s: required_kinds must not be empty", r.ID)
	}
	for _, k := range r.RequiredKinds {
		if k == "" {
			return fmt.Errorf("correlation rule %s: required_kinds contains an empty kind", r.ID)
		}
	}
	if r.Window <= 0 {
		return fmt.Errorf("correlation rule %s: window must be positive", r.ID)
	}
	if r.MinAverageConfidence < 0 || r.MinAverageConfidence > 1 {
		return fmt.Errorf("correlation rule %s: min_average_confidence %g is outside [0, 1]",
			r.ID, r.MinAverageConfidence)
	}
	if r.OutputPattern == "" {
		return fmt.Errorf("correlation rule %s: output_pattern is required", r.ID)
	}
	return nil
}

// DefaultRules returns the built-in correlations. Both are illustrative
// defaults; callers can remove or override them through the registration
// API.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:                   "funding-deployment",
			RequiredKinds:        []string{"cex_funding", "rapid_deploy"},
			Window:               30 * time.Second,
			MinAverageConfidence: 0.8,
			OutputPattern:        "coordinated_funding_deployment",
		},
		{
			ID:                   "dormant-reactivation",
			RequiredKinds:        []string{"dormant_reactivation", "rapid_deploy"},
			Window:               120 * time.Second,
			MinAverageConfidence: 0.75,
			OutputPattern:        "reactivated_deployer",
		},
	}
}

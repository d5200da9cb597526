// Package rulefile loads correlation and alert rule definitions from a
// YAML file at startup.
package rulefile

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hawkline-systems/hawkline/internal/alerting"
	"github.com/hawkline-systems/hawkline/internal/correlation"
	"github.com/hawkline-systems/hawkline/internal/signal"
)

// File is the YAML document shape:
//
//	correlation:
//	  - id: funding-deployment
//	    required_kinds: [cex_funding, rapid_deploy]
//	    window: 30s
//	    min_average_confidence: 0.8
//	    output_pattern: coordinated_funding_deployment
//	alerts:
//	  - id: high-confidence-detection
//	    priority: high
//	    cooldown: 30s
//	    enabled: true
//	    condition:
//	      type: confidence_above
//	      kind: detection
//	      threshold: 0.9
type File struct {
	Correlation []CorrelationRuleDef `yaml:"correlation"`
	Alerts      []AlertRuleDef       `yaml:"alerts"`
}

// CorrelationRuleDef is the file form of a correlation rule.
type CorrelationRuleDef struct {
	ID                   string   `yaml:"id"`
	RequiredKinds        []string `yaml:"required_kinds"`
	Window               string   `yaml:"window"`
	MinAverageConfidence float64  `yaml:"min_average_confidence"`
	OutputPattern        string   `yaml:"output_pattern"`
}

// AlertRuleDef is the file form of an alert rule.
type AlertRuleDef struct {
	ID        string                 `yaml:"id"`
	Priority  string                 `yaml:"priority"`
	Cooldown  string                 `yaml:"cooldown"`
	Enabled   *bool                  `yaml:"enabled"`
	Condition alerting.ConditionSpec `yaml:"condition"`
}

// Rules is the parsed, validated result of a rule file.
type Rules struct {
	Correlation []correlation.Rule
	Alerts      []alerting.Rule
}

// Load reads and parses a rule file. Every rule is validated; one bad rule
// fails the whole load so a typo cannot silently drop a detection.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	return Parse(data)
}

// Parse parses rule file contents.
func Parse(data []byte) (*Rules, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}

	out := &Rules{}
	for _, def := range f.Correlation {
		window, err := time.ParseDuration(def.Window)
		if err != nil {
			return nil, fmt.Errorf("correlation rule %s: invalid window %q: %w", def.ID, def.Window, err)
		}
		rule := correlation.Rule{
			ID:                   def.ID,
			RequiredKinds:        def.RequiredKinds,
			Window:               window,
			MinAverageConfidence: def.MinAverageConfidence,
			OutputPattern:        def.OutputPattern,
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		out.Correlation = append(out.Correlation, rule)
	}

	for _, def := range f.Alerts {
		cooldown, err := time.ParseDuration(def.Cooldown)
		if err != nil {
			return nil, fmt.Errorf("alert rule %s: invalid cooldown %q: %w", def.ID, def.Cooldown, err)
		}
		cond, err := def.Condition.Build()
		if err != nil {
			return nil, fmt.Errorf("alert rule %s: %w", def.ID, err)
		}
		enabled := true
		if def.Enabled != nil {
			enabled = *def.Enabled
		}
		rule := alerting.Rule{
			ID:        def.ID,
			Priority:  signal.Priority(def.Priority),
			Cooldown:  cooldown,
			Enabled:   enabled,
			Condition: cond,
		}
		if err := rule.Validate(); err != nil {
			return nil, err
		}
		out.Alerts = append(out.Alerts, rule)
	}

	return out, nil
}

// Package alerting evaluates per-signal alert rules with priority and
// cooldown semantics.
package alerting

import (
	"fmt"

	"github.com/hawkline-systems/hawkline/internal/signal"
)

// ConditionType identifies a condition variant in rule definitions.
type ConditionType string

const (
	// TypeConfidenceAbove fires when a signal of a given kind carries a
	// confidence strictly above a threshold.
	TypeConfidenceAbove ConditionType = "confidence_above"
	// TypeKindEquals fires on every signal of a given kind.
	TypeKindEquals ConditionType = "kind_equals"
	// TypeCompositePattern fires on signals carrying a pattern tag,
	// i.e. re-ingested composites.
	TypeCompositePattern ConditionType = "composite_pattern"
	// TypeMetadataAbove fires when a numeric metadata field exceeds a
	// threshold.
	TypeMetadataAbove ConditionType = "metadata_above"
)

// Condition decides whether a single signal should trigger a rule.
// Conditions are a closed set of serializable variants rather than opaque
// closures, so rule definitions can travel over the API and rule files.
type Condition interface {
	Matches(s signal.Signal) bool
}

// ConditionSpec is the wire/file representation of a condition. Exactly the
// fields relevant to its Type are read; the rest are ignored.
type ConditionSpec struct {
	Type      ConditionType `json:"type" yaml:"type"`
	Kind      string        `json:"kind,omitempty" yaml:"kind,omitempty"`
	Field     string        `json:"field,omitempty" yaml:"field,omitempty"`
	Threshold float64       `json:"threshold,omitempty" yaml:"threshold,omitempty"`
}

// Build converts the wire form into an evaluatable condition.
func (cs ConditionSpec) Build() (Condition, error) {
	switch cs.Type {
	case TypeConfidenceAbove:
		if cs.Kind == "" {
			return nil, fmt.Errorf("condition %s: kind is required", cs.Type)
		}
		if cs.Threshold < 0 || cs.Threshold > 1 {
			return nil, fmt.Errorf("condition %s: threshold %g is outside [0, 1]", cs.Type, cs.Threshold)
		}
		return ConfidenceAbove{Kind: cs.Kind, Threshold: cs.Threshold}, nil
	case TypeKindEquals:
		if cs.Kind == "" {
			return nil, fmt.Errorf("condition %s: kind is required", cs.Type)
		}
		return KindEquals{Kind: cs.Kind}, nil
	case TypeCompositePattern:
		return CompositePattern{}, nil
	case TypeMetadataAbove:
		if cs.Field == "" {
			return nil, fmt.Errorf("condition %s: field is required", cs.Type)
		}
		return MetadataAbove{Field: cs.Field, Threshold: cs.Threshold}, nil
	default:
		return nil, fmt.Errorf("unknown condition type %q", cs.Type)
	}
}

// ConfidenceAbove matches signals of Kind whose confidence is strictly
// greater than Threshold. Unscored signals never match.
type ConfidenceAbove struct {
	Kind      string
	Threshold float64
}

// Matches implements Condition.
func (c ConfidenceAbove) Matches(s signal.Signal) bool {
	return s.Kind == c.Kind && s.Confidence != nil && *s.Confidence > c.Threshold
}

// KindEquals matches every signal of Kind.
type KindEquals struct {
	Kind string
}

// Matches implements Condition.
func (c KindEquals) Matches(s signal.Signal) bool {
	return s.Kind == c.Kind
}

// CompositePattern matches signals carrying a correlation pattern tag.
type CompositePattern struct{}

// Matches implements Condition.
func (CompositePattern) Matches(s signal.Signal) bool {
	return s.Pattern() != ""
}

// MetadataAbove matches signals whose numeric metadata Field exceeds
// Threshold. Signals without the field, or with a non-numeric value, never
// match.
type MetadataAbove struct {
	Field     string
	Threshold float64
}

// Matches implements Condition.
func (c MetadataAbove) Matches(s signal.Signal) bool {
	v, ok := s.MetadataNumber(c.Field)
	return ok && v > c.Threshold
}

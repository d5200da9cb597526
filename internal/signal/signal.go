// Package signal defines the domain types shared by the correlation,
// alerting, and analytics components.
package signal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Metadata keys the engine itself reads. Everything else in the metadata
// bag is opaque payload owned by the producer.
const (
	// MetaPattern tags a signal with the correlation pattern that produced
	// it. Analytics groups "top patterns" by this key when present.
	MetaPattern = "pattern"

	// MetaAgent identifies the detecting agent; analytics counts by it.
	MetaAgent = "agent"

	// MetaContributors lists the fingerprints of the signals a composite
	// was derived from.
	MetaContributors = "contributing_fingerprints"

	// MetaContributorKinds lists the kinds of the contributing signals.
	MetaContributorKinds = "contributing_kinds"
)

// Signal is an atomic timestamped event record. Signals are immutable once
// accepted by the engine.
type Signal struct {
	Fingerprint string         `json:"fingerprint"`
	Kind        string         `json:"kind"`
	Source      string         `json:"source"`
	ProducedAt  time.Time      `json:"produced_at"`
	Confidence  *float64       `json:"confidence,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// New constructs a scored signal with a fresh fingerprint.
func New(kind, source string, confidence float64) Signal {
	c := confidence
	return Signal{
		Fingerprint: uuid.New().String(),
		Kind:        kind,
		Source:      source,
		ProducedAt:  time.Now(),
		Confidence:  &c,
	}
}

// NewUnscored constructs a signal without a confidence score.
func NewUnscored(kind, source string) Signal {
	return Signal{
		Fingerprint: uuid.New().String(),
		Kind:        kind,
		Source:      source,
		ProducedAt:  time.Now(),
	}
}

// Validate checks the signal's shape. Domain semantics of kind/metadata are
// deliberately not checked here.
func (s Signal) Validate() error {
	if s.Kind == "" {
		return &ValidationError{Field: "kind", Reason: "must not be empty"}
	}
	if s.Source == "" {
		return &ValidationError{Field: "source", Reason: "must not be empty"}
	}
	if s.Confidence != nil && (*s.Confidence < 0 || *s.Confidence > 1) {
		return &ValidationError{
			Field:  "confidence",
			Reason: fmt.Sprintf("%g is outside [0, 1]", *s.Confidence),
		}
	}
	return nil
}

// ConfidenceOrZero returns the confidence score, treating an unscored
// signal as zero. Correlation averaging relies on this convention.
func (s Signal) ConfidenceOrZero() float64 {
	if s.Confidence == nil {
		return 0
	}
	return *s.Confidence
}

// Pattern returns the pattern tag from metadata, or the empty string.
func (s Signal) Pattern() string {
	if p, ok := s.Metadata[MetaPattern].(string); ok {
		return p
	}
	return ""
}

// MetadataNumber reads a numeric metadata field. JSON decoding yields
// float64 for all numbers, but producers constructing signals in-process
// may store ints, so both are accepted.
func (s Signal) MetadataNumber(key string) (float64, bool) {
	switch v := s.Metadata[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// ValidationError reports a malformed signal or rule. These are caller
// errors surfaced synchronously; nothing is buffered before validation
// passes.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

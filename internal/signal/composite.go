package signal

import (
	"time"

	"github.com/google/uuid"
)

// Priority ranks triggered alerts.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid reports whether p is one of the defined priority levels.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Composite is a derived signal emitted when a correlation rule's required
// kinds co-occur inside its window.
type Composite struct {
	ID                  string         `json:"id"`
	Pattern             string         `json:"pattern"`
	Confidence          float64        `json:"confidence"`
	ContributingSources []string       `json:"contributing_sources"`
	ProducedAt          time.Time      `json:"produced_at"`
	Metadata            map[string]any `json:"metadata"`
}

// AsSignal converts the composite into an ingestable signal so callers can
// feed derived detections back through the engine. The pattern tag is
// preserved in metadata for analytics grouping and composite-pattern alerts.
func (c Composite) AsSignal(source string) Signal {
	conf := c.Confidence
	md := make(map[string]any, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		md[k] = v
	}
	md[MetaPattern] = c.Pattern
	return Signal{
		Fingerprint: uuid.New().String(),
		Kind:        c.Pattern,
		Source:      source,
		ProducedAt:  c.ProducedAt,
		Confidence:  &conf,
		Metadata:    md,
	}
}

// TriggeredAlert records one alert rule firing on one signal.
type TriggeredAlert struct {
	ID       string    `json:"id"`
	RuleID   string    `json:"rule_id"`
	Priority Priority  `json:"priority"`
	Signal   Signal    `json:"signal"`
	FiredAt  time.Time `json:"fired_at"`
}

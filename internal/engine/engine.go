// Package engine composes the signal history, correlation, alerting, and
// analytics components behind a single synchronized facade.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hawkline-systems/hawkline/internal/alerting"
	"github.com/hawkline-systems/hawkline/internal/analytics"
	"github.com/hawkline-systems/hawkline/internal/correlation"
	"github.com/hawkline-systems/hawkline/internal/history"
	"github.com/hawkline-systems/hawkline/internal/metrics"
	"github.com/hawkline-systems/hawkline/internal/signal"
)

// Options configures a new engine instance.
type Options struct {
	// CorrelationCapacity bounds the correlation history (default 1000).
	CorrelationCapacity int
	// AnalyticsCapacity bounds the analytics history (default 10000).
	AnalyticsCapacity int
	// SkipDefaultRules leaves the engine with empty rule sets instead of
	// installing the built-in correlation and alert rules.
	SkipDefaultRules bool
	// CooldownStore overrides the in-memory alert cooldown store.
	CooldownStore alerting.CooldownStore
}

// IngestResult is what one accepted signal produced: zero or more
// composites (one per matching correlation rule) and zero or more
// triggered alerts.
type IngestResult struct {
	Signal     signal.Signal           `json:"signal"`
	Composites []signal.Composite      `json:"composites,omitempty"`
	Alerts     []signal.TriggeredAlert `json:"alerts,omitempty"`
}

// Engine is one logical instance's in-memory view of recent signals. All
// mutation runs under a single write lock so each rule evaluation sees a
// consistent buffer; read-only queries share a read lock.
type Engine struct {
	mu sync.RWMutex

	correlationHist *history.History
	analyticsHist   *history.History
	correlations    *correlation.Engine
	alerts          *alerting.Engine
	aggregator      *analytics.Aggregator

	now func() time.Time
}

// New creates an engine. Unless opts.SkipDefaultRules is set, the built-in
// correlation and alert rules are installed; they remain removable and
// overridable afterwards.
func New(opts Options) *Engine {
	if opts.CorrelationCapacity <= 0 {
		opts.CorrelationCapacity = history.DefaultCorrelationCapacity
	}
	if opts.AnalyticsCapacity <= 0 {
		opts.AnalyticsCapacity = history.DefaultAnalyticsCapacity
	}

	correlationHist := history.New(opts.CorrelationCapacity)
	analyticsHist := history.New(opts.AnalyticsCapacity)

	e := &Engine{
		correlationHist: correlationHist,
		analyticsHist:   analyticsHist,
		correlations:    correlation.NewEngine(correlationHist),
		alerts:          alerting.NewEngine(opts.CooldownStore),
		aggregator:      analytics.NewAggregator(analyticsHist),
		now:             time.Now,
	}

	if !opts.SkipDefaultRules {
		for _, r := range correlation.DefaultRules() {
			_ = e.correlations.AddRule(r)
		}
		for _, r := range alerting.DefaultRules() {
			_ = e.alerts.AddRule(r)
		}
	}
	return e
}

// Ingest validates and stores a signal, then evaluates correlation and
// alert rules against the updated history. A rejected signal leaves every
// buffer and rule untouched. A missing fingerprint or timestamp is filled
// in before storage.
func (e *Engine) Ingest(ctx context.Context, s signal.Signal) (IngestResult, error) {
	start := time.Now()

	if err := s.Validate(); err != nil {
		metrics.SignalsTotal.WithLabelValues("rejected").Inc()
		return IngestResult{}, err
	}
	if s.Fingerprint == "" {
		s.Fingerprint = uuid.New().String()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if s.ProducedAt.IsZero() {
		s.ProducedAt = now
	}

	composites := e.correlations.Process(s, now)
	e.analyticsHist.Append(s)
	alerts := e.alerts.Evaluate(ctx, s, now)

	metrics.SignalsTotal.WithLabelValues("accepted").Inc()
	metrics.SignalsByKind.WithLabelValues(s.Kind).Inc()
	for _, c := range composites {
		metrics.CompositesEmitted.WithLabelValues(c.Pattern).Inc()
	}
	for _, a := range alerts {
		metrics.AlertsTriggered.WithLabelValues(a.RuleID, string(a.Priority)).Inc()
	}
	metrics.HistorySize.WithLabelValues("correlation").Set(float64(e.correlationHist.Len()))
	metrics.HistorySize.WithLabelValues("analytics").Set(float64(e.analyticsHist.Len()))
	metrics.IngestDuration.Observe(time.Since(start).Seconds())

	return IngestResult{Signal: s, Composites: composites, Alerts: alerts}, nil
}

// AddCorrelationRule registers or replaces a correlation rule.
func (e *Engine) AddCorrelationRule(r correlation.Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.correlations.AddRule(r)
}

// RemoveCorrelationRule deletes a correlation rule by id.
func (e *Engine) RemoveCorrelationRule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.correlations.RemoveRule(id)
}

// CorrelationRules lists registered correlation rules in evaluation order.
func (e *Engine) CorrelationRules() []correlation.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.correlations.Rules()
}

// AddAlertRule registers or replaces an alert rule.
func (e *Engine) AddAlertRule(r alerting.Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.AddRule(r)
}

// RemoveAlertRule deletes an alert rule by id.
func (e *Engine) RemoveAlertRule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.RemoveRule(id)
}

// EnableAlertRule re-enables a disabled alert rule.
func (e *Engine) EnableAlertRule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.SetEnabled(id, true)
}

// DisableAlertRule disables an alert rule without removing it.
func (e *Engine) DisableAlertRule(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alerts.SetEnabled(id, false)
}

// AlertRules lists registered alert rules in evaluation order.
func (e *Engine) AlertRules() []alerting.Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alerts.Rules()
}

// RecentSignals returns the most recent limit signals in arrival order.
func (e *Engine) RecentSignals(limit int) []signal.Signal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.analyticsHist.Recent(limit)
}

// Snapshot computes analytics over the trailing window (DefaultWindow when
// zero).
func (e *Engine) Snapshot(window time.Duration) analytics.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.aggregator.Snapshot(e.now(), window)
}

// Trend buckets the retained history into hourly buckets ending now.
func (e *Engine) Trend(hours int) []analytics.TrendBucket {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.aggregator.Trend(e.now(), hours)
}

// Export serializes a snapshot over the trailing window.
func (e *Engine) Export(window time.Duration, format analytics.ExportFormat) (string, error) {
	return analytics.Export(e.Snapshot(window), format)
}

package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkline-systems/hawkline/internal/alerting"
	"github.com/hawkline-systems/hawkline/internal/correlation"
	"github.com/hawkline-systems/hawkline/internal/signal"
)

func TestIngestThenRecentReturnsSignal(t *testing.T) {
	e := New(Options{SkipDefaultRules: true})

	s := signal.New("detection", "watcher-1", 0.9)
	result, err := e.Ingest(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, s.Fingerprint, result.Signal.Fingerprint)

	recent := e.RecentSignals(1)
	require.Len(t, recent, 1)
	assert.Equal(t, s.Fingerprint, recent[0].Fingerprint)
}

func TestIngestAssignsFingerprint(t *testing.T) {
	e := New(Options{SkipDefaultRules: true})

	result, err := e.Ingest(context.Background(), signal.Signal{
		Kind:       "detection",
		Source:     "watcher-1",
		ProducedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Signal.Fingerprint)
}

func TestIngestRejectsInvalidAndLeavesStateUntouched(t *testing.T) {
	e := New(Options{SkipDefaultRules: true})
	ctx := context.Background()

	_, err := e.Ingest(ctx, signal.New("detection", "w", 0.8))
	require.NoError(t, err)
	before := len(e.RecentSignals(0))

	_, err = e.Ingest(ctx, signal.New("detection", "w", 1.5))
	require.Error(t, err)
	var verr *signal.ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.Equal(t, before, len(e.RecentSignals(0)), "rejected signal must not enter any buffer")
}

func TestHistoryCapacityEnforced(t *testing.T) {
	e := New(Options{SkipDefaultRules: true, AnalyticsCapacity: 5, CorrelationCapacity: 5})
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := e.Ingest(ctx, signal.New(fmt.Sprintf("kind-%d", i), "w", 0.5))
		require.NoError(t, err)
	}
	recent := e.RecentSignals(0)
	require.Len(t, recent, 5)
	assert.Equal(t, "kind-15", recent[0].Kind)
	assert.Equal(t, "kind-19", recent[4].Kind)
}

func TestIngestEmitsCompositeAndAlert(t *testing.T) {
	e := New(Options{})
	ctx := context.Background()

	_, err := e.Ingest(ctx, signal.New("cex_funding", "A", 0.85))
	require.NoError(t, err)

	result, err := e.Ingest(ctx, signal.New("rapid_deploy", "B", 0.78))
	require.NoError(t, err)
	require.Len(t, result.Composites, 1)
	c := result.Composites[0]
	assert.Equal(t, "coordinated_funding_deployment", c.Pattern)
	assert.ElementsMatch(t, []string{"A", "B"}, c.ContributingSources)

	// Re-ingesting the composite trips the composite-pattern alert.
	followup, err := e.Ingest(ctx, c.AsSignal("correlator"))
	require.NoError(t, err)
	require.Len(t, followup.Alerts, 1)
	assert.Equal(t, "composite-pattern", followup.Alerts[0].RuleID)
}

func TestDefaultRulesInstalledAndRemovable(t *testing.T) {
	e := New(Options{})
	assert.Len(t, e.CorrelationRules(), 2)
	assert.Len(t, e.AlertRules(), 4)

	require.NoError(t, e.RemoveCorrelationRule("funding-deployment"))
	require.NoError(t, e.RemoveAlertRule("composite-pattern"))
	assert.Len(t, e.CorrelationRules(), 1)
	assert.Len(t, e.AlertRules(), 3)
}

func TestAlertRuleLifecycle(t *testing.T) {
	e := New(Options{SkipDefaultRules: true})
	ctx := context.Background()

	require.NoError(t, e.AddAlertRule(alerting.Rule{
		ID:        "burst",
		Priority:  signal.PriorityHigh,
		Cooldown:  time.Minute,
		Enabled:   true,
		Condition: alerting.MetadataAbove{Field: "deploys_per_hour", Threshold: 10},
	}))

	s := signal.NewUnscored("rapid_deploy", "w")
	s.Metadata = map[string]any{"deploys_per_hour": 20.0}

	require.NoError(t, e.DisableAlertRule("burst"))
	res, err := e.Ingest(ctx, s)
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)

	require.NoError(t, e.EnableAlertRule("burst"))
	s2 := signal.NewUnscored("rapid_deploy", "w")
	s2.Metadata = map[string]any{"deploys_per_hour": 20.0}
	res, err = e.Ingest(ctx, s2)
	require.NoError(t, err)
	assert.Len(t, res.Alerts, 1)
}

func TestSnapshotAndExport(t *testing.T) {
	e := New(Options{SkipDefaultRules: true})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.Ingest(ctx, signal.New("detection", "w", 0.9))
		require.NoError(t, err)
	}

	snap := e.Snapshot(0)
	assert.Equal(t, 3, snap.TotalSignals)
	assert.Equal(t, 24*time.Hour, snap.Window)

	out, err := e.Export(time.Hour, "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_signals": 3`)

	_, err = e.Export(time.Hour, "xml")
	require.Error(t, err)
}

func TestTrendThroughFacade(t *testing.T) {
	e := New(Options{SkipDefaultRules: true})
	ctx := context.Background()
	_, err := e.Ingest(ctx, signal.New("detection", "w", 0.8))
	require.NoError(t, err)

	buckets := e.Trend(6)
	require.Len(t, buckets, 6)
	assert.Equal(t, 1, buckets[5].Count)
}

func TestCorrelationRuleValidationAtFacade(t *testing.T) {
	e := New(Options{SkipDefaultRules: true})
	err := e.AddCorrelationRule(correlation.Rule{ID: "bad", Window: -time.Second})
	require.Error(t, err)
	assert.Empty(t, e.CorrelationRules())
}

package analytics

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawkline-systems/hawkline/internal/history"
)

func buildSnapshot(t *testing.T) Snapshot {
	t.Helper()
	h := history.New(100)
	now := time.Now()
	h.Append(sig("cex_funding", "alpha", 0.857, now.Add(-time.Minute)))
	h.Append(sig("rapid_deploy", "beta", 0.5, now.Add(-30*time.Second)))
	return NewAggregator(h).Snapshot(now, time.Hour)
}

func TestExportJSONRoundTrips(t *testing.T) {
	snap := buildSnapshot(t)
	out, err := Export(snap, FormatJSON)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, snap.TotalSignals, decoded.TotalSignals)
	assert.Equal(t, snap.CountsByKind, decoded.CountsByKind)
	assert.InDelta(t, snap.AverageConfidence, decoded.AverageConfidence, 1e-12)
	assert.Equal(t, snap.ConfidenceBuckets, decoded.ConfidenceBuckets)
}

func TestExportCSV(t *testing.T) {
	snap := buildSnapshot(t)
	out, err := Export(snap, FormatCSV)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"section", "label", "value"}, records[0])

	byKey := map[string]string{}
	for _, rec := range records[1:] {
		require.Len(t, rec, 3)
		byKey[rec[0]+"/"+rec[1]] = rec[2]
	}
	assert.Equal(t, "2", byKey["summary/total_signals"])
	assert.Equal(t, "1", byKey["counts_by_kind/cex_funding"])
	assert.Equal(t, "1", byKey["counts_by_kind/rapid_deploy"])
	// Confidence values carry fixed three-decimal precision.
	assert.Equal(t, "0.857", byKey["source_confidence/alpha"])
	assert.Equal(t, "0.500", byKey["source_confidence/beta"])
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export(buildSnapshot(t), ExportFormat("xml"))
	require.Error(t, err)
}

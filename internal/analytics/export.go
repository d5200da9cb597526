package analytics

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// ExportFormat selects a snapshot serialization.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

// Export serializes a snapshot. Confidence values are rendered with three
// decimal places in CSV; JSON keeps full float precision.
func Export(snap Snapshot, format ExportFormat) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		return string(data), nil
	case FormatCSV:
		return exportCSV(snap)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

// exportCSV renders the snapshot as section,label,value rows. Map-derived
// sections are emitted in sorted label order so output is deterministic.
func exportCSV(snap Snapshot) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	rows := [][]string{
		{"section", "label", "value"},
		{"summary", "generated_at", snap.GeneratedAt.Format(time.RFC3339Nano)},
		{"summary", "window_seconds", strconv.FormatFloat(snap.Window.Seconds(), 'f', 0, 64)},
		{"summary", "total_signals", strconv.Itoa(snap.TotalSignals)},
		{"summary", "average_confidence", formatConfidence(snap.AverageConfidence)},
		{"summary", "signals_per_hour", strconv.FormatFloat(snap.SignalsPerHour, 'f', 3, 64)},
		{"summary", "signals_per_second", strconv.FormatFloat(snap.SignalsPerSecond, 'f', 6, 64)},
		{"summary", "earliest_at", snap.EarliestAt.Format(time.RFC3339Nano)},
		{"summary", "latest_at", snap.LatestAt.Format(time.RFC3339Nano)},
		{"confidence_buckets", "low", strconv.Itoa(snap.ConfidenceBuckets.Low)},
		{"confidence_buckets", "medium", strconv.Itoa(snap.ConfidenceBuckets.Medium)},
		{"confidence_buckets", "high", strconv.Itoa(snap.ConfidenceBuckets.High)},
	}

	rows = append(rows, countRows("counts_by_kind", snap.CountsByKind)...)
	rows = append(rows, countRows("counts_by_source", snap.CountsBySource)...)
	rows = append(rows, countRows("counts_by_agent", snap.CountsByAgent)...)

	for _, source := range sortedKeys(snap.SourceConfidence) {
		rows = append(rows, []string{"source_confidence", source, formatConfidence(snap.SourceConfidence[source])})
	}
	for _, p := range snap.TopPatterns {
		rows = append(rows, []string{"top_patterns", p.Pattern,
			strconv.Itoa(p.Count) + ":" + formatConfidence(p.MeanConfidence)})
	}

	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.String(), nil
}

func countRows(section string, counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{section, k, strconv.Itoa(counts[k])})
	}
	return rows
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// formatConfidence renders a confidence with fixed three-decimal precision.
// This is documented lossy behavior for CSV export.
func formatConfidence(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Package analytics computes point-in-time statistics over the retained
// signal history: counts, confidence distribution, rates, trends, and top
// co-occurring patterns.
package analytics

import (
	"sort"
	"time"

	"github.com/hawkline-systems/hawkline/internal/history"
	"github.com/hawkline-systems/hawkline/internal/signal"
)

// DefaultWindow is the snapshot window used when the caller does not
// specify one.
const DefaultWindow = 24 * time.Hour

// Snapshot is a pure derived view of the history at one instant. It is
// recomputed on every query and never stored.
type Snapshot struct {
	GeneratedAt       time.Time     `json:"generated_at"`
	Window            time.Duration `json:"window"`
	TotalSignals      int           `json:"total_signals"`
	AverageConfidence float64       `json:"average_confidence"`

	CountsByKind   map[string]int `json:"counts_by_kind"`
	CountsBySource map[string]int `json:"counts_by_source"`
	CountsByAgent  map[string]int `json:"counts_by_agent"`

	ConfidenceBuckets ConfidenceBuckets  `json:"confidence_buckets"`
	SourceConfidence  map[string]float64 `json:"source_confidence"`

	SignalsPerHour   float64 `json:"signals_per_hour"`
	SignalsPerSecond float64 `json:"signals_per_second"`

	TopPatterns []PatternStat `json:"top_patterns"`

	EarliestAt time.Time `json:"earliest_at"`
	LatestAt   time.Time `json:"latest_at"`
}

// ConfidenceBuckets is the three-way confidence distribution:
// low < 0.7 <= medium < 0.8 <= high. Unscored signals count as low.
type ConfidenceBuckets struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// PatternStat is one entry of the top-patterns ranking.
type PatternStat struct {
	Pattern        string  `json:"pattern"`
	Count          int     `json:"count"`
	MeanConfidence float64 `json:"mean_confidence"`
}

// TrendBucket is one hour of the hourly trend.
type TrendBucket struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Count          int       `json:"count"`
	MeanConfidence float64   `json:"mean_confidence"`
}

// topPatternLimit caps the top-patterns ranking.
const topPatternLimit = 10

// Aggregator computes snapshots over a history. It holds no derived state
// of its own; everything is recomputed from the buffer per call, which is
// fine at the configured buffer sizes.
type Aggregator struct {
	history *history.History
}

// NewAggregator creates an aggregator reading the given history.
func NewAggregator(h *history.History) *Aggregator {
	return &Aggregator{history: h}
}

// Snapshot computes statistics over signals produced in [now-window, now].
// A non-positive window falls back to DefaultWindow. An empty window
// yields zero counts and zero averages, never a division error.
func (a *Aggregator) Snapshot(now time.Time, window time.Duration) Snapshot {
	if window <= 0 {
		window = DefaultWindow
	}
	signals := a.history.WindowSince(now, window)

	snap := Snapshot{
		GeneratedAt:      now,
		Window:           window,
		TotalSignals:     len(signals),
		CountsByKind:     make(map[string]int),
		CountsBySource:   make(map[string]int),
		CountsByAgent:    make(map[string]int),
		SourceConfidence: make(map[string]float64),
		EarliestAt:       now,
		LatestAt:         now,
	}
	if len(signals) == 0 {
		return snap
	}

	snap.EarliestAt = signals[0].ProducedAt
	snap.LatestAt = signals[0].ProducedAt

	// Per-source incremental means: mean += (x - mean) / n.
	sourceN := make(map[string]int)
	var total float64
	for _, s := range signals {
		conf := s.ConfidenceOrZero()
		total += conf

		snap.CountsByKind[s.Kind]++
		snap.CountsBySource[s.Source]++
		if agent, ok := s.Metadata[signal.MetaAgent].(string); ok && agent != "" {
			snap.CountsByAgent[agent]++
		}

		switch {
		case conf >= 0.8:
			snap.ConfidenceBuckets.High++
		case conf >= 0.7:
			snap.ConfidenceBuckets.Medium++
		default:
			snap.ConfidenceBuckets.Low++
		}

		sourceN[s.Source]++
		snap.SourceConfidence[s.Source] += (conf - snap.SourceConfidence[s.Source]) / float64(sourceN[s.Source])

		if s.ProducedAt.Before(snap.EarliestAt) {
			snap.EarliestAt = s.ProducedAt
		}
		if s.ProducedAt.After(snap.LatestAt) {
			snap.LatestAt = s.ProducedAt
		}
	}

	snap.AverageConfidence = total / float64(len(signals))
	snap.SignalsPerHour = float64(len(signals)) / window.Hours()
	snap.SignalsPerSecond = float64(len(signals)) / window.Seconds()
	snap.TopPatterns = topPatterns(signals)

	return snap
}

// Trend buckets the entire retained history into hours contiguous one-hour
// buckets ending at now. Empty buckets report count 0 and confidence 0.
func (a *Aggregator) Trend(now time.Time, hours int) []TrendBucket {
	if hours <= 0 {
		hours = 24
	}
	buckets := make([]TrendBucket, hours)
	start := now.Add(-time.Duration(hours) * time.Hour)
	for i := range buckets {
		buckets[i].Start = start.Add(time.Duration(i) * time.Hour)
		buckets[i].End = buckets[i].Start.Add(time.Hour)
	}

	counts := make([]int, hours)
	sums := make([]float64, hours)
	for _, s := range a.history.All() {
		if s.ProducedAt.Before(start) || s.ProducedAt.After(now) {
			continue
		}
		idx := int(s.ProducedAt.Sub(start) / time.Hour)
		if idx >= hours {
			idx = hours - 1
		}
		counts[idx]++
		sums[idx] += s.ConfidenceOrZero()
	}
	for i := range buckets {
		buckets[i].Count = counts[i]
		if counts[i] > 0 {
			buckets[i].MeanConfidence = sums[i] / float64(counts[i])
		}
	}
	return buckets
}

// topPatterns ranks signals by pattern tag (falling back to kind) by count
// descending. Ties keep the order of each pattern's first occurrence.
func topPatterns(signals []signal.Signal) []PatternStat {
	counts := make(map[string]int)
	sums := make(map[string]float64)
	firstSeen := make(map[string]int)
	for i, s := range signals {
		key := s.Pattern()
		if key == "" {
			key = s.Kind
		}
		if _, ok := counts[key]; !ok {
			firstSeen[key] = i
		}
		counts[key]++
		sums[key] += s.ConfidenceOrZero()
	}

	stats := make([]PatternStat, 0, len(counts))
	for key, n := range counts {
		stats = append(stats, PatternStat{
			Pattern:        key,
			Count:          n,
			MeanConfidence: sums[key] / float64(n),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return firstSeen[stats[i].Pattern] < firstSeen[stats[j].Pattern]
	})
	if len(stats) > topPatternLimit {
		stats = stats[:topPatternLimit]
	}
	return stats
}

// Package analytics builds dashboard numbers, monthly trend series and map data.
package analytics

import (
	"sort"

	"strays/internal/domain"
)

// UnknownLabel buckets records without a usable date.
const UnknownLabel = "Unknown"

// SeriesPoint is one month of a trend series. Delta is the change from the
// previous point; the first point has a delta of zero.
type SeriesPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Delta int    `json:"delta"`
}

// BuildSeries merges duplicate labels and sorts them ascending. YYYY-MM labels
// sort chronologically and "Unknown" sorts after every month.
func BuildSeries(counts []domain.MonthlyCount) []SeriesPoint {
	merged := make(map[string]int, len(counts))
	for _, c := range counts {
		merged[c.Label] += c.Count
	}
	labels := make([]string, 0, len(merged))
	for label := range merged {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]SeriesPoint, 0, len(labels))
	for i, label := range labels {
		p := SeriesPoint{Label: label, Count: merged[label]}
		if i > 0 {
			p.Delta = p.Count - out[i-1].Count
		}
		out = append(out, p)
	}
	return out
}

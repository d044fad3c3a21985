// Package entity defines the domain models for the historical price feature.
package entity

import "sort"

// ChartPoint is a single price observation in a series.
type ChartPoint struct {
	TimestampMs int64   `json:"timestamp"` // epoch milliseconds
	Value       float64 `json:"value"`
}

// Series is an ordered list of chart points.
type Series []ChartPoint

// Normalize sorts the series by timestamp and drops duplicate timestamps,
// keeping the first occurrence. The receiver is not modified.
func (s Series) Normalize() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimestampMs < out[j].TimestampMs })

	n := 0
	for i, p := range out {
		if i > 0 && p.TimestampMs == out[n-1].TimestampMs {
			continue
		}
		out[n] = p
		n++
	}
	return out[:n]
}

// Nearest returns the point whose timestamp is closest to targetMs.
// Ties resolve to the earlier point in the series. ok is false when the series is empty.
func (s Series) Nearest(targetMs int64) (ChartPoint, bool) {
	if len(s) == 0 {
		return ChartPoint{}, false
	}
	best := s[0]
	bestDiff := absDiff(s[0].TimestampMs, targetMs)
	for _, p := range s[1:] {
		if d := absDiff(p.TimestampMs, targetMs); d < bestDiff {
			best, bestDiff = p, d
		}
	}
	return best, true
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

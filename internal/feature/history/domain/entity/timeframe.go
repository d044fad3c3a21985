package entity

import (
	"fmt"
	"strings"
	"time"
)

// Timeframe is the chart window selected by the user.
type Timeframe string

const (
	Timeframe1D  Timeframe = "1D"
	Timeframe1W  Timeframe = "1W"
	Timeframe1M  Timeframe = "1M"
	Timeframe3M  Timeframe = "3M"
	Timeframe6M  Timeframe = "6M"
	TimeframeYTD Timeframe = "YTD"
	Timeframe1Y  Timeframe = "1Y"
	Timeframe2Y  Timeframe = "2Y"
	Timeframe5Y  Timeframe = "5Y"
	Timeframe10Y Timeframe = "10Y"
	TimeframeAll Timeframe = "ALL"
)

// TimeframeSpec maps a timeframe to the parameters each upstream provider expects.
type TimeframeSpec struct {
	Days       int    // window length; 0 for YTD which is computed from Jan 1
	Resolution string // Finnhub candle resolution
	Range      string // Yahoo chart range
	Interval   string // Yahoo chart interval
}

var timeframes = map[Timeframe]TimeframeSpec{
	Timeframe1D:  {Days: 1, Resolution: "5", Range: "1d", Interval: "5m"},
	Timeframe1W:  {Days: 7, Resolution: "15", Range: "5d", Interval: "15m"},
	Timeframe1M:  {Days: 30, Resolution: "60", Range: "1mo", Interval: "1h"},
	Timeframe3M:  {Days: 90, Resolution: "D", Range: "3mo", Interval: "1d"},
	Timeframe6M:  {Days: 180, Resolution: "D", Range: "6mo", Interval: "1d"},
	TimeframeYTD: {Days: 0, Resolution: "D", Range: "ytd", Interval: "1d"},
	Timeframe1Y:  {Days: 365, Resolution: "D", Range: "1y", Interval: "1d"},
	Timeframe2Y:  {Days: 730, Resolution: "W", Range: "2y", Interval: "1wk"},
	Timeframe5Y:  {Days: 1825, Resolution: "W", Range: "5y", Interval: "1wk"},
	Timeframe10Y: {Days: 3650, Resolution: "M", Range: "10y", Interval: "1mo"},
	TimeframeAll: {Days: 7300, Resolution: "M", Range: "max", Interval: "1mo"},
}

// ParseTimeframe は文字列をTimeframeに変換します。大文字小文字は区別しません。
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := timeframes[tf]; !ok {
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
	return tf, nil
}

// Spec returns the provider parameters for the timeframe.
// Unknown timeframes fall back to 1M.
func (tf Timeframe) Spec() TimeframeSpec {
	if s, ok := timeframes[tf]; ok {
		return s
	}
	return timeframes[Timeframe1M]
}

// Window returns the [from, to] range for the timeframe ending at now.
// YTD starts at Jan 1 of the current year in now's location.
func (tf Timeframe) Window(now time.Time) (time.Time, time.Time) {
	if tf == TimeframeYTD {
		return startOfYear(now), now
	}
	return now.Add(-time.Duration(tf.Spec().Days) * 24 * time.Hour), now
}

// WindowDays returns the length of the window in whole days.
// YTD counts whole days since Jan 1 and is never less than 1.
func (tf Timeframe) WindowDays(now time.Time) int {
	if tf != TimeframeYTD {
		return tf.Spec().Days
	}
	days := int(now.Sub(startOfYear(now)) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return days
}

// ForAge picks the narrowest timeframe whose window still covers ageDays.
func ForAge(ageDays int) Timeframe {
	switch {
	case ageDays <= 5:
		return Timeframe1W
	case ageDays <= 30:
		return Timeframe1M
	case ageDays <= 90:
		return Timeframe3M
	case ageDays <= 180:
		return Timeframe6M
	case ageDays <= 365:
		return Timeframe1Y
	case ageDays <= 730:
		return Timeframe2Y
	case ageDays <= 1825:
		return Timeframe5Y
	case ageDays <= 3650:
		return Timeframe10Y
	default:
		return TimeframeAll
	}
}

func startOfYear(now time.Time) time.Time {
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
}

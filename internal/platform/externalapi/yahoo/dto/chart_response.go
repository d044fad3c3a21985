// Package dto defines data transfer objects for the Yahoo Finance chart API.
package dto

// ChartResponse is the top-level container of the v8 chart endpoint.
type ChartResponse struct {
	Chart ChartData `json:"chart"`
}

type ChartData struct {
	Result []Result `json:"result"`
	Error  *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type Result struct {
	Timestamp  []int64    `json:"timestamp"`
	Indicators Indicators `json:"indicators"`
}

type Indicators struct {
	Quote []Quote `json:"quote"`
}

// Quote holds the per-bar arrays. Closes are pointers because Yahoo reports
// null for bars without trades.
type Quote struct {
	Close []*float64 `json:"close"`
}

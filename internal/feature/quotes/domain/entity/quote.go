package entity

// Quote is the latest known snapshot for a symbol.
// Change and ChangePercent are always relative to PreviousClose, which is
// fixed when the snapshot is fetched and never updated by streaming ticks.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previousClose"`
	TimestampMs   int64   `json:"timestamp"` // epoch milliseconds
}

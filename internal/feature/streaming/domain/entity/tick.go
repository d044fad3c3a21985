// Package entity defines the domain models for the streaming feature.
package entity

// Tick is a single trade print received from the upstream stream.
type Tick struct {
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	TimestampMs int64   `json:"timestamp"` // epoch milliseconds
	Volume      float64 `json:"volume,omitempty"`
}

// ConnectionState is the lifecycle state of the upstream socket.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

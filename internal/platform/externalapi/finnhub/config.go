// Package finnhub provides a client for the Finnhub market data REST API.
package finnhub

import (
	"time"

	"stockimate/internal/platform/config"
)

// Config holds configuration for the Finnhub API client.
type Config struct {
	APIKey  string        // API key sent as the token query parameter
	BaseURL string        // Base URL for the REST API (e.g., "https://finnhub.io/api/v1")
	WSURL   string        // Streaming endpoint (e.g., "wss://ws.finnhub.io")
	Timeout time.Duration // HTTP request timeout
}

// ConfigFrom builds the client configuration from the application config.
func ConfigFrom(c config.FinnhubConfig) Config {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return Config{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		WSURL:   c.WSURL,
		Timeout: timeout,
	}
}

// StreamURL returns the streaming endpoint with the API key attached.
func (c Config) StreamURL() string {
	return c.WSURL + "?token=" + c.APIKey
}

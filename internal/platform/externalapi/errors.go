// Package externalapi holds what the market data clients share: the failure
// taxonomy used by every upstream adapter.
package externalapi

import "errors"

// Upstream failure kinds. Adapters wrap these with %w; providers check them
// with errors.Is and degrade to an absence-of-data signal.
var (
	// ErrNetwork covers transport failures and non-2xx responses.
	ErrNetwork = errors.New("upstream network failure")

	// ErrNoData means the upstream returned a well-formed but empty answer.
	ErrNoData = errors.New("upstream returned no data")

	// ErrParse means the payload could not be decoded.
	ErrParse = errors.New("upstream payload malformed")
)

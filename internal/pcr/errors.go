package pcr

import "errors"

var (
	// ErrNoOptionsForDate means the resolved expiration date is not among
	// the provider's listed expirations for the symbol.
	ErrNoOptionsForDate = errors.New("no options for expiration date")

	// ErrStrikeNotFound means a requested single strike has no contract on
	// either side of the chain.
	ErrStrikeNotFound = errors.New("strike not found")

	// ErrInvalidRange covers malformed bounds (lower above upper) and
	// conflicting selection combinations.
	ErrInvalidRange = errors.New("invalid strike range")

	// ErrProviderUnavailable wraps any market data query failure.
	ErrProviderUnavailable = errors.New("market data provider unavailable")
)

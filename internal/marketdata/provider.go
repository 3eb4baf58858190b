// Package marketdata fetches option chain open interest from external
// market data backends behind a narrow provider interface.
package marketdata

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ydegt/putcall/config"
)

// ContractQuote is one listed contract: a strike price and its open
// interest. A strike with no listed contract on a side simply has no entry
// in that side's slice.
type ContractQuote struct {
	Strike       decimal.Decimal `json:"strike"`
	OpenInterest int64           `json:"open_interest"`
}

// Chain is the full options chain for one symbol and expiration date.
type Chain struct {
	Calls []ContractQuote `json:"calls"`
	Puts  []ContractQuote `json:"puts"`
}

// Provider is the query surface the PCR engine depends on.
type Provider interface {
	// ListExpirations returns the known expiration dates for a symbol as
	// ISO dates in ascending order.
	ListExpirations(ctx context.Context, symbol string) ([]string, error)

	// OptionChain returns the per-strike open interest for a symbol and
	// expiration date (ISO form).
	OptionChain(ctx context.Context, symbol, date string) (*Chain, error)
}

// NewProvider builds the provider selected by the configuration.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderYahoo:
		return NewYahooProvider(), nil
	case config.ProviderYahooWeb:
		return NewYahooWebProvider(cfg), nil
	case config.ProviderLongport:
		return NewLongportProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown market data provider %q", cfg.Provider)
	}
}

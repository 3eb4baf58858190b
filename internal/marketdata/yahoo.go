package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/options"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// YahooProvider reads option chains through the native Yahoo Finance client.
type YahooProvider struct{}

// NewYahooProvider creates a new Yahoo Finance provider.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{}
}

func (p *YahooProvider) ListExpirations(ctx context.Context, symbol string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter := options.GetStraddleP(&options.Params{UnderlyingSymbol: symbol})
	for iter.Next() {
		// Drain so the chain metadata is fully populated.
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list expirations for %s: %w", symbol, err)
	}

	meta := iter.Meta()
	if meta == nil {
		return nil, fmt.Errorf("no options metadata returned for %s", symbol)
	}

	dates := make([]string, 0, len(meta.AllExpirationDates))
	for _, ts := range meta.AllExpirationDates {
		dates = append(dates, time.Unix(int64(ts), 0).UTC().Format("2006-01-02"))
	}
	sort.Strings(dates)

	log.WithFields(log.Fields{"symbol": symbol, "expirations": len(dates)}).
		Debug("fetched expiration dates")

	return dates, nil
}

func (p *YahooProvider) OptionChain(ctx context.Context, symbol, date string) (*Chain, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expiry, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parse expiration date %q: %w", date, err)
	}

	iter := options.GetStraddleP(&options.Params{
		UnderlyingSymbol: symbol,
		Expiration:       datetime.New(&expiry),
	})

	var straddles []*finance.Straddle
	for iter.Next() {
		straddles = append(straddles, iter.Straddle())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("fetch option chain for %s on %s: %w", symbol, date, err)
	}

	chain := chainFromStraddles(straddles)

	log.WithFields(log.Fields{
		"symbol": symbol,
		"date":   date,
		"calls":  len(chain.Calls),
		"puts":   len(chain.Puts),
	}).Debug("fetched option chain")

	return chain, nil
}

// chainFromStraddles flattens Yahoo straddles into call and put quote
// listings. A missing side on a straddle produces no entry for that side.
func chainFromStraddles(straddles []*finance.Straddle) *Chain {
	chain := &Chain{}
	for _, st := range straddles {
		if st == nil {
			continue
		}
		if st.Call != nil {
			chain.Calls = append(chain.Calls, ContractQuote{
				Strike:       decimal.NewFromFloat(st.Call.Strike),
				OpenInterest: int64(st.Call.OpenInterest),
			})
		}
		if st.Put != nil {
			chain.Puts = append(chain.Puts, ContractQuote{
				Strike:       decimal.NewFromFloat(st.Put.Strike),
				OpenInterest: int64(st.Put.OpenInterest),
			})
		}
	}
	return chain
}

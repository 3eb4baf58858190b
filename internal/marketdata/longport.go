package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
	log "github.com/sirupsen/logrus"

	"github.com/ydegt/putcall/config"
)

// optionQuoteBatchSize is the Longport per-request symbol limit.
const optionQuoteBatchSize = 500

// LongportProvider reads option chains through the Longport OpenAPI quote
// context. Requires API credentials in the configuration.
type LongportProvider struct {
	quoteCtx *quote.QuoteContext
}

func NewLongportProvider(cfg *config.Config) (*LongportProvider, error) {
	if cfg.LongportAppKey == "" || cfg.LongportAppSecret == "" || cfg.LongportAccessToken == "" {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.LongportAppKey, cfg.LongportAppSecret, cfg.LongportAccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportProvider{quoteCtx: quoteContext}, nil
}

// Close releases the underlying quote context connection. It implements
// io.Closer so callers can defer it without knowing the provider type.
func (p *LongportProvider) Close() error {
	if p.quoteCtx != nil {
		return p.quoteCtx.Close()
	}
	return nil
}

func (p *LongportProvider) ListExpirations(ctx context.Context, symbol string) ([]string, error) {
	if p.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}

	dates, err := p.quoteCtx.OptionChainExpiryDateList(ctx, longportSymbol(symbol))
	if err != nil {
		return nil, fmt.Errorf("list expirations for %s: %w", symbol, err)
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format("2006-01-02"))
	}
	return formatted, nil
}

func (p *LongportProvider) OptionChain(ctx context.Context, symbol, date string) (*Chain, error) {
	if p.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}

	expiry, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parse expiration date %q: %w", date, err)
	}

	infos, err := p.quoteCtx.OptionChainInfoByDate(ctx, longportSymbol(symbol), &expiry)
	if err != nil {
		return nil, fmt.Errorf("fetch option chain for %s on %s: %w", symbol, date, err)
	}

	// Open interest is only carried on the per-contract quotes, so collect
	// every contract symbol and quote them in batches.
	contracts := make([]string, 0, len(infos)*2)
	for _, info := range infos {
		if info == nil {
			continue
		}
		if info.CallSymbol != "" {
			contracts = append(contracts, info.CallSymbol)
		}
		if info.PutSymbol != "" {
			contracts = append(contracts, info.PutSymbol)
		}
	}

	openInterest := make(map[string]int64, len(contracts))
	for start := 0; start < len(contracts); start += optionQuoteBatchSize {
		end := start + optionQuoteBatchSize
		if end > len(contracts) {
			end = len(contracts)
		}
		quotes, err := p.quoteCtx.OptionQuote(ctx, contracts[start:end])
		if err != nil {
			return nil, fmt.Errorf("quote option contracts for %s: %w", symbol, err)
		}
		mergeOpenInterest(openInterest, quotes)
	}

	return chainFromStrikeInfos(infos, openInterest), nil
}

// mergeOpenInterest records the open interest carried on each contract
// quote. Open interest lives on the option detail block, which the API
// omits for contracts it has no data for.
func mergeOpenInterest(dst map[string]int64, quotes []*quote.OptionQuote) {
	for _, q := range quotes {
		if q == nil || q.OptionExtend == nil {
			continue
		}
		dst[q.Symbol] = q.OptionExtend.OpenInterest
	}
}

// chainFromStrikeInfos maps the Longport strike list onto the provider
// chain, joining in the per-contract open interest by contract symbol.
func chainFromStrikeInfos(infos []*quote.StrikePriceInfo, openInterest map[string]int64) *Chain {
	chain := &Chain{}
	for _, info := range infos {
		if info == nil || info.Price == nil {
			log.Warn("skipping strike with no price")
			continue
		}
		strike := *info.Price
		if info.CallSymbol != "" {
			chain.Calls = append(chain.Calls, ContractQuote{
				Strike:       strike,
				OpenInterest: openInterest[info.CallSymbol],
			})
		}
		if info.PutSymbol != "" {
			chain.Puts = append(chain.Puts, ContractQuote{
				Strike:       strike,
				OpenInterest: openInterest[info.PutSymbol],
			})
		}
	}
	return chain
}

// longportSymbol appends the market suffix Longport expects for bare US
// equity tickers.
func longportSymbol(symbol string) string {
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".US"
}

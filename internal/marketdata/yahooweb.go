package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/ydegt/putcall/config"
)

const yahooOptionsURL = "https://query2.finance.yahoo.com/v7/finance/options/{symbol}"

// YahooWebProvider reads option chains straight from the Yahoo Finance web
// JSON endpoint. Responses can optionally be cached on disk for the
// configured TTL.
type YahooWebProvider struct {
	client *resty.Client
	cache  *ChainCache
}

// NewYahooWebProvider creates a provider backed by the Yahoo web endpoint.
func NewYahooWebProvider(cfg *config.Config) *YahooWebProvider {
	client := resty.New().
		SetTimeout(cfg.HTTPTimeout).
		SetHeader("User-Agent", "putcall/1.0").
		SetHeader("Accept", "application/json")

	return &YahooWebProvider{
		client: client,
		cache:  NewChainCache(cfg.DataCacheDir, cfg.CacheTTL, cfg.CacheEnabled),
	}
}

// optionChainResponse mirrors the v7/finance/options payload, reduced to
// the fields the PCR computation needs.
type optionChainResponse struct {
	OptionChain struct {
		Result []chainResult  `json:"result"`
		Error  *chainAPIError `json:"error"`
	} `json:"optionChain"`
}

type chainResult struct {
	UnderlyingSymbol string            `json:"underlyingSymbol"`
	ExpirationDates  []int64           `json:"expirationDates"`
	Options          []expirationChain `json:"options"`
}

type expirationChain struct {
	ExpirationDate int64          `json:"expirationDate"`
	Calls          []contractData `json:"calls"`
	Puts           []contractData `json:"puts"`
}

type chainAPIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type contractData struct {
	ContractSymbol string  `json:"contractSymbol"`
	Strike         float64 `json:"strike"`
	OpenInterest   int64   `json:"openInterest"`
}

func (p *YahooWebProvider) ListExpirations(ctx context.Context, symbol string) ([]string, error) {
	body, err := p.fetch(ctx, symbol, nil)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(body.ExpirationDates))
	for _, ts := range body.ExpirationDates {
		dates = append(dates, time.Unix(ts, 0).UTC().Format("2006-01-02"))
	}
	sort.Strings(dates)

	return dates, nil
}

func (p *YahooWebProvider) OptionChain(ctx context.Context, symbol, date string) (*Chain, error) {
	expiry, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("parse expiration date %q: %w", date, err)
	}

	if cached, ok := p.cache.Get("yahoo-web", symbol, date); ok {
		log.WithFields(log.Fields{"symbol": symbol, "date": date}).Debug("option chain cache hit")
		return cached, nil
	}

	unix := expiry.UTC().Unix()
	body, err := p.fetch(ctx, symbol, &unix)
	if err != nil {
		return nil, err
	}
	if len(body.Options) == 0 {
		return nil, fmt.Errorf("no option chain returned for %s on %s", symbol, date)
	}

	chain := chainFromContracts(body.Options[0].Calls, body.Options[0].Puts)

	if err := p.cache.Set("yahoo-web", symbol, date, chain); err != nil {
		log.WithError(err).Warn("failed to cache option chain")
	}

	return chain, nil
}

func (p *YahooWebProvider) fetch(ctx context.Context, symbol string, expiration *int64) (*chainResult, error) {
	req := p.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetResult(&optionChainResponse{})
	if expiration != nil {
		req.SetQueryParam("date", fmt.Sprintf("%d", *expiration))
	}

	resp, err := req.Get(yahooOptionsURL)
	if err != nil {
		return nil, fmt.Errorf("query option chain for %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("option chain request for %s failed with status %s", symbol, resp.Status())
	}

	payload, ok := resp.Result().(*optionChainResponse)
	if !ok || payload == nil {
		return nil, fmt.Errorf("unexpected option chain response for %s", symbol)
	}
	if apiErr := payload.OptionChain.Error; apiErr != nil {
		return nil, fmt.Errorf("option chain error for %s: %s (%s)", symbol, apiErr.Description, apiErr.Code)
	}
	if len(payload.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("no options listed for %s", symbol)
	}

	return &payload.OptionChain.Result[0], nil
}

// chainFromContracts maps the web DTO contracts onto the provider chain.
func chainFromContracts(calls, puts []contractData) *Chain {
	chain := &Chain{}
	for _, c := range calls {
		chain.Calls = append(chain.Calls, ContractQuote{
			Strike:       decimal.NewFromFloat(c.Strike),
			OpenInterest: c.OpenInterest,
		})
	}
	for _, p := range puts {
		chain.Puts = append(chain.Puts, ContractQuote{
			Strike:       decimal.NewFromFloat(p.Strike),
			OpenInterest: p.OpenInterest,
		})
	}
	return chain
}

// Package pcr computes put/call ratios from options open interest.
package pcr

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/ydegt/putcall/internal/marketdata"
)

// SelectionKind tags which strikes a computation covers.
type SelectionKind int

const (
	SelectAll SelectionKind = iota
	SelectSingle
	SelectRange
)

// Selection picks the strikes to compute ratios for: a single strike, an
// inclusive range, or the whole chain.
type Selection struct {
	Kind   SelectionKind
	Strike decimal.Decimal
	Lower  decimal.Decimal
	Upper  decimal.Decimal
}

// All selects every strike in the chain.
func All() Selection {
	return Selection{Kind: SelectAll}
}

// Single selects exactly one strike.
func Single(strike decimal.Decimal) Selection {
	return Selection{Kind: SelectSingle, Strike: strike}
}

// Between selects the inclusive strike range [lower, upper].
func Between(lower, upper decimal.Decimal) Selection {
	return Selection{Kind: SelectRange, Lower: lower, Upper: upper}
}

// Row is the per-strike put/call ratio. Ratio is +Inf when call open
// interest is zero but put interest exists; HasRatio is false only for the
// 0/0 case, which is undefined rather than infinite.
type Row struct {
	Strike   decimal.Decimal `json:"strike"`
	PutOI    int64           `json:"put_oi"`
	CallOI   int64           `json:"call_oi"`
	Ratio    float64         `json:"ratio"`
	HasRatio bool            `json:"has_ratio"`
}

// Aggregate sums open interest over the included strikes. Defined is false
// when total call open interest is zero, in which case the total ratio
// cannot be computed; that is an outcome, not a failure.
type Aggregate struct {
	TotalPutOI  int64   `json:"total_put_oi"`
	TotalCallOI int64   `json:"total_call_oi"`
	Ratio       float64 `json:"ratio"`
	Defined     bool    `json:"defined"`
}

// Result is a computed put/call ratio report. Single is set for
// single-strike selections; Rows and Aggregate are set for range and
// whole-chain selections, with rows ordered by ascending strike.
type Result struct {
	Symbol     string     `json:"symbol"`
	Expiration string     `json:"expiration"`
	Single     *Row       `json:"single,omitempty"`
	Rows       []Row      `json:"rows,omitempty"`
	Aggregate  *Aggregate `json:"aggregate,omitempty"`
}

// Engine computes put/call ratios against a market data provider. It holds
// no mutable state; every Compute call queries and computes fresh.
type Engine struct {
	provider marketdata.Provider
}

// NewEngine creates an engine over the given provider.
func NewEngine(provider marketdata.Provider) *Engine {
	return &Engine{provider: provider}
}

// Compute validates the selection, checks the expiration date against the
// provider's listing, fetches the chain and computes ratios. All errors
// are tagged with the sentinels in this package.
func (e *Engine) Compute(ctx context.Context, symbol, expiration string, sel Selection) (*Result, error) {
	if sel.Kind == SelectRange && sel.Lower.GreaterThan(sel.Upper) {
		return nil, fmt.Errorf("%w: lower bound %s is above upper bound %s",
			ErrInvalidRange, sel.Lower, sel.Upper)
	}

	expirations, err := e.provider.ListExpirations(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	if !slices.Contains(expirations, expiration) {
		return nil, fmt.Errorf("%w: %s on %s", ErrNoOptionsForDate, symbol, expiration)
	}

	chain, err := e.provider.OptionChain(ctx, symbol, expiration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	log.WithFields(log.Fields{
		"symbol": symbol,
		"date":   expiration,
		"calls":  len(chain.Calls),
		"puts":   len(chain.Puts),
	}).Debug("computing put/call ratios")

	if sel.Kind == SelectSingle {
		return e.computeSingle(symbol, expiration, chain, sel.Strike)
	}
	return e.computeRows(symbol, expiration, chain, sel), nil
}

// computeSingle reports the ratio at exactly one strike. A strike with no
// contract on either side is an error; a strike quoted on only one side
// treats the missing side as zero open interest.
func (e *Engine) computeSingle(symbol, expiration string, chain *marketdata.Chain, strike decimal.Decimal) (*Result, error) {
	calls := openInterestByStrike(chain.Calls)
	puts := openInterestByStrike(chain.Puts)

	key := strikeKey(strike)
	callOI, hasCall := calls[key]
	putOI, hasPut := puts[key]
	if !hasCall && !hasPut {
		return nil, fmt.Errorf("%w: %s has no contract at strike %s on %s",
			ErrStrikeNotFound, symbol, strike, expiration)
	}

	row := makeRow(strike, putOI, callOI)
	return &Result{
		Symbol:     symbol,
		Expiration: expiration,
		Single:     &row,
	}, nil
}

// computeRows walks the call-side strike listing, filters by the selection
// and emits one row per strike plus the aggregate. A side with no contract
// at a strike contributes zero open interest, never an error.
func (e *Engine) computeRows(symbol, expiration string, chain *marketdata.Chain, sel Selection) *Result {
	calls := openInterestByStrike(chain.Calls)
	puts := openInterestByStrike(chain.Puts)

	strikes := make([]decimal.Decimal, 0, len(chain.Calls))
	seen := make(map[string]bool, len(chain.Calls))
	for _, c := range chain.Calls {
		key := strikeKey(c.Strike)
		if seen[key] {
			continue
		}
		seen[key] = true
		strikes = append(strikes, c.Strike)
	}
	sort.Slice(strikes, func(i, j int) bool { return strikes[i].LessThan(strikes[j]) })

	result := &Result{Symbol: symbol, Expiration: expiration, Rows: []Row{}}
	agg := &Aggregate{}
	for _, strike := range strikes {
		if sel.Kind == SelectRange &&
			(strike.LessThan(sel.Lower) || strike.GreaterThan(sel.Upper)) {
			continue
		}

		key := strikeKey(strike)
		row := makeRow(strike, puts[key], calls[key])
		result.Rows = append(result.Rows, row)

		agg.TotalPutOI += row.PutOI
		agg.TotalCallOI += row.CallOI
	}

	if agg.TotalCallOI > 0 {
		agg.Ratio = float64(agg.TotalPutOI) / float64(agg.TotalCallOI)
		agg.Defined = true
	}
	result.Aggregate = agg

	return result
}

func makeRow(strike decimal.Decimal, putOI, callOI int64) Row {
	row := Row{Strike: strike, PutOI: putOI, CallOI: callOI}
	switch {
	case callOI > 0:
		row.Ratio = float64(putOI) / float64(callOI)
		row.HasRatio = true
	case putOI > 0:
		row.Ratio = math.Inf(1)
		row.HasRatio = true
	}
	return row
}

// openInterestByStrike flattens one side of a chain into a lookup keyed by
// normalized strike. Duplicate listings keep the first entry.
func openInterestByStrike(quotes []marketdata.ContractQuote) map[string]int64 {
	byStrike := make(map[string]int64, len(quotes))
	for _, q := range quotes {
		key := strikeKey(q.Strike)
		if _, ok := byStrike[key]; ok {
			continue
		}
		byStrike[key] = q.OpenInterest
	}
	return byStrike
}

func strikeKey(strike decimal.Decimal) string {
	return strike.String()
}

package pcr

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ydegt/putcall/internal/marketdata"
)

type fakeProvider struct {
	expirations []string
	chain       *marketdata.Chain
	listErr     error
	chainErr    error
}

func (f *fakeProvider) ListExpirations(ctx context.Context, symbol string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.expirations, nil
}

func (f *fakeProvider) OptionChain(ctx context.Context, symbol, date string) (*marketdata.Chain, error) {
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	return f.chain, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func quotes(pairs ...any) []marketdata.ContractQuote {
	var out []marketdata.ContractQuote
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, marketdata.ContractQuote{
			Strike:       dec(pairs[i].(string)),
			OpenInterest: int64(pairs[i+1].(int)),
		})
	}
	return out
}

func testProvider() *fakeProvider {
	return &fakeProvider{
		expirations: []string{"2024-11-15", "2024-11-29"},
		chain: &marketdata.Chain{
			Calls: quotes("100", 50, "110", 0),
			Puts:  quotes("100", 25, "110", 10),
		},
	}
}

func TestComputeRange(t *testing.T) {
	engine := NewEngine(testProvider())

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Between(dec("100"), dec("110")))
	require.NoError(t, err)
	require.Nil(t, result.Single)
	require.Len(t, result.Rows, 2)

	assert.True(t, result.Rows[0].Strike.Equal(dec("100")))
	assert.Equal(t, int64(25), result.Rows[0].PutOI)
	assert.Equal(t, int64(50), result.Rows[0].CallOI)
	assert.InDelta(t, 0.5, result.Rows[0].Ratio, 1e-9)

	assert.True(t, result.Rows[1].Strike.Equal(dec("110")))
	assert.Equal(t, int64(10), result.Rows[1].PutOI)
	assert.Equal(t, int64(0), result.Rows[1].CallOI)
	assert.True(t, math.IsInf(result.Rows[1].Ratio, 1))
	assert.True(t, result.Rows[1].HasRatio)

	agg := result.Aggregate
	require.NotNil(t, agg)
	assert.Equal(t, int64(35), agg.TotalPutOI)
	assert.Equal(t, int64(50), agg.TotalCallOI)
	assert.True(t, agg.Defined)
	assert.InDelta(t, 0.7, agg.Ratio, 1e-9)
}

func TestComputeAll(t *testing.T) {
	engine := NewEngine(testProvider())

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29", All())
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
	assert.Equal(t, int64(35), result.Aggregate.TotalPutOI)
}

func TestComputeRangeFiltersStrikes(t *testing.T) {
	engine := NewEngine(testProvider())

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Between(dec("105"), dec("120")))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.True(t, result.Rows[0].Strike.Equal(dec("110")))
}

func TestComputeSingleStrike(t *testing.T) {
	engine := NewEngine(testProvider())

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Single(dec("100")))
	require.NoError(t, err)
	require.NotNil(t, result.Single)
	assert.Nil(t, result.Aggregate)
	assert.Equal(t, int64(25), result.Single.PutOI)
	assert.Equal(t, int64(50), result.Single.CallOI)
	assert.InDelta(t, 0.5, result.Single.Ratio, 1e-9)
}

func TestComputeSingleStrikeZeroCallsIsInfinite(t *testing.T) {
	engine := NewEngine(testProvider())

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Single(dec("110")))
	require.NoError(t, err)
	require.NotNil(t, result.Single)
	assert.True(t, math.IsInf(result.Single.Ratio, 1))
	assert.True(t, result.Single.HasRatio)
}

func TestComputeSingleStrikeOneSidedIsNotAnError(t *testing.T) {
	provider := testProvider()
	provider.chain = &marketdata.Chain{
		Calls: quotes("150", 40),
		// No put contract listed at 150.
	}
	engine := NewEngine(provider)

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Single(dec("150")))
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Single.PutOI)
	assert.Equal(t, int64(40), result.Single.CallOI)
	assert.Zero(t, result.Single.Ratio)
	assert.True(t, result.Single.HasRatio)
}

func TestComputeSingleStrikeNotFound(t *testing.T) {
	engine := NewEngine(testProvider())

	_, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Single(dec("150")))
	require.ErrorIs(t, err, ErrStrikeNotFound)
}

func TestComputeUnknownExpiration(t *testing.T) {
	engine := NewEngine(testProvider())

	_, err := engine.Compute(context.Background(), "AAPL", "2024-12-25", All())
	require.ErrorIs(t, err, ErrNoOptionsForDate)
}

func TestComputeInvalidRange(t *testing.T) {
	engine := NewEngine(testProvider())

	_, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Between(dec("200"), dec("100")))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestComputeInvalidRangeBeforeProviderCall(t *testing.T) {
	provider := testProvider()
	provider.listErr = errors.New("network down")
	engine := NewEngine(provider)

	// Range validation happens before any provider query.
	_, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Between(dec("200"), dec("100")))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestComputeProviderFailure(t *testing.T) {
	provider := testProvider()
	provider.listErr = errors.New("network down")
	engine := NewEngine(provider)

	_, err := engine.Compute(context.Background(), "AAPL", "2024-11-29", All())
	require.ErrorIs(t, err, ErrProviderUnavailable)

	provider = testProvider()
	provider.chainErr = errors.New("timeout")
	engine = NewEngine(provider)

	_, err = engine.Compute(context.Background(), "AAPL", "2024-11-29", All())
	require.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestComputeAggregateUndefinedWhenNoCallInterest(t *testing.T) {
	provider := testProvider()
	provider.chain = &marketdata.Chain{
		Calls: quotes("100", 0, "110", 0),
		Puts:  quotes("100", 25, "110", 10),
	}
	engine := NewEngine(provider)

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29", All())
	require.NoError(t, err)
	assert.Equal(t, int64(35), result.Aggregate.TotalPutOI)
	assert.Equal(t, int64(0), result.Aggregate.TotalCallOI)
	assert.False(t, result.Aggregate.Defined)
}

func TestComputeZeroZeroRowHasNoRatio(t *testing.T) {
	provider := testProvider()
	provider.chain = &marketdata.Chain{
		Calls: quotes("100", 0),
		Puts:  quotes("100", 0),
	}
	engine := NewEngine(provider)

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29", All())
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.False(t, result.Rows[0].HasRatio)
}

func TestComputeMissingPutSideIsZero(t *testing.T) {
	provider := testProvider()
	provider.chain = &marketdata.Chain{
		Calls: quotes("100", 50, "110", 20),
		Puts:  quotes("100", 25), // no put listed at 110
	}
	engine := NewEngine(provider)

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29", All())
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, int64(0), result.Rows[1].PutOI)
	assert.Zero(t, result.Rows[1].Ratio)
	assert.True(t, result.Rows[1].HasRatio)
}

func TestComputeRowsSortedByStrike(t *testing.T) {
	provider := testProvider()
	provider.chain = &marketdata.Chain{
		Calls: quotes("120", 5, "100", 50, "110", 20),
		Puts:  quotes("110", 10, "100", 25, "120", 1),
	}
	engine := NewEngine(provider)

	result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29", All())
	require.NoError(t, err)
	require.Len(t, result.Rows, 3)
	for i := 1; i < len(result.Rows); i++ {
		assert.True(t, result.Rows[i-1].Strike.LessThan(result.Rows[i].Strike))
	}
}

func TestComputeAggregateOrderInvariant(t *testing.T) {
	orderings := [][]marketdata.ContractQuote{
		quotes("100", 50, "110", 0, "120", 5),
		quotes("120", 5, "100", 50, "110", 0),
		quotes("110", 0, "120", 5, "100", 50),
	}
	puts := quotes("100", 25, "110", 10, "120", 1)

	var results []*Result
	for _, calls := range orderings {
		provider := testProvider()
		provider.chain = &marketdata.Chain{Calls: calls, Puts: puts}
		engine := NewEngine(provider)

		result, err := engine.Compute(context.Background(), "AAPL", "2024-11-29", All())
		require.NoError(t, err)
		results = append(results, result)
	}

	for _, result := range results[1:] {
		assert.Equal(t, results[0].Aggregate, result.Aggregate)
		assert.Equal(t, len(results[0].Rows), len(result.Rows))
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	engine := NewEngine(testProvider())

	first, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Between(dec("100"), dec("110")))
	require.NoError(t, err)
	second, err := engine.Compute(context.Background(), "AAPL", "2024-11-29",
		Between(dec("100"), dec("110")))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

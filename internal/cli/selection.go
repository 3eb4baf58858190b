package cli

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ydegt/putcall/internal/expiry"
	"github.com/ydegt/putcall/internal/pcr"
)

// buildSelection combines the expression's strike with the optional range
// flags. A strike in the expression conflicts with range bounds, and a
// half-open range is rejected rather than guessed at.
func buildSelection(resolved expiry.Resolved, lower, upper *decimal.Decimal) (pcr.Selection, error) {
	hasStrike := resolved.Strike != nil
	hasBounds := lower != nil || upper != nil

	switch {
	case hasStrike && hasBounds:
		return pcr.Selection{}, fmt.Errorf("%w: a single strike and --lower/--upper bounds cannot be combined", pcr.ErrInvalidRange)
	case lower != nil && upper == nil, lower == nil && upper != nil:
		return pcr.Selection{}, fmt.Errorf("%w: both --lower and --upper must be provided", pcr.ErrInvalidRange)
	case hasStrike:
		return pcr.Single(*resolved.Strike), nil
	case hasBounds:
		return pcr.Between(*lower, *upper), nil
	default:
		return pcr.All(), nil
	}
}

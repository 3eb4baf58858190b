package expiry

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Resolved is a concrete option expiration date plus the optional target
// strike carried over from the expression. Immutable once returned.
type Resolved struct {
	Date   time.Time
	Strike *decimal.Decimal
}

// ISO renders the expiration date in the form option chains are keyed by.
func (r Resolved) ISO() string {
	return r.Date.Format("2006-01-02")
}

// Resolve turns a parsed expression into a concrete expiration date. The
// year is explicit so resolution is deterministic; callers supply the
// current year at the boundary. KindAll has no date of its own and is
// rejected here.
func Resolve(expr Expression, year int) (Resolved, error) {
	if expr.Kind == KindAll {
		return Resolved{}, fmt.Errorf("%w: %q has no expiration date to resolve", ErrInvalidExpression, "all")
	}

	month, err := monthNumber(expr.Month)
	if err != nil {
		return Resolved{}, err
	}

	var date time.Time
	if expr.Kind == KindMonthOnly {
		date = ThirdFriday(year, time.Month(month))
	} else {
		date = time.Date(year, time.Month(month), expr.Day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes Feb 30 to Mar 2; reject anything that moved.
		if date.Month() != time.Month(month) || date.Day() != expr.Day {
			return Resolved{}, fmt.Errorf("%w: %s %d, %d", ErrInvalidDate, expr.Month, expr.Day, year)
		}
	}

	resolved := Resolved{Date: date}
	if expr.HasStrike() {
		strike := expr.Strike
		resolved.Strike = &strike
	}

	return resolved, nil
}

// ThirdFriday returns the standard monthly option expiration date: the
// third Friday of the given month. Computed with weekday arithmetic so no
// data provider round-trip is needed for the default expiration.
func ThirdFriday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysUntilFriday := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	firstFriday := first.AddDate(0, 0, daysUntilFriday)
	return firstFriday.AddDate(0, 0, 14)
}

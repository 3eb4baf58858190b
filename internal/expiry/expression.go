// Package expiry turns free-form date/strike expressions such as "Nov",
// "Nov 29" or "Nov 29, 150" into concrete option expiration dates.
package expiry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidExpression = errors.New("invalid date-strike expression")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidDate       = errors.New("invalid date")
)

// ExpressionKind tags which grammar variant an expression matched.
type ExpressionKind int

const (
	KindAll ExpressionKind = iota
	KindMonthOnly
	KindMonthDay
	KindMonthDayStrike
)

// Expression is a parsed date/strike request. Month and Day are only
// meaningful for the month-bearing kinds, Strike only for KindMonthDayStrike.
type Expression struct {
	Kind   ExpressionKind
	Month  string
	Day    int
	Strike decimal.Decimal
}

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// ParseExpression parses a date/strike expression into its tagged variant.
// Accepted forms: "all", "Nov", "Nov 29" and "Nov 29, 150" (the comma is
// optional, the strike may be fractional). A strike without a day is
// rejected: a specific contract implies a specific calendar date.
func ParseExpression(input string) (Expression, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Expression{}, fmt.Errorf("%w: empty input", ErrInvalidExpression)
	}

	if strings.EqualFold(trimmed, "all") {
		return Expression{Kind: KindAll}, nil
	}

	fields := strings.Fields(strings.ReplaceAll(trimmed, ",", " "))
	if len(fields) > 3 {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidExpression, input)
	}

	month := fields[0]
	if len(month) != 3 {
		return Expression{}, fmt.Errorf("%w: month must be a three-letter abbreviation, got %q", ErrInvalidExpression, month)
	}
	if _, ok := monthNumbers[strings.ToLower(month)]; !ok {
		return Expression{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}

	expr := Expression{Kind: KindMonthOnly, Month: month}
	if len(fields) == 1 {
		return expr, nil
	}

	day, err := strconv.Atoi(fields[1])
	if err != nil || day < 1 || day > 31 {
		return Expression{}, fmt.Errorf("%w: day %q", ErrInvalidExpression, fields[1])
	}
	expr.Kind = KindMonthDay
	expr.Day = day
	if len(fields) == 2 {
		return expr, nil
	}

	strike, err := decimal.NewFromString(fields[2])
	if err != nil || !strike.IsPositive() {
		return Expression{}, fmt.Errorf("%w: strike %q", ErrInvalidExpression, fields[2])
	}
	expr.Kind = KindMonthDayStrike
	expr.Strike = strike

	return expr, nil
}

// HasStrike reports whether the expression carries a target strike.
func (e Expression) HasStrike() bool {
	return e.Kind == KindMonthDayStrike
}

func monthNumber(month string) (int, error) {
	n, ok := monthNumbers[strings.ToLower(month)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return n, nil
}

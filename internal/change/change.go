// Package change compares a current sats price against a baseline snapshot.
package change

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spysats/spysats/internal/model"
)

// ErrZeroBaseline is returned when the baseline snapshot holds a sats price
// of zero, which would divide by zero in the percent calculation.
var ErrZeroBaseline = errors.New("baseline sats price is zero")

// Change describes the movement from a baseline snapshot to a current price.
//
// When Available is false no baseline existed and the other fields are unset,
// which is distinct from a change of zero.
type Change struct {
	Available  bool
	Percent    string
	Symbol     string
	Difference int64
	RawDiff    int64
}

// Compute returns the change from the baseline to the current sats price.
//
// The percent is abs(current - baseline) / baseline * 100, formatted to two
// decimal places rounding half away from zero. The symbol is "+" when the
// difference is zero or positive. A nil baseline yields an unavailable result.
func Compute(current int64, baseline *model.Snapshot) (Change, error) {
	if baseline == nil {
		return Change{}, nil
	}

	if baseline.PriceSats == 0 {
		return Change{}, ErrZeroBaseline
	}

	diff := current - baseline.PriceSats
	magnitude := diff
	symbol := "+"

	if diff < 0 {
		magnitude = -diff
		symbol = "-"
	}

	percent := decimal.NewFromInt(magnitude).
		Div(decimal.NewFromInt(baseline.PriceSats)).
		Mul(decimal.NewFromInt(100)).
		StringFixed(2)

	return Change{
		Available:  true,
		Percent:    percent,
		Symbol:     symbol,
		Difference: magnitude,
		RawDiff:    diff,
	}, nil
}

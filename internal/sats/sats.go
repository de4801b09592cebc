// Package sats converts fiat prices into satoshi amounts.
package sats

import (
	"errors"

	"github.com/shopspring/decimal"
)

// PerBitcoin is the number of satoshis in one bitcoin.
const PerBitcoin int64 = 100_000_000

// ErrInvalidRate is returned when the exchange rate is zero or negative.
var ErrInvalidRate = errors.New("exchange rate must be positive")

// ToSats converts a fiat price into satoshis using the current exchange rate
// between the coin and the fiat currency.
//
// The sats-per-fiat-unit rate is floored before multiplying, so the result is
// floor(fiatPrice * floor(satsPerCoin / exchangeRate)).
func ToSats(fiatPrice decimal.Decimal, satsPerCoin int64, exchangeRate decimal.Decimal) (int64, error) {
	if exchangeRate.LessThanOrEqual(decimal.Zero) {
		return 0, ErrInvalidRate
	}

	rate := decimal.NewFromInt(satsPerCoin).Div(exchangeRate).Floor()

	return fiatPrice.Mul(rate).Floor().IntPart(), nil
}

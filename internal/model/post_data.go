package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// WindowChange describes the price movement for one comparison window.
// When Available is false no baseline snapshot existed for the window and
// the remaining fields carry no meaning.
type WindowChange struct {
	Available  bool
	Percent    string
	Symbol     string
	Difference int64
}

// PostData is the bundle a post is rendered from.
type PostData struct {
	SpyInSats int64
	Hourly    WindowChange
	Daily     WindowChange
	BtcPrice  decimal.Decimal
	SpyPrice  decimal.Decimal
}

// MarshalJSON flattens the bundle into the key set stored with each
// announcement. Unavailable windows serialise as nulls, which keeps
// "no baseline" distinguishable from "no change" in stored rows.
func (data PostData) MarshalJSON() ([]byte, error) {
	bundle := map[string]any{
		"spy_in_sats":       data.SpyInSats,
		"hourly_change":     nil,
		"hourly_symbol":     nil,
		"hourly_difference": nil,
		"daily_change":      nil,
		"daily_symbol":      nil,
		"daily_difference":  nil,
		"btc_price":         data.BtcPrice,
		"spy_price":         data.SpyPrice,
	}

	if data.Hourly.Available {
		bundle["hourly_change"] = data.Hourly.Percent
		bundle["hourly_symbol"] = data.Hourly.Symbol
		bundle["hourly_difference"] = data.Hourly.Difference
	}

	if data.Daily.Available {
		bundle["daily_change"] = data.Daily.Percent
		bundle["daily_symbol"] = data.Daily.Symbol
		bundle["daily_difference"] = data.Daily.Difference
	}

	return json.Marshal(bundle)
}

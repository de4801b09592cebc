// Package model defines the records stored for each collection run.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is an instrument tracked in the price ledger.
type Asset struct {
	ID     int    `json:"id"`
	Ticker string `json:"ticker"`
}

// Snapshot is one observed price for an asset, in fiat and in sats.
//
// Snapshots are append-only: rows are never updated or deleted, and the
// timestamp is assigned by the database at write time.
type Snapshot struct {
	ID        int             `json:"id"`
	AssetID   int             `json:"asset_id"`
	Price     decimal.Decimal `json:"price"`
	PriceSats int64           `json:"price_sats"`
	Timestamp time.Time       `json:"timestamp"`
}

// Announcement records one delivered post and the data used to render it.
// A row exists only for posts that actually reached the feed.
type Announcement struct {
	ID               int       `json:"id"`
	ExternalID       string    `json:"external_id"`
	ParentExternalID string    `json:"parent_external_id"`
	Timestamp        time.Time `json:"timestamp"`
	Content          string    `json:"content"`
	Data             PostData  `json:"post_data"`
}

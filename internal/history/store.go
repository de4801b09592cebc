// Package history reads and appends the price snapshot ledger.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spysats/spysats/internal/database"
	"github.com/spysats/spysats/internal/model"
)

// Conn is the database access the store needs.
type Conn interface {
	database.Queryable
	Begin() (database.Tx, error)
}

// Store queries and appends price history rows.
//
// The ledger is append-only: the store exposes no update or delete
// operations, and snapshot timestamps are assigned by the database at
// insert time. Reference timestamps for lookups are always passed in by the
// caller, so queries never depend on the database clock.
type Store struct {
	conn Conn
}

// NewStore creates a store on top of a database connection.
func NewStore(conn Conn) *Store {
	return &Store{conn: conn}
}

// EnsureAssets inserts any missing asset rows for the given tickers.
func (store *Store) EnsureAssets(tickers []string) error {
	for _, ticker := range tickers {
		err := store.conn.Exec(
			"INSERT INTO asset (ticker) VALUES ($1) ON CONFLICT (ticker) DO NOTHING",
			ticker,
		)

		if err != nil {
			return err
		}
	}

	return nil
}

// Asset returns the asset row for a ticker.
func (store *Store) Asset(ticker string) (model.Asset, error) {
	var asset model.Asset
	row := store.conn.QueryRow(
		"SELECT id, ticker FROM asset WHERE ticker = $1",
		ticker,
	)
	err := row.Scan(&asset.ID, &asset.Ticker)

	return asset, err
}

// Latest returns the most recent snapshot for an asset, or nil when the
// ledger holds none. Equal timestamps tie-break on the highest id.
func (store *Store) Latest(assetID int) (*model.Snapshot, error) {
	return store.loadOne(
		`SELECT id, asset_id, price, price_sats, timestamp
		FROM price_history
		WHERE asset_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT 1`,
		assetID,
	)
}

// NearestTo returns the first snapshot in ascending timestamp order whose
// timestamp falls within [target - tolerance, target + tolerance] inclusive,
// or nil when no snapshot falls in the window.
func (store *Store) NearestTo(assetID int, target time.Time, tolerance time.Duration) (*model.Snapshot, error) {
	return store.loadOne(
		`SELECT id, asset_id, price, price_sats, timestamp
		FROM price_history
		WHERE asset_id = $1
		AND timestamp >= $2
		AND timestamp <= $3
		ORDER BY timestamp ASC, id ASC
		LIMIT 1`,
		assetID,
		target.Add(-tolerance),
		target.Add(tolerance),
	)
}

func (store *Store) loadOne(sql string, arguments ...any) (*model.Snapshot, error) {
	var snapshot model.Snapshot
	row := store.conn.QueryRow(sql, arguments...)
	err := row.Scan(
		&snapshot.ID,
		&snapshot.AssetID,
		&snapshot.Price,
		&snapshot.PriceSats,
		&snapshot.Timestamp,
	)

	if err == database.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// RunRecord is everything one collection run persists.
type RunRecord struct {
	Snapshots    []model.Snapshot
	Announcement *model.Announcement
}

// SaveRun writes the run's snapshots and optional announcement in a single
// transaction, so the snapshot pair is all-or-nothing.
func (store *Store) SaveRun(record RunRecord) error {
	tx, err := store.conn.Begin()

	if err != nil {
		return err
	}

	for _, snapshot := range record.Snapshots {
		err := tx.Exec(
			"INSERT INTO price_history (asset_id, price, price_sats) VALUES ($1, $2, $3)",
			snapshot.AssetID,
			snapshot.Price,
			snapshot.PriceSats,
		)

		if err != nil {
			_ = tx.Rollback()

			return err
		}
	}

	if record.Announcement != nil {
		if err := insertAnnouncement(tx, record.Announcement); err != nil {
			_ = tx.Rollback()

			return err
		}
	}

	return tx.Commit()
}

func insertAnnouncement(tx database.Tx, announcement *model.Announcement) error {
	bundle, err := json.Marshal(announcement.Data)

	if err != nil {
		return fmt.Errorf("encoding post data: %w", err)
	}

	return tx.Exec(
		`INSERT INTO announcement (external_id, parent_external_id, content, post_data)
		VALUES ($1, NULLIF($2, ''), $3, $4)`,
		announcement.ExternalID,
		announcement.ParentExternalID,
		announcement.Content,
		string(bundle),
	)
}

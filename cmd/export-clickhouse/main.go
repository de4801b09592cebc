// Export the Postgres snapshot ledger into ClickHouse for analytics.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/shopspring/decimal"
	"github.com/spysats/spysats/internal/database"
	"github.com/spysats/spysats/internal/env"
)

func connectClickHouse() (clickhouse.Conn, error) {
	address := fmt.Sprintf("%s:%s", os.Getenv("CH_HOST"), os.Getenv("CH_PORT"))
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{address},
		Auth: clickhouse.Auth{
			Database: os.Getenv("CH_NAME"),
			Username: os.Getenv("CH_USERNAME"),
			Password: os.Getenv("CH_PASSWORD"),
		},
		DialTimeout: time.Second * 5,
	})

	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, err
	}

	return conn, nil
}

func createExportTable(chConn clickhouse.Conn) error {
	return chConn.Exec(
		context.Background(),
		`CREATE TABLE IF NOT EXISTS price_history_export (
			ticker String,
			price Decimal(20, 8),
			price_sats Int64,
			timestamp DateTime64(9)
		)
		ENGINE = ReplacingMergeTree
		ORDER BY (ticker, timestamp)`,
	)
}

func exportPrices(conn *database.Conn, chConn clickhouse.Conn) error {
	rows, err := conn.Query(
		`SELECT asset.ticker, price, price_sats, timestamp
		FROM price_history
		INNER JOIN asset ON asset.id = price_history.asset_id
		ORDER BY timestamp, price_history.id`,
	)

	if err != nil {
		return err
	}

	defer rows.Close()

	batch, err := chConn.PrepareBatch(
		context.Background(),
		"INSERT INTO price_history_export (ticker, price, price_sats, timestamp)",
	)

	if err != nil {
		return err
	}

	rowCount := 0

	for rows.Next() {
		var ticker string
		var price decimal.Decimal
		var priceSats int64
		var timestamp time.Time

		if err := rows.Scan(&ticker, &price, &priceSats, &timestamp); err != nil {
			return err
		}

		if err := batch.Append(ticker, price, priceSats, timestamp); err != nil {
			return err
		}

		rowCount += 1
	}

	if err := rows.Err(); err != nil {
		return err
	}

	if rowCount == 0 {
		return nil
	}

	return batch.Send()
}

func main() {
	env.LoadEnvironmentVariables()

	conn, err := database.Connect()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = conn.Close()
	}()

	chConn, err := connectClickHouse()

	if err != nil {
		fmt.Fprintf(os.Stderr, "ClickHouse connection error: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		_ = chConn.Close()
	}()

	if err := createExportTable(chConn); err != nil {
		fmt.Fprintf(os.Stderr, "SQL error: %s\n", err)
		os.Exit(1)
	}

	if err := exportPrices(conn, chConn); err != nil {
		fmt.Fprintf(os.Stderr, "Export error: %s\n", err)
		os.Exit(1)
	}
}

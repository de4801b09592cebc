// Package database wraps the database implementation used for spysats.
package database

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4"
)

// ErrNoRows is returned by Scan when a query matches no rows.
var ErrNoRows = pgx.ErrNoRows

// Conn wraps a single Postgres connection, acquired once per run.
type Conn struct {
	pgConn *pgx.Conn
}

// Row represents a single row that can be scanned.
type Row interface {
	Scan(dest ...any) error
}

// Rows represents rows that can be iterated through.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

// Tx represents a database transaction.
type Tx interface {
	Queryable
	Commit() error
	Rollback() error
}

// Queryable defines an interface for a connection or transaction.
type Queryable interface {
	Exec(sql string, arguments ...any) error
	Query(sql string, arguments ...any) (Rows, error)
	QueryRow(sql string, arguments ...any) Row
}

// Connect connects to the Postgres database with the project environment variables.
func Connect() (*Conn, error) {
	pgConn, err := pgx.Connect(
		context.Background(),
		fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s",
			os.Getenv("DB_USERNAME"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_HOST"),
			os.Getenv("DB_PORT"),
			os.Getenv("DB_NAME"),
		),
	)

	if err != nil {
		return nil, err
	}

	return &Conn{pgConn: pgConn}, nil
}

// Close closes a database connection.
func (conn *Conn) Close() error {
	return conn.pgConn.Close(context.Background())
}

// Exec executes a database query.
func (conn *Conn) Exec(sql string, arguments ...any) error {
	_, err := conn.pgConn.Exec(context.Background(), sql, arguments...)

	return err
}

// Query executes a database query returning Rows data.
func (conn *Conn) Query(sql string, arguments ...any) (Rows, error) {
	rows, err := conn.pgConn.Query(context.Background(), sql, arguments...)

	if err != nil {
		return nil, err
	}

	return rows, nil
}

// QueryRow executes a database query returning Row data.
func (conn *Conn) QueryRow(sql string, arguments ...any) Row {
	return conn.pgConn.QueryRow(context.Background(), sql, arguments...)
}

// Begin starts a database transaction.
func (conn *Conn) Begin() (Tx, error) {
	pgTx, err := conn.pgConn.Begin(context.Background())

	if err != nil {
		return nil, err
	}

	return &pgxTx{pgTx: pgTx}, nil
}

type pgxTx struct {
	pgTx pgx.Tx
}

func (tx *pgxTx) Exec(sql string, arguments ...any) error {
	_, err := tx.pgTx.Exec(context.Background(), sql, arguments...)

	return err
}

func (tx *pgxTx) Query(sql string, arguments ...any) (Rows, error) {
	rows, err := tx.pgTx.Query(context.Background(), sql, arguments...)

	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (tx *pgxTx) QueryRow(sql string, arguments ...any) Row {
	return tx.pgTx.QueryRow(context.Background(), sql, arguments...)
}

func (tx *pgxTx) Commit() error {
	return tx.pgTx.Commit(context.Background())
}

func (tx *pgxTx) Rollback() error {
	return tx.pgTx.Rollback(context.Background())
}

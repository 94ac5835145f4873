// Package testutil provides shared helpers for integration tests.
// Everything here skips the calling test when TEST_DATABASE_URL is unset, so
// the unit suite runs without Postgres.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/couplemap/couplemap/migrations"
)

// dsnEnv names the variable that opts a run into the integration tests.
const dsnEnv = "TEST_DATABASE_URL"

var (
	poolOnce sync.Once
	pool     *pgxpool.Pool
	poolErr  error
)

// NewPool returns a pool shared by every test in the binary. It lives until
// the process exits; tests isolate themselves through NewTx instead.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := requireDSN(t)

	poolOnce.Do(func() {
		pool, poolErr = openPool(context.Background(), dsn)
	})
	if poolErr != nil {
		t.Fatalf("testutil.NewPool: %v", poolErr)
	}
	return pool
}

// NewSQLDB returns a *sql.DB over the shared pool, for goose.
// Closing it does not close the pool.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db := stdlib.OpenDBFromPool(NewPool(t))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewTx begins a transaction that is rolled back when the test ends, so rows
// written through it never outlive the test. Repos accept a pgx.Tx directly;
// nested Begin calls become savepoints.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// MustMigrate brings the database at dsn to the latest schema and panics on
// failure. Meant for TestMain, where there is no *testing.T.
func MustMigrate(dsn string) {
	ctx := context.Background()
	p, err := openPool(ctx, dsn)
	if err != nil {
		panic("testutil.MustMigrate: " + err.Error())
	}
	defer p.Close()

	db := stdlib.OpenDBFromPool(p)
	defer db.Close()
	if _, err := migrations.Up(ctx, db); err != nil {
		panic("testutil.MustMigrate: " + err.Error())
	}
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	p, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return p, nil
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skip(dsnEnv + " not set; skipping integration test")
	}
	return dsn
}

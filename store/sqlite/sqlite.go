/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements fridge.TxStore and auth.UserTxStore on a single SQLite file.
  The schema is versioned with golang-migrate (see migrate.go) and embedded
  in the binary.

INTERFACES IMPLEMENTED:
  fridge.TxStore:    products, sites, stock, sales, cash ledger
  auth.UserTxStore:  operator accounts

KEY TABLES:
  products, sites:    catalog and condominium sites
  stock_items:        one row per (site, product), UNIQUE(site_id, product_id)
  sales:              append-only, frozen cost and revenue
  cash_transactions:  append-only central ledger
  users:              operator accounts, UNIQUE(email)

  stock_items and sales reference sites and products with ON DELETE CASCADE.
  Foreign keys are enabled per connection through the DSN.

MONEY AND TIME:
  Decimals are stored as TEXT (decimal.Decimal is a sql.Scanner/Valuer) and
  summed in Go, never in SQL. Timestamps are fixed-width UTC TEXT so string
  order equals time order.

CONCURRENCY:
  Write transactions open with BEGIN IMMEDIATE (_txlock=immediate), which
  takes SQLite's write lock before the first read. WithTx also holds a
  process-level mutex so in-process writers queue instead of spinning on
  busy_timeout. Inside WithTx every statement runs on the *sql.Tx; nothing
  reaches back to the pool, so the single ":memory:" connection cannot
  deadlock.

WAL MODE:
  File databases are opened with WAL so readers do not block the writer.

USAGE:
  store, err := sqlite.New("./data/fridge.db", logger)
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - fridge/store.go: interface definitions
  - fridge/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/warp/fridge-ledger/auth"
	"github.com/warp/fridge-ledger/fridge"
	"go.uber.org/zap"
)

var (
	_ fridge.TxStore   = (*Store)(nil)
	_ auth.UserTxStore = (*Store)(nil)
)

// DefaultBusyTimeout is how long a connection waits on a locked database.
const DefaultBusyTimeout = 5 * time.Second

// Store implements all storage interfaces using SQLite.
type Store struct {
	queries
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// Options tunes New.
type Options struct {
	BusyTimeout time.Duration
}

// New opens the database at dbPath and migrates it to the latest schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string, logger *zap.Logger, opts ...Options) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	busy := DefaultBusyTimeout
	if len(opts) > 0 && opts[0].BusyTimeout > 0 {
		busy = opts[0].BusyTimeout
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=%d",
		dbPath, busy.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := Migrate(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return NewWithDB(db, logger), nil
}

// NewWithDB wraps an already open database. The caller owns the schema.
func NewWithDB(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{queries: queries{db: db}, db: db, logger: logger}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(fridge.Store) error) error {
	return s.inTx(ctx, func(q queries) error { return fn(q) })
}

// WithUserTx executes fn within a database transaction.
func (s *Store) WithUserTx(ctx context.Context, fn func(auth.UserStore) error) error {
	return s.inTx(ctx, func(q queries) error { return fn(q) })
}

func (s *Store) inTx(ctx context.Context, fn func(queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(queries{db: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all business data (for demos). Accounts are kept.
func (s *Store) Reset(ctx context.Context) error {
	err := s.inTx(ctx, func(q queries) error {
		tables := []string{"cash_transactions", "sales", "stock_items", "sites", "products"}
		for _, table := range tables {
			if _, err := q.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err == nil {
		s.logger.Info("store reset")
	}
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements fridge.Store and auth.UserStore against a querier. The
// Store embeds one bound to the pool; WithTx hands out one bound to the tx.
type queries struct {
	db querier
}

// timeLayout is fixed width so lexicographic order is chronological.
const timeLayout = "2006-01-02 15:04:05.000000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Package relationaldb keeps an append-only journal of committed AMM
// operations in a SQL database.
package relationaldb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Entry is one committed operation.
type Entry struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Kind      string    `json:"kind"`
	AMM       string    `json:"amm_id"`
	// Pool is the hex pool key, empty for AMM-level operations.
	Pool    string `json:"pool,omitempty"`
	Account string `json:"account"`
	// Side is the input side of a swap.
	Side    string `json:"side,omitempty"`
	// Asset is the funded asset of a fund entry.
	Asset   string `json:"asset,omitempty"`
	AmountA uint64 `json:"amount_a"`
	AmountB uint64 `json:"amount_b"`
	Shares  uint64 `json:"shares"`
}

// Journal appends and queries Entries.
type Journal struct {
	db     *sql.DB
	config *Config
}

var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at BIGINT NOT NULL,
			kind TEXT NOT NULL,
			amm_id TEXT NOT NULL,
			pool TEXT NOT NULL,
			account TEXT NOT NULL,
			side TEXT NOT NULL,
			asset TEXT NOT NULL,
			amount_a TEXT NOT NULL,
			amount_b TEXT NOT NULL,
			shares TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_pool ON operations (pool)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS operations (
			id BIGSERIAL PRIMARY KEY,
			created_at BIGINT NOT NULL,
			kind TEXT NOT NULL,
			amm_id TEXT NOT NULL,
			pool TEXT NOT NULL,
			account TEXT NOT NULL,
			side TEXT NOT NULL,
			asset TEXT NOT NULL,
			amount_a TEXT NOT NULL,
			amount_b TEXT NOT NULL,
			shares TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_pool ON operations (pool)`,
	},
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS operations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			created_at BIGINT NOT NULL,
			kind VARCHAR(32) NOT NULL,
			amm_id VARCHAR(255) NOT NULL,
			pool VARCHAR(64) NOT NULL,
			account VARCHAR(40) NOT NULL,
			side VARCHAR(1) NOT NULL,
			asset VARCHAR(255) NOT NULL,
			amount_a VARCHAR(20) NOT NULL,
			amount_b VARCHAR(20) NOT NULL,
			shares VARCHAR(20) NOT NULL,
			INDEX idx_operations_pool (pool)
		)`,
	},
}

// Open connects to the database described by config and creates the
// schema if needed.
func Open(ctx context.Context, config *Config) (*Journal, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s journal: %w", config.Driver, err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, config.DefaultTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s journal: %w", config.Driver, err)
	}
	for _, stmt := range schemas[config.Driver] {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
		}
	}

	return &Journal{db: db, config: config}, nil
}

// rebind rewrites ? placeholders for drivers that number them.
func (j *Journal) rebind(query string) string {
	if j.config.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Append records e. CreatedAt defaults to now.
func (j *Journal) Append(ctx context.Context, e *Entry) error {
	if j.db == nil {
		return ErrDatabaseClosed
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, j.config.DefaultTimeout)
	defer cancel()

	// uint64 amounts are stored as decimal text: drivers reject values
	// above the signed 64-bit range.
	_, err := j.db.ExecContext(ctx, j.rebind(`INSERT INTO operations
		(created_at, kind, amm_id, pool, account, side, asset, amount_a, amount_b, shares)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.CreatedAt.UnixNano(), e.Kind, e.AMM, e.Pool, e.Account, e.Side, e.Asset,
		strconv.FormatUint(e.AmountA, 10),
		strconv.FormatUint(e.AmountB, 10),
		strconv.FormatUint(e.Shares, 10),
	)
	if err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-empty pool
// restricts the result to that pool.
func (j *Journal) Recent(ctx context.Context, pool string, limit int) ([]Entry, error) {
	if j.db == nil {
		return nil, ErrDatabaseClosed
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	ctx, cancel := context.WithTimeout(ctx, j.config.DefaultTimeout)
	defer cancel()

	query := `SELECT id, created_at, kind, amm_id, pool, account, side, asset, amount_a, amount_b, shares
		FROM operations`
	args := []any{}
	if pool != "" {
		query += ` WHERE pool = ?`
		args = append(args, pool)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, j.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                 Entry
			createdAt         int64
			amtA, amtB, share string
		)
		if err := rows.Scan(&e.ID, &createdAt, &e.Kind, &e.AMM, &e.Pool, &e.Account, &e.Side, &e.Asset, &amtA, &amtB, &share); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.CreatedAt = time.Unix(0, createdAt).UTC()
		if e.AmountA, err = strconv.ParseUint(amtA, 10, 64); err != nil {
			return nil, fmt.Errorf("journal entry %d amount_a: %w", e.ID, err)
		}
		if e.AmountB, err = strconv.ParseUint(amtB, 10, 64); err != nil {
			return nil, fmt.Errorf("journal entry %d amount_b: %w", e.ID, err)
		}
		if e.Shares, err = strconv.ParseUint(share, 10, 64); err != nil {
			return nil, fmt.Errorf("journal entry %d shares: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

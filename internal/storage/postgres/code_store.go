// Package postgres provides a Postgres-backed source for the HSN code table.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/hsn-lookup/internal/hsn"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// DefaultTable is used when CodeStoreConfig.Table is empty.
const DefaultTable = "hsn_codes"

// CodeStoreConfig controls the Postgres connection pool used to read codes.
type CodeStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type queryCloser interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Close()
}

// CodeStore reads HSN records from a table with hsn_cd, hsn_description
// and rate columns.
type CodeStore struct {
	pool  queryCloser
	table string
}

// NewCodeStore creates a Postgres-backed CodeStore using the provided config.
func NewCodeStore(ctx context.Context, cfg CodeStoreConfig) (*CodeStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("source.postgres.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &CodeStore{pool: pool, table: table}, nil
}

// NewCodeStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewCodeStoreWithPool(pool queryCloser, table string) (*CodeStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &CodeStore{pool: pool, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *CodeStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// ListRecords returns every row in physical (insertion) order.
func (s *CodeStore) ListRecords(ctx context.Context) ([]hsn.Record, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("code store is not configured")
	}
	query := fmt.Sprintf(`
SELECT
	hsn_cd,
	COALESCE(hsn_description, ''),
	COALESCE(rate::text, '')
FROM %s
ORDER BY ctid`, s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query codes: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (hsn.Record, error) {
		var code, description, rawRate string
		if err := row.Scan(&code, &description, &rawRate); err != nil {
			return hsn.Record{}, fmt.Errorf("scan code row: %w", err)
		}
		rate, err := hsn.ParseRate(rawRate)
		if err != nil {
			return hsn.Record{}, fmt.Errorf("code %q: %w", code, err)
		}
		return hsn.Record{Code: code, Description: description, Rate: rate}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("read codes: %w", err)
	}
	return records, nil
}

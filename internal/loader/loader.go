// Package loader builds the HSN code table from a configured source once at
// startup. Any failure here is fatal to the process.
package loader

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/JakeFAU/hsn-lookup/internal/hsn"
)

// ObjectGetter fetches the full contents of a named object.
type ObjectGetter interface {
	GetObject(ctx context.Context, path string) ([]byte, error)
}

// RecordLister returns table rows already split into records.
type RecordLister interface {
	ListRecords(ctx context.Context) ([]hsn.Record, error)
}

// FromObject downloads object from store and parses it as a CSV export.
func FromObject(ctx context.Context, store ObjectGetter, object string, logger *zap.Logger) (*hsn.Table, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	logger = orNop(logger)

	data, err := store.GetObject(ctx, object)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", object, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("parse %s: content is not valid UTF-8", object)
	}
	table, err := hsn.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", object, err)
	}
	logger.Info("table loaded",
		zap.String("object", object),
		zap.Int("bytes", len(data)),
		zap.Int("rows", table.Len()),
	)
	return table, nil
}

// FromRecords builds a table from a record source such as Postgres.
func FromRecords(ctx context.Context, src RecordLister, logger *zap.Logger) (*hsn.Table, error) {
	if src == nil {
		return nil, fmt.Errorf("record source is required")
	}
	logger = orNop(logger)

	records, err := src.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	table := hsn.NewTable(records)
	logger.Info("table loaded", zap.Int("rows", table.Len()))
	return table, nil
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

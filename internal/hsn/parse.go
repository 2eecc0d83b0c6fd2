package hsn

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// Column names expected in the CSV header.
const (
	ColumnCode        = "HSN_CD"
	ColumnDescription = "HSN_Description"
	ColumnRate        = "Rate"
)

const utf8BOM = "\ufeff"

// Parse reads a comma-delimited export with a header row into a Table.
// The header must name ColumnCode, ColumnDescription and ColumnRate; other
// columns are ignored.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		rate, err := ParseRate(row[idx.rate])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, Record{
			Code:        strings.TrimSpace(row[idx.code]),
			Description: row[idx.description],
			Rate:        rate,
		})
	}
	return &Table{records: records}, nil
}

// ParseRate parses a numeric percentage such as "5", "18.0" or "0.25".
func ParseRate(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Decimal{}, fmt.Errorf("rate is empty")
	}
	rate, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid rate %q: %w", raw, err)
	}
	return rate, nil
}

type columns struct {
	code        int
	description int
	rate        int
}

func columnIndex(header []string) (columns, error) {
	idx := columns{code: -1, description: -1, rate: -1}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		switch name {
		case ColumnCode:
			idx.code = i
		case ColumnDescription:
			idx.description = i
		case ColumnRate:
			idx.rate = i
		}
	}
	var missing []string
	if idx.code < 0 {
		missing = append(missing, ColumnCode)
	}
	if idx.description < 0 {
		missing = append(missing, ColumnDescription)
	}
	if idx.rate < 0 {
		missing = append(missing, ColumnRate)
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

package hsn

import (
	"github.com/shopspring/decimal"
)

// Record is one row of the HSN code table.
type Record struct {
	// Code is kept as text so leading zeros survive ("01011010").
	Code        string
	Description string
	Rate        decimal.Decimal
}

// GSTRate renders the rate the way responses carry it, e.g. "5%" or "0.25%".
func (r Record) GSTRate() string {
	return r.Rate.String() + "%"
}

// Table is an ordered, immutable set of records.
type Table struct {
	records []Record
}

// NewTable copies records into a new Table, preserving their order.
func NewTable(records []Record) *Table {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Table{records: cp}
}

// Len reports the number of loaded rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Each calls fn for every record in load order until fn returns false.
func (t *Table) Each(fn func(Record) bool) {
	if t == nil {
		return
	}
	for _, rec := range t.records {
		if !fn(rec) {
			return
		}
	}
}

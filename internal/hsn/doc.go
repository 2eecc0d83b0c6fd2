// Package hsn holds the HSN code table and the lookup rules served by the API.
//
// A Table is built once from a CSV export (or any other record source) and is
// never mutated afterwards, so a single *Table can be shared by every request
// goroutine without locking. A Searcher answers two kinds of query:
//   - prefix search: a 4-digit input returns every code starting with it,
//     sorted by code text and capped at MaxPrefixResults.
//   - exact search: any other input returns the first record whose code text
//     equals it.
//
// Failures are reported through sentinel errors; Failure translates them into
// the HTTP status and ErrorResult body shared by the API and the CLI.
package hsn

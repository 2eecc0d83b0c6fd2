package hsn

import (
	"errors"
	"net/http"
	"slices"
	"strings"
)

const (
	// PrefixLength is the input length that selects prefix search.
	PrefixLength = 4
	// MaxPrefixResults caps the results returned by a prefix search.
	MaxPrefixResults = 20
)

// Error messages returned to clients.
const (
	MessageMissingCode    = "hsn_code parameter is required"
	MessagePrefixNotFound = "No HSN codes found with this prefix"
	MessageCodeNotFound   = "HSN code not found"
	messageServerError    = "Server error: "
)

var (
	// ErrMissingCode reports an absent or empty hsn_code.
	ErrMissingCode = errors.New("hsn_code is required")
	// ErrPrefixNotFound reports a prefix search without matches.
	ErrPrefixNotFound = errors.New("no codes match prefix")
	// ErrCodeNotFound reports an exact search without a match.
	ErrCodeNotFound = errors.New("code not found")
	// ErrTableNotLoaded is returned when a Searcher has no table to read.
	ErrTableNotLoaded = errors.New("code table not loaded")
)

// Mode discriminates the two search kinds. Its value is the "type" field of
// successful responses.
type Mode string

const (
	ModePrefix Mode = "prefix_search"
	ModeExact  Mode = "exact_search"
)

// ModeFor returns ModePrefix for exactly four ASCII digits and ModeExact
// for anything else.
func ModeFor(code string) Mode {
	if len(code) != PrefixLength {
		return ModeExact
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ModeExact
		}
	}
	return ModePrefix
}

// Result is implemented by PrefixSearchResult and ExactSearchResult.
type Result interface {
	SearchMode() Mode
}

// CodeResult is the client-facing view of a Record.
type CodeResult struct {
	HSNCode     string `json:"hsn_code"`
	Description string `json:"description"`
	GSTRate     string `json:"gst_rate"`
}

func newCodeResult(rec Record) CodeResult {
	return CodeResult{
		HSNCode:     rec.Code,
		Description: rec.Description,
		GSTRate:     rec.GSTRate(),
	}
}

// PrefixSearchResult is the body of a successful prefix search.
type PrefixSearchResult struct {
	Type       Mode         `json:"type"`
	Prefix     string       `json:"prefix"`
	TotalFound int          `json:"total_found"`
	Results    []CodeResult `json:"results"`
}

// SearchMode implements Result.
func (PrefixSearchResult) SearchMode() Mode { return ModePrefix }

// ExactSearchResult is the body of a successful exact search.
type ExactSearchResult struct {
	Type Mode `json:"type"`
	CodeResult
}

// SearchMode implements Result.
func (ExactSearchResult) SearchMode() Mode { return ModeExact }

// ErrorResult is the body of every 4xx/5xx lookup response.
type ErrorResult struct {
	Error string `json:"error"`
}

// Failure maps a lookup error to its HTTP status and response body.
// Errors other than the sentinels are reported as server errors with the
// error text embedded.
func Failure(err error) (int, ErrorResult) {
	switch {
	case errors.Is(err, ErrMissingCode):
		return http.StatusBadRequest, ErrorResult{Error: MessageMissingCode}
	case errors.Is(err, ErrPrefixNotFound):
		return http.StatusNotFound, ErrorResult{Error: MessagePrefixNotFound}
	case errors.Is(err, ErrCodeNotFound):
		return http.StatusNotFound, ErrorResult{Error: MessageCodeNotFound}
	default:
		return http.StatusInternalServerError, ServerError(err.Error())
	}
}

// ServerError builds the 500 body for an unexpected failure.
func ServerError(detail string) ErrorResult {
	return ErrorResult{Error: messageServerError + detail}
}

// Searcher answers lookups against a shared Table.
type Searcher struct {
	table *Table
}

// NewSearcher wraps table. A nil table makes every lookup fail with
// ErrTableNotLoaded.
func NewSearcher(table *Table) *Searcher {
	return &Searcher{table: table}
}

// Lookup runs a prefix or exact search for code.
func (s *Searcher) Lookup(code string) (Result, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	if s == nil || s.table == nil {
		return nil, ErrTableNotLoaded
	}
	if ModeFor(code) == ModePrefix {
		res, err := s.prefixSearch(code)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	res, err := s.exactSearch(code)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Searcher) prefixSearch(prefix string) (PrefixSearchResult, error) {
	var matches []CodeResult
	s.table.Each(func(rec Record) bool {
		if strings.HasPrefix(rec.Code, prefix) {
			matches = append(matches, newCodeResult(rec))
		}
		return true
	})
	if len(matches) == 0 {
		return PrefixSearchResult{}, ErrPrefixNotFound
	}
	slices.SortStableFunc(matches, func(a, b CodeResult) int {
		return strings.Compare(a.HSNCode, b.HSNCode)
	})
	total := len(matches)
	if total > MaxPrefixResults {
		matches = matches[:MaxPrefixResults]
	}
	return PrefixSearchResult{
		Type:       ModePrefix,
		Prefix:     prefix,
		TotalFound: total,
		Results:    matches,
	}, nil
}

func (s *Searcher) exactSearch(code string) (ExactSearchResult, error) {
	var (
		found Record
		ok    bool
	)
	s.table.Each(func(rec Record) bool {
		if rec.Code == code {
			found, ok = rec, true
			return false
		}
		return true
	})
	if !ok {
		return ExactSearchResult{}, ErrCodeNotFound
	}
	return ExactSearchResult{Type: ModeExact, CodeResult: newCodeResult(found)}, nil
}

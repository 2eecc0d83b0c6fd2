package api

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/hsn-lookup/internal/hsn"
	"github.com/JakeFAU/hsn-lookup/internal/metrics"
)

const queryParam = "hsn_code"

// lookup handles prefix and exact searches for the hsn_code query parameter.
// Sentinel lookup errors become 400/404; anything else, including a panic,
// becomes a 500 whose body embeds the failure text.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get(queryParam)
	mode := modeLabel(code)

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("lookup panicked", zap.String("hsn_code", code), zap.Any("panic", rec))
			metrics.ObserveLookup(mode, metrics.OutcomeError)
			s.writeJSON(w, http.StatusInternalServerError, hsn.ServerError(fmt.Sprint(rec)))
		}
	}()

	if code != "" {
		s.logger.Info("searching for HSN code", zap.String("hsn_code", code), zap.String("mode", mode))
	}

	res, err := s.searcher.Lookup(code)
	if err != nil {
		status, body := hsn.Failure(err)
		outcome := outcomeFor(err)
		switch outcome {
		case metrics.OutcomeError:
			s.logger.Error("lookup failed", zap.String("hsn_code", code), zap.Error(err))
		case metrics.OutcomeNotFound:
			s.logger.Info("no data found", zap.String("hsn_code", code), zap.String("mode", mode))
		}
		metrics.ObserveLookup(mode, outcome)
		s.writeJSON(w, status, body)
		return
	}

	switch v := res.(type) {
	case hsn.PrefixSearchResult:
		s.logger.Info("prefix search matched",
			zap.String("prefix", v.Prefix),
			zap.Int("total_found", v.TotalFound),
		)
	case hsn.ExactSearchResult:
		s.logger.Info("exact search matched", zap.String("hsn_code", v.HSNCode))
	}
	metrics.ObserveLookup(mode, metrics.OutcomeFound)
	s.writeJSON(w, http.StatusOK, res)
}

func modeLabel(code string) string {
	if code == "" {
		return "none"
	}
	return string(hsn.ModeFor(code))
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, hsn.ErrMissingCode):
		return metrics.OutcomeInvalid
	case errors.Is(err, hsn.ErrPrefixNotFound), errors.Is(err, hsn.ErrCodeNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}

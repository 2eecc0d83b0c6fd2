package hsn

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureTable(t *testing.T) *Table {
	t.Helper()
	input := "HSN_CD,HSN_Description,Rate\n" +
		"01012000,Asses,12\n" +
		"01011010,Live horses,5\n" +
		"0101,Horses,18\n" +
		"01011010,Duplicate horses,28\n" +
		"ABC1,Lettered code,3\n" +
		"123,Short code,0.25\n"
	table, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	return table
}

func TestModeFor(t *testing.T) {
	t.Parallel()

	tests := map[string]Mode{
		"0101":     ModePrefix,
		"9999":     ModePrefix,
		"010":      ModeExact,
		"01011":    ModeExact,
		"01011010": ModeExact,
		"01a1":     ModeExact,
		"ABC1":     ModeExact,
		" 101":     ModeExact,
		"١٢٣٤":     ModeExact,
	}
	for input, want := range tests {
		assert.Equal(t, want, ModeFor(input), "input %q", input)
	}
}

func TestLookup_ExactRoundTrip(t *testing.T) {
	t.Parallel()

	table := NewTable([]Record{{Code: "01011010", Description: "Live horses", Rate: mustRate(t, "5")}})
	res, err := NewSearcher(table).Lookup("01011010")
	require.NoError(t, err)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"exact_search","hsn_code":"01011010","description":"Live horses","gst_rate":"5%"}`,
		string(body),
	)
}

func TestLookup_PrefixSortsAndCounts(t *testing.T) {
	t.Parallel()

	res, err := NewSearcher(fixtureTable(t)).Lookup("0101")
	require.NoError(t, err)

	prefix, ok := res.(PrefixSearchResult)
	require.True(t, ok, "expected PrefixSearchResult, got %T", res)
	assert.Equal(t, ModePrefix, prefix.Type)
	assert.Equal(t, "0101", prefix.Prefix)
	assert.Equal(t, 4, prefix.TotalFound)

	var codes []string
	for _, r := range prefix.Results {
		codes = append(codes, r.HSNCode)
	}
	assert.Equal(t, []string{"0101", "01011010", "01011010", "01012000"}, codes)
	// Equal codes keep load order.
	assert.Equal(t, "Live horses", prefix.Results[1].Description)
	assert.Equal(t, "Duplicate horses", prefix.Results[2].Description)
}

func TestLookup_PrefixScenarioThreeCodes(t *testing.T) {
	t.Parallel()

	table := NewTable([]Record{
		{Code: "01012000", Description: "Asses", Rate: mustRate(t, "12")},
		{Code: "0101", Description: "Horses", Rate: mustRate(t, "18")},
		{Code: "01011010", Description: "Live horses", Rate: mustRate(t, "5")},
	})
	res, err := NewSearcher(table).Lookup("0101")
	require.NoError(t, err)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "prefix_search",
		"prefix": "0101",
		"total_found": 3,
		"results": [
			{"hsn_code": "0101", "description": "Horses", "gst_rate": "18%"},
			{"hsn_code": "01011010", "description": "Live horses", "gst_rate": "5%"},
			{"hsn_code": "01012000", "description": "Asses", "gst_rate": "12%"}
		]
	}`, string(body))
}

func TestLookup_PrefixTruncatesToMax(t *testing.T) {
	t.Parallel()

	var records []Record
	for i := 45; i >= 0; i-- {
		records = append(records, Record{
			Code:        fmt.Sprintf("8471%04d", i),
			Description: "Computers",
			Rate:        mustRate(t, "18"),
		})
	}
	records = append(records, Record{Code: "84800000", Description: "Moulds", Rate: mustRate(t, "18")})

	res, err := NewSearcher(NewTable(records)).Lookup("8471")
	require.NoError(t, err)

	prefix := res.(PrefixSearchResult)
	assert.Equal(t, 46, prefix.TotalFound)
	require.Len(t, prefix.Results, MaxPrefixResults)
	assert.Equal(t, "84710000", prefix.Results[0].HSNCode)
	assert.Equal(t, "84710019", prefix.Results[MaxPrefixResults-1].HSNCode)
	for i := 1; i < len(prefix.Results); i++ {
		assert.Less(t, prefix.Results[i-1].HSNCode, prefix.Results[i].HSNCode)
	}
}

func TestLookup_PrefixSortIsTextual(t *testing.T) {
	t.Parallel()

	table := NewTable([]Record{
		{Code: "99019", Description: "b", Rate: mustRate(t, "1")},
		{Code: "990110", Description: "a", Rate: mustRate(t, "1")},
	})
	res, err := NewSearcher(table).Lookup("9901")
	require.NoError(t, err)

	prefix := res.(PrefixSearchResult)
	assert.Equal(t, "990110", prefix.Results[0].HSNCode)
	assert.Equal(t, "99019", prefix.Results[1].HSNCode)
}

func TestLookup_ExactFirstDuplicateWins(t *testing.T) {
	t.Parallel()

	res, err := NewSearcher(fixtureTable(t)).Lookup("01011010")
	require.NoError(t, err)

	exact, ok := res.(ExactSearchResult)
	require.True(t, ok)
	assert.Equal(t, "Live horses", exact.Description)
	assert.Equal(t, "5%", exact.GSTRate)
}

func TestLookup_NonDigitFourCharsIsExact(t *testing.T) {
	t.Parallel()

	res, err := NewSearcher(fixtureTable(t)).Lookup("ABC1")
	require.NoError(t, err)
	assert.Equal(t, ModeExact, res.SearchMode())

	res, err = NewSearcher(fixtureTable(t)).Lookup("123")
	require.NoError(t, err)
	assert.Equal(t, "0.25%", res.(ExactSearchResult).GSTRate)
}

func TestLookup_Failures(t *testing.T) {
	t.Parallel()

	searcher := NewSearcher(fixtureTable(t))
	tests := []struct {
		name       string
		code       string
		wantErr    error
		wantStatus int
		wantBody   string
	}{
		{"missing", "", ErrMissingCode, http.StatusBadRequest, MessageMissingCode},
		{"prefix miss", "9999", ErrPrefixNotFound, http.StatusNotFound, MessagePrefixNotFound},
		{"exact miss", "99999999", ErrCodeNotFound, http.StatusNotFound, MessageCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := searcher.Lookup(tt.code)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)

			status, body := Failure(err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body.Error)
		})
	}
	assert.NotEqual(t, MessagePrefixNotFound, MessageCodeNotFound)
}

func TestLookup_MissingCodeCheckedBeforeTable(t *testing.T) {
	t.Parallel()

	_, err := NewSearcher(nil).Lookup("")
	require.ErrorIs(t, err, ErrMissingCode)
}

func TestLookup_NilTableIsServerError(t *testing.T) {
	t.Parallel()

	_, err := NewSearcher(nil).Lookup("0101")
	require.ErrorIs(t, err, ErrTableNotLoaded)

	status, body := Failure(err)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Server error: code table not loaded", body.Error)
}

func TestFailure_WrappedErrors(t *testing.T) {
	t.Parallel()

	status, _ := Failure(fmt.Errorf("lookup: %w", ErrCodeNotFound))
	assert.Equal(t, http.StatusNotFound, status)

	status, body := Failure(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Server error: boom", body.Error)
}

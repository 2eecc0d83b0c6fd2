package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/hsn-lookup/internal/hsn"
)

const fixtureCSV = "HSN_CD,HSN_Description,Rate\n" +
	"01011010,Live horses,5\n" +
	"01012000,Asses,12\n" +
	"0101,Horses,18\n"

// writeConfig lays down a CSV export and a config file pointing the local
// source at it, returning the config path.
func writeConfig(t *testing.T, object string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hsn_lookup.csv"), []byte(fixtureCSV), 0o600))

	configYAML := fmt.Sprintf(`
logging:
  level: error
source:
  provider: local
  object: %s
  local:
    base_dir: %s
`, object, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLookupCommand_Exact(t *testing.T) {
	out, err := execute(t, "lookup", "--config", writeConfig(t, "hsn_lookup.csv"), "01011010")
	require.NoError(t, err)
	require.JSONEq(t,
		`{"type":"exact_search","hsn_code":"01011010","description":"Live horses","gst_rate":"5%"}`,
		out,
	)
}

func TestLookupCommand_Prefix(t *testing.T) {
	out, err := execute(t, "lookup", "--config", writeConfig(t, "hsn_lookup.csv"), "0101")
	require.NoError(t, err)

	var result hsn.PrefixSearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 3, result.TotalFound)
	require.Len(t, result.Results, 3)
	assert.Equal(t, "0101", result.Results[0].HSNCode)
	assert.Equal(t, "01012000", result.Results[2].HSNCode)
}

func TestLookupCommand_NotFound(t *testing.T) {
	out, err := execute(t, "lookup", "--config", writeConfig(t, "hsn_lookup.csv"), "99999999")
	require.Error(t, err)
	require.ErrorIs(t, err, hsn.ErrCodeNotFound)
	require.JSONEq(t, `{"error":"HSN code not found"}`, out)
}

func TestLookupCommand_LoadFailure(t *testing.T) {
	out, err := execute(t, "lookup", "--config", writeConfig(t, "missing.csv"), "0101")
	require.ErrorContains(t, err, "load code table")
	require.Empty(t, out)
}

func TestLookupCommand_RequiresCode(t *testing.T) {
	_, err := execute(t, "lookup", "--config", writeConfig(t, "hsn_lookup.csv"))
	require.Error(t, err)
}

func TestServeCommand_FailsWithoutTable(t *testing.T) {
	_, err := execute(t, "serve", "--config", writeConfig(t, "missing.csv"))
	require.ErrorContains(t, err, "startup")
}

func TestRootCommand_BadConfig(t *testing.T) {
	_, err := execute(t, "lookup", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "0101")
	require.ErrorContains(t, err, "read config")
}

func TestResolveRuntime_Missing(t *testing.T) {
	_, err := resolveRuntime(context.Background())
	require.Error(t, err)
}

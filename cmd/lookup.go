package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/hsn-lookup/internal/app"
	"github.com/JakeFAU/hsn-lookup/internal/hsn"
)

// newLookupCmd creates the 'lookup' subcommand, which runs one search
// against the configured source and prints the same JSON the HTTP API returns.
func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <hsn_code>",
		Short: "Search the code table once and print the JSON result",
		Args:  cobra.ExactArgs(1),
		RunE:  runLookupCommand,
	}
}

func runLookupCommand(cmd *cobra.Command, args []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	loadCtx, cancel := context.WithTimeout(ctx, rt.cfg.LoadTimeout())
	defer cancel()
	table, err := app.LoadTable(loadCtx, rt.cfg, rt.logger.Named("loader"))
	if err != nil {
		return fmt.Errorf("load code table: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	result, err := hsn.NewSearcher(table).Lookup(args[0])
	if err != nil {
		status, body := hsn.Failure(err)
		if encErr := enc.Encode(body); encErr != nil {
			return fmt.Errorf("write result: %w", encErr)
		}
		return fmt.Errorf("lookup %q: status %d: %w", args[0], status, err)
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

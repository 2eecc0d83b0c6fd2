package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/hsn-lookup/internal/app"
)

// newServeCmd creates the 'serve' subcommand.
// It loads the code table and blocks serving HTTP until SIGINT or SIGTERM.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the code table and serve lookups over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCommand,
	}
}

func runServeCommand(cmd *cobra.Command, _ []string) error {
	rt, err := resolveRuntime(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, rt.cfg, rt.logger)
	if err != nil {
		rt.logger.Error("failed to load code table", zap.Error(err))
		return fmt.Errorf("startup: %w", err)
	}
	return application.Run(ctx)
}

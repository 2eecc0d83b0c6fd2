// Package app loads the code table and runs the HTTP server. It is the
// composition root shared by the serve and lookup commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/hsn-lookup/internal/api"
	"github.com/JakeFAU/hsn-lookup/internal/config"
	"github.com/JakeFAU/hsn-lookup/internal/hsn"
	"github.com/JakeFAU/hsn-lookup/internal/loader"
	"github.com/JakeFAU/hsn-lookup/internal/metrics"
	"github.com/JakeFAU/hsn-lookup/internal/storage/gcs"
	"github.com/JakeFAU/hsn-lookup/internal/storage/local"
	"github.com/JakeFAU/hsn-lookup/internal/storage/postgres"
)

// App holds the loaded table and the HTTP server built around it.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	table  *hsn.Table
	server *http.Server
}

// New loads the code table and builds the HTTP server. A load failure is
// returned as-is; the caller must not start serving without a table.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.LoadTimeout())
	defer cancel()
	table, err := LoadTable(loadCtx, cfg, logger.Named("loader"))
	if err != nil {
		return nil, err
	}
	metrics.Init()
	metrics.SetTableRows(table.Len())

	apiServer := api.NewServer(table, api.Options{MetricsEnabled: cfg.Metrics.Enabled}, logger.Named("api"))
	return &App{
		cfg:    cfg,
		logger: logger,
		table:  table,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           apiServer.Handler(),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout(),
		},
	}, nil
}

// Table returns the loaded code table.
func (a *App) Table() *hsn.Table {
	return a.table
}

// Run listens on the configured port and serves until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts the
// server down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout())
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.logger.Info("shutdown complete")
	return err
}

// LoadTable builds the code table from the source named by
// cfg.Source.Provider. Source clients are released before it returns.
func LoadTable(ctx context.Context, cfg config.Config, logger *zap.Logger) (*hsn.Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	src := cfg.Source

	switch src.Provider {
	case config.ProviderGCS:
		gcsCfg := gcs.Config{Bucket: src.GCS.Bucket, Endpoint: src.GCS.Endpoint}
		client, err := gcs.NewClient(ctx, gcsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS source: %w", err)
		}
		defer func() {
			if cerr := client.Close(); cerr != nil {
				logger.Warn("gcs client close failed", zap.Error(cerr))
			}
		}()
		store, err := gcs.New(client, gcsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS source: %w", err)
		}
		logger.Info("loading table", zap.String("uri", store.URI(src.Object)))
		return loader.FromObject(ctx, store, src.Object, logger)

	case config.ProviderLocal:
		store, err := local.New(local.Config{BaseDir: src.Local.BaseDir})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local source: %w", err)
		}
		logger.Info("loading table", zap.String("uri", store.URI(src.Object)))
		return loader.FromObject(ctx, store, src.Object, logger)

	case config.ProviderPostgres:
		store, err := postgres.NewCodeStore(ctx, postgres.CodeStoreConfig{
			DSN:      src.Postgres.DSN,
			Table:    src.Postgres.Table,
			MaxConns: src.Postgres.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres source: %w", err)
		}
		defer store.Close()
		logger.Info("loading table", zap.String("table", src.Postgres.Table))
		return loader.FromRecords(ctx, store, logger)

	default:
		return nil, fmt.Errorf("unknown source provider: %s", src.Provider)
	}
}

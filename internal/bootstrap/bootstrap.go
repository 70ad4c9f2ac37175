// Package bootstrap builds the stores and services shared by the server
// and the CLI from a loaded configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cupcake005/sku-app/config"
	"github.com/Cupcake005/sku-app/internal/domain"
	"github.com/Cupcake005/sku-app/internal/infrastructure/blob"
	"github.com/Cupcake005/sku-app/internal/infrastructure/store"
	"github.com/Cupcake005/sku-app/internal/infrastructure/supabase"
	"github.com/Cupcake005/sku-app/internal/usecase"
)

// App holds the wired services. Close releases pools and clients.
type App struct {
	Catalog    *usecase.CatalogService
	ExportList *usecase.ExportListService
	Scan       *usecase.ScanService

	closers []func()
}

// Close releases every resource opened by New, in reverse order
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New connects the configured stores and builds the services
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	catalogStore, err := app.catalogStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	blobs, err := app.blobStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Catalog = usecase.NewCatalogService(catalogStore, usecase.CatalogServiceConfig{
		Uppercase: cfg.Catalog.Uppercase,
	})
	app.ExportList = usecase.NewExportListService(blobs, usecase.ExportListServiceConfig{
		Key: cfg.ExportList.Key,
	})
	app.Scan = usecase.NewScanService(app.Catalog, app.ExportList)

	return app, nil
}

func (a *App) catalogStore(ctx context.Context, cfg *config.Config) (domain.CatalogStore, error) {
	switch cfg.Store.Type {
	case "postgres":
		poolConfig, err := pgxpool.ParseConfig(cfg.Store.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}
		if cfg.Store.MaxConns > 0 {
			poolConfig.MaxConns = int32(cfg.Store.MaxConns)
		}

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}

		pg := store.NewPostgresStore(pool, cfg.Store.Table)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		slog.Info("catalog store ready", "type", "postgres", "table", cfg.Store.Table)
		return pg, nil

	case "supabase":
		client := supabase.NewClient(supabase.Config{
			BaseURL:           cfg.Store.SupabaseURL,
			APIKey:            cfg.Store.SupabaseKey,
			Table:             cfg.Store.Table,
			Timeout:           cfg.Store.Timeout,
			RequestsPerSecond: cfg.Store.RequestsPerSecond,
		})
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
		}
		slog.Info("catalog store ready", "type", "supabase", "url", cfg.Store.SupabaseURL)
		return client, nil

	default:
		slog.Warn("catalog store is in memory; data is lost on restart")
		return store.NewMemoryStore(), nil
	}
}

func (a *App) blobStore(ctx context.Context, cfg *config.Config) (domain.BlobStore, error) {
	switch cfg.ExportList.Type {
	case "file":
		fs, err := blob.NewFileStore(cfg.ExportList.Dir)
		if err != nil {
			return nil, err
		}
		slog.Info("export list store ready", "type", "file", "dir", cfg.ExportList.Dir)
		return fs, nil

	case "redis":
		rs, err := blob.NewRedisStoreFromURL(ctx, cfg.ExportList.RedisURL, "sku-app:")
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { rs.Close() })
		slog.Info("export list store ready", "type", "redis")
		return rs, nil

	default:
		return blob.NewMemoryStore(), nil
	}
}

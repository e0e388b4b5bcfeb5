package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sagarc03/sharelink"
	"github.com/sagarc03/sharelink/config"
	"github.com/sagarc03/sharelink/database"
	"github.com/sagarc03/sharelink/filesystem"
	"github.com/sagarc03/sharelink/keybackend"
)

// app holds what every service-backed command opens, and closes it in reverse order.
type app struct {
	service *sharelink.Service
	cache   *database.CachedStore
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type openOptions struct {
	migrate       bool
	createStorage bool
}

// openDatabase connects, optionally migrates, and validates the schema.
func openDatabase(ctx context.Context, cfg *config.Config, migrate bool) (database.Database, error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err = db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if migrate {
		if err = db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("database migration complete")
	}

	if err = db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("validate database schema: %w", err)
	}

	return db, nil
}

func openStorage(cfg *config.Config, create bool) (*os.Root, error) {
	if create {
		if err := os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	} else if _, err := os.Stat(cfg.Storage.Path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("storage directory does not exist: %s", cfg.Storage.Path)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage root: %w", err)
	}
	return root, nil
}

// openApp wires the metadata store, the content store and the signing secret into a Service.
func openApp(ctx context.Context, cfg *config.Config, opts openOptions) (*app, error) {
	a := &app{}

	secret, err := keybackend.LoadSecret(cfg.Links.Secret)
	if err != nil {
		return nil, fmt.Errorf("load signing secret: %w", err)
	}

	signer, err := sharelink.NewSigner(secret)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	db, err := openDatabase(ctx, cfg, opts.migrate)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = db.Close() })
	slog.Info("connected to database", "type", cfg.Database.Type)

	repo := db.GetRepo()
	if cfg.Cache.Enabled {
		a.cache = database.NewCachedStore(repo, cfg.Cache.Size, cfg.Cache.TTL())
		repo = a.cache
		slog.Debug("file record cache enabled", "size", cfg.Cache.Size, "ttl", cfg.Cache.TTL())
	}

	root, err := openStorage(cfg, opts.createStorage)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = root.Close() })

	service, err := sharelink.NewService(repo, filesystem.NewFileStorage(root), signer, sharelink.ServiceConfig{
		MaxUploadSize:  cfg.Storage.MaxUploadSize,
		Policy:         cfg.Links.Policy(),
		CleanupTimeout: cfg.Service.CleanupTimeoutDuration(),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create service: %w", err)
	}
	a.service = service

	return a, nil
}

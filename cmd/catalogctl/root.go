package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medwayhorizons/healthbridge/internal/config"
	dbRedis "github.com/medwayhorizons/healthbridge/internal/db/redis"
	logpkg "github.com/medwayhorizons/healthbridge/internal/logger"
	"github.com/medwayhorizons/healthbridge/internal/repository/record"
	"github.com/medwayhorizons/healthbridge/internal/sanitize"
	adminuc "github.com/medwayhorizons/healthbridge/internal/usecase/admin"
	cataloguc "github.com/medwayhorizons/healthbridge/internal/usecase/catalog"
)

type services struct {
	catalog *cataloguc.Service
	admin   *adminuc.Service
}

type app struct {
	env  string
	out  io.Writer
	open func(ctx context.Context, env string) (*services, func(), error)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Manage the healthbridge catalog",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&a.env, "env", "e", config.GetEnv(), "config environment (config/{env}.yaml)")
	root.SetOut(a.out)

	root.AddCommand(importCmd(a), listCmd(a), queryCmd(a), seedCmd(a))
	return root
}

// withServices opens the store for one command run.
func (a *app) withServices(ctx context.Context, fn func(*services) error) error {
	svc, closeFn, err := a.open(ctx, a.env)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(svc)
}

func openServices(ctx context.Context, env string) (*services, func(), error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Debug("connected", zap.Strings("addrs", cfg.Database.Addrs))

	repo := record.New(store, cfg.Storage.KeyPrefix)
	catalogSvc := cataloguc.New(repo, logger).
		WithNotifier(cataloguc.ContextNotifier{}).
		WithPageSizes(cfg.Catalog.InitialPageSize, cfg.Catalog.PageIncrement)
	adminSvc := adminuc.New(repo, sanitize.NewHTML(), logger).
		WithInvalidator(catalogSvc).
		WithMaxImportRows(cfg.Catalog.MaxImportRows)

	closeFn := func() {
		store.Close()
		_ = logger.Sync()
	}
	return &services{catalog: catalogSvc, admin: adminSvc}, closeFn, nil
}

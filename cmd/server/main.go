package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/guilteater/backend/auth"
	"github.com/guilteater/backend/auth/google"
	"github.com/guilteater/backend/config"
	"github.com/guilteater/backend/ledger"
	"github.com/guilteater/backend/linking"
	"github.com/guilteater/backend/migrations"
	"github.com/guilteater/backend/server"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("guilteater"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
	logger := lgr.GetLogger("main")

	if err := run(lgr); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(lgr *glog.BaseLogger) error {
	logger := lgr.GetLogger("main")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DatabaseURL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx := context.Background()
	if err := runMigrations(ctx, db, lgr.GetLogger("migrate")); err != nil {
		return err
	}

	verifier, err := google.NewVerifier(google.Config{
		ClientID: cfg.GoogleClientID,
		JWKSURL:  cfg.GoogleJWKSURL,
		Logger:   lgr.GetLogger("google"),
	})
	if err != nil {
		return err
	}
	defer verifier.Close()

	repo := auth.NewRepositoryManager(db)
	authenticator := auth.NewAuthenticator(verifier, repo, cfg).
		WithLogger(lgr.GetLogger("auth"))

	registry := linking.NewRegistry(
		linking.NewCodesRepository(db),
		repo.Accounts(),
		repo,
		linking.WithLogger(lgr.GetLogger("linking")),
	)

	ledgerSvc := ledger.NewService(
		ledger.NewStore(db),
		repo,
		ledger.WithLogger(lgr.GetLogger("ledger")),
	)

	srv := server.New(server.Deps{
		Logger:           lgr.GetLogger("http"),
		Authenticator:    authenticator,
		Tokens:           authenticator.TokenService(),
		Accounts:         repo.Accounts(),
		Linking:          registry,
		Ledger:           ledgerSvc,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr)
		errCh <- srv.Listen(cfg.HTTPAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		return srv.Shutdown()
	}
}

func runMigrations(ctx context.Context, db *bun.DB, logger glog.Logger) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to init migrations")
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to run migrations")
	}

	if group.IsZero() {
		logger.Info("database schema up to date")
		return nil
	}

	logger.Info("migrated", "group", group.String())
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/disburse/internal/backend"
	"github.com/alexanderramin/disburse/internal/cli"
	"github.com/alexanderramin/disburse/internal/config"
	"github.com/alexanderramin/disburse/internal/db"
	"github.com/alexanderramin/disburse/internal/logging"
	"github.com/alexanderramin/disburse/internal/repository"
	"github.com/alexanderramin/disburse/internal/service"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("DISBURSE_CONFIG")
	if configPath == "" {
		configPath = config.Path()
	}
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log, cli.VerboseRequested(os.Args[1:]))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	logger.Debug("opened draft workspace", zap.String("path", dbPath))

	// Wire repositories
	draftRepo := repository.NewSQLiteDraftRepo(database)
	runRepo := repository.NewSQLiteValidationRunRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Submission stays disabled until a backend is configured. The interface
	// must stay nil in that case, not hold a nil *HTTPSubmitter.
	var submitter backend.PlanSubmitter
	if cfg.Backend.BaseURL != "" {
		submitter = backend.NewHTTPSubmitter(backend.Config{
			BaseURL:    cfg.Backend.BaseURL,
			Token:      cfg.Backend.Token,
			Timeout:    time.Duration(cfg.Backend.TimeoutMs) * time.Millisecond,
			MaxRetries: cfg.Backend.MaxRetries,
		}, logger)
	}

	app := &cli.App{
		Plans: service.NewPlanService(
			draftRepo,
			runRepo,
			uow,
			cfg.CurrencyInfo(),
			submitter,
			service.NewZapUseCaseObserver(logger),
		),
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger,
	}

	// Detect interactive terminal for the draft wizard.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	reportapp "github.com/dealer/reporting/internal/application/report"
	"github.com/dealer/reporting/internal/infrastructure/config"
	"github.com/dealer/reporting/internal/infrastructure/logger"
	"github.com/dealer/reporting/internal/infrastructure/persistence"
	"github.com/dealer/reporting/internal/interfaces/cli"
	"github.com/dealer/reporting/internal/interfaces/cli/commands"
	"go.uber.org/zap"
)

func main() {
	var db *persistence.Database
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	// stdout carries the rendered report
	log, err := logger.New(&logger.Config{
		Level:      "warn",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	factory := func(ctx context.Context) (commands.Engine, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		db, err = persistence.NewDatabase(&cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Debug("Connected", zap.String("driver", cfg.Database.Driver))

		return reportapp.NewEngine(
			persistence.NewGormReportConfigRepository(db.DB),
			persistence.NewGormLineValueRepository(db.DB),
			persistence.NewGormStoreDirectory(db.DB),
			persistence.NewAnalyticQueryRepository(db.DB),
			reportapp.WithLogger(log),
			reportapp.WithRandSource(rand.NewSource(cfg.Engine.RandomSeed)),
			reportapp.WithTrendMonths(cfg.Engine.TrendMonths),
			reportapp.WithDefaultLinesQty(cfg.Engine.DefaultLinesQty),
			reportapp.WithChargebackReport(cfg.Engine.ChargebackReportID),
		), nil
	}

	if err := cli.NewCLI(cli.Options{Engine: factory}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if db != nil {
			_ = db.Close()
		}
		os.Exit(1)
	}
}

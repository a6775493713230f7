package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/UnknownOlympus/kmlforge/internal/config"
	"github.com/UnknownOlympus/kmlforge/internal/metrics"
	"github.com/UnknownOlympus/kmlforge/internal/service"
	"github.com/UnknownOlympus/kmlforge/internal/spreadsheet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics of this run.
	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)

	batch := service.NewBatchService(
		logger,
		spreadsheet.NewReader(cfg.LabelColumn, cfg.NoteColumn, logger),
		spreadsheet.NewWriter(cfg.LabelColumn, cfg.NoteColumn),
		appMetrics,
	)

	report, runErr := run(ctx, cfg, batch)
	fmt.Fprint(os.Stdout, report.Summary())

	if cfg.MetricsFile != "" {
		if err = prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			logger.ErrorContext(ctx, "Failed to write metrics file", "file", cfg.MetricsFile, "error", err)
		}
	}

	if runErr != nil {
		stop()
		log.Fatalf("kmlforge %s failed: %v", report.Operation, runErr)
	}
}

// run dispatches to the batch operation selected by cfg. Merge takes precedence over
// ToTable, which takes precedence over KML generation.
func run(ctx context.Context, cfg *config.Config, batch *service.BatchService) (service.Report, error) {
	switch {
	case cfg.Merge && len(cfg.Files) > 0:
		output := cfg.Output
		if output == "" {
			output = filepath.Join(cfg.Dir, service.MergedMarkupName)
		}
		return batch.Combine(ctx, cfg.Files, output)
	case cfg.Merge:
		return batch.CombineDirectory(ctx, cfg.Dir, cfg.Output)
	case cfg.ToTable:
		return batch.ExtractTables(ctx, service.Options{Dir: cfg.Dir, TableFormat: cfg.TableFormat})
	default:
		return batch.GenerateMarkup(ctx, service.Options{Dir: cfg.Dir, Combine: cfg.Combine})
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

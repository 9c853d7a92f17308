// Command cnpjenrich enriches a CRM export of company CNPJs with registry
// data from the CNPJá API and writes the merged table back to disk.
//
// A normal run reads INPUT_CSV and overwrites OUTPUT_CSV in full. With
// -reprocess, the previous output file is both input and merge target:
// only rows whose api_success is not true are resubmitted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"cnpjenrich/dataset"
	"cnpjenrich/enrichment"
	"cnpjenrich/internal/config"
	"cnpjenrich/internal/logging"
	"cnpjenrich/ratelimit"
)

func main() {
	var (
		input      = flag.String("input", "", "input CSV path (overrides INPUT_CSV)")
		output     = flag.String("output", "", "output path, .csv/.xlsx/.json (overrides OUTPUT_CSV)")
		column     = flag.String("column", "", "identifier column name (overrides CNPJ_COLUMN)")
		startIndex = flag.Int("start-index", -1, "row index to resume from (overrides START_INDEX)")
		reprocess  = flag.Bool("reprocess", false, "re-run only previously failed rows of the output file")
	)
	flag.Parse()

	cfg := config.LoadConfig()
	if *input != "" {
		cfg.InputPath = *input
	}
	if *output != "" {
		cfg.OutputPath = *output
	}
	if *column != "" {
		cfg.CNPJColumn = *column
	}
	if *startIndex >= 0 {
		cfg.StartIndex = *startIndex
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, *reprocess, logger); err != nil {
		logger.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, reprocess bool, logger *slog.Logger) error {
	limiter, err := ratelimit.NewWindowLimiter(cfg.MaxRequestsPerMinute, time.Minute)
	if err != nil {
		return err
	}

	client := enrichment.NewClient(enrichment.ClientOptions{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.RequestTimeout,
		RetryMax:       cfg.RetryMax,
		RetryMax429:    cfg.RetryMax429,
		BackoffInitial: cfg.BackoffInitial,
		BackoffMax:     cfg.BackoffMax,
	}, limiter)

	orch := enrichment.NewOrchestrator(client, enrichment.OrchestratorOptions{
		CNPJColumn:  cfg.CNPJColumn,
		OutputPath:  cfg.OutputPath,
		PacingDelay: cfg.PacingDelay,
		Logger:      logger,
	})

	if reprocess {
		if dataset.FormatForPath(cfg.OutputPath) != dataset.FormatCSV {
			return fmt.Errorf("reprocess reads the previous output back in and requires a CSV destination, got %q", cfg.OutputPath)
		}
		t, err := dataset.ReadCSV(cfg.OutputPath)
		if err != nil {
			return err
		}
		return orch.Reprocess(ctx, t)
	}

	t, err := dataset.ReadCSV(cfg.InputPath)
	if err != nil {
		return err
	}
	return orch.Run(ctx, t, cfg.StartIndex)
}

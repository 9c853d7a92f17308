package enrichment

import (
	"log/slog"
	"time"
)

// Structured progress events for the batch, one vocabulary for run and
// reprocess passes.

func logStart(logger *slog.Logger, runID string, total, startIndex int) {
	logger.Info("Enrichment started",
		"run_id", runID,
		"total_rows", total,
		"start_index", startIndex,
	)
}

func logProgress(logger *slog.Logger, runID string, processed, total int) {
	logger.Debug("Enrichment progress",
		"run_id", runID,
		"processed", processed+1,
		"total", total,
	)
}

func logRowError(logger *slog.Logger, runID string, row int, identifier, kind string) {
	logger.Warn("Row lookup failed",
		"run_id", runID,
		"row", row,
		"identifier", identifier,
		"error_kind", kind,
	)
}

func logComplete(logger *slog.Logger, runID, output string, succeeded, failed int, duration time.Duration) {
	logger.Info("Enrichment completed",
		"run_id", runID,
		"output", output,
		"succeeded", succeeded,
		"failed", failed,
		"duration_ms", duration.Milliseconds(),
	)
}

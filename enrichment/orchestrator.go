package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"cnpjenrich/cnpj"
	"cnpjenrich/dataset"
)

// Technical metadata columns written for every processed row, alongside
// EnrichmentColumns.
const (
	ColSuccess        = "api_success"
	ColHTTPStatus     = "api_http_status"
	ColError          = "api_error"
	ColCNPJOriginal   = "cnpj_original"
	ColCNPJNormalized = "cnpj_normalizado"
)

// OutputColumns returns the full enrichment column set in export order:
// call status first, then the flattened payload fields, then the
// identifier audit columns.
func OutputColumns() []string {
	cols := []string{ColSuccess, ColHTTPStatus, ColError}
	cols = append(cols, EnrichmentColumns...)
	return append(cols, ColCNPJOriginal, ColCNPJNormalized)
}

// OrchestratorOptions configures one batch run.
type OrchestratorOptions struct {
	// CNPJColumn names the identifier column in the input table.
	CNPJColumn string
	// OutputPath is where the merged table is persisted (format by
	// extension, CSV default).
	OutputPath string
	// PacingDelay spaces consecutive lookups, independent of the window
	// ceiling. Zero disables pacing.
	PacingDelay time.Duration
	// Logger receives structured progress events. Nil discards them.
	Logger *slog.Logger
}

// Orchestrator drives the record loop: normalize, throttle, look up,
// extract, merge. A failure in any single record never aborts the batch;
// that isolation is the central reliability contract of the run.
type Orchestrator struct {
	client *Client
	opts   OrchestratorOptions
	pacer  *rate.Limiter
	logger *slog.Logger
	runID  string
}

// NewOrchestrator builds an orchestrator around a lookup client.
func NewOrchestrator(client *Client, opts OrchestratorOptions) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var pacer *rate.Limiter
	if opts.PacingDelay > 0 {
		pacer = rate.NewLimiter(rate.Every(opts.PacingDelay), 1)
	}

	return &Orchestrator{
		client: client,
		opts:   opts,
		pacer:  pacer,
		logger: logger,
		runID:  uuid.New().String(),
	}
}

// Run processes every record from startIndex onward, merges the results
// into the table and persists it in full to the configured destination.
// The returned error covers only setup, cancellation and export problems;
// per-record failures land in the api_* columns.
func (o *Orchestrator) Run(ctx context.Context, t *dataset.Table, startIndex int) error {
	if !t.HasColumn(o.opts.CNPJColumn) {
		return fmt.Errorf("identifier column %q not found in input (columns: %s)",
			o.opts.CNPJColumn, strings.Join(t.Header, ", "))
	}
	if startIndex < 0 || startIndex > t.Len() {
		return fmt.Errorf("start index %d out of range (table has %d rows)", startIndex, t.Len())
	}

	t.EnsureColumns(OutputColumns()...)

	started := time.Now()
	logStart(o.logger, o.runID, t.Len(), startIndex)

	var succeeded, failed int
	for i := startIndex; i < t.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run cancelled at row %d: %w", i, err)
		}
		if o.processRow(ctx, t, i, t.Get(i, o.opts.CNPJColumn)) {
			succeeded++
		} else {
			failed++
		}
		logProgress(o.logger, o.runID, i, t.Len())
	}

	if err := dataset.Export(o.opts.OutputPath, t); err != nil {
		return fmt.Errorf("export enriched table: %w", err)
	}

	logComplete(o.logger, o.runID, o.opts.OutputPath, succeeded, failed, time.Since(started))
	return nil
}

// Reprocess re-runs the pipeline for exactly the rows of a previously
// produced output table whose api_success is not true, updates them in
// place and persists the table again. With zero failed rows the table and
// the destination are left untouched.
func (o *Orchestrator) Reprocess(ctx context.Context, t *dataset.Table) error {
	if !t.HasColumn(ColSuccess) {
		return fmt.Errorf("column %q not found: the table is not a previous enrichment output", ColSuccess)
	}

	var retry []int
	for i := 0; i < t.Len(); i++ {
		if !strings.EqualFold(t.Get(i, ColSuccess), "true") {
			retry = append(retry, i)
		}
	}
	if len(retry) == 0 {
		o.logger.Info("nothing to reprocess, every row already succeeded", "run_id", o.runID)
		return nil
	}

	t.EnsureColumns(OutputColumns()...)

	started := time.Now()
	logStart(o.logger, o.runID, len(retry), 0)

	var succeeded, failed int
	for n, i := range retry {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("reprocess cancelled at row %d: %w", i, err)
		}
		if o.processRow(ctx, t, i, o.reprocessIdentifier(t, i)) {
			succeeded++
		} else {
			failed++
		}
		logProgress(o.logger, o.runID, n, len(retry))
	}

	if err := dataset.Export(o.opts.OutputPath, t); err != nil {
		return fmt.Errorf("export reprocessed table: %w", err)
	}

	logComplete(o.logger, o.runID, o.opts.OutputPath, succeeded, failed, time.Since(started))
	return nil
}

// reprocessIdentifier picks the raw identifier for a retried row: the
// original input column when the output still carries it, otherwise the
// cnpj_original audit column. Normalization is idempotent, so identifiers
// that were valid on the first pass normalize identically here.
func (o *Orchestrator) reprocessIdentifier(t *dataset.Table, row int) string {
	if t.HasColumn(o.opts.CNPJColumn) {
		return t.Get(row, o.opts.CNPJColumn)
	}
	return t.Get(row, ColCNPJOriginal)
}

// processRow runs one record through the pipeline and writes its output
// cells. It reports whether the lookup succeeded.
func (o *Orchestrator) processRow(ctx context.Context, t *dataset.Table, row int, raw string) bool {
	normalized, ok := cnpj.Normalize(raw)
	setCell(t, row, ColCNPJOriginal, raw)
	setCell(t, row, ColCNPJNormalized, normalized)

	if !ok {
		o.writeResult(t, row, failureResult(ErrInvalidFormat, fmt.Sprintf("identifier %q is not a 14-digit CNPJ", raw), 0))
		logRowError(o.logger, o.runID, row, raw, string(ErrInvalidFormat))
		return false
	}
	if !cnpj.ValidCheckDigits(normalized) {
		// Queried anyway: the format contract is digit count, the check
		// digits are only a data-quality signal.
		o.logger.Warn("CNPJ check digits do not verify",
			"run_id", o.runID, "row", row, "cnpj", cnpj.Format(normalized))
	}

	if o.pacer != nil {
		if err := o.pacer.Wait(ctx); err != nil {
			o.writeResult(t, row, failureResult(ErrNetwork, err.Error(), 0))
			return false
		}
	}

	res := o.client.Fetch(ctx, normalized)
	o.writeResult(t, row, res)

	if !res.Success {
		logRowError(o.logger, o.runID, row, normalized, string(res.ErrorKind))
	}
	return res.Success
}

// writeResult merges one lookup result into the table row: call metadata
// plus the extracted fields (all empty on failure, keeping the column set
// stable).
func (o *Orchestrator) writeResult(t *dataset.Table, row int, res Result) {
	setCell(t, row, ColSuccess, strconv.FormatBool(res.Success))
	if res.HTTPStatus != 0 {
		setCell(t, row, ColHTTPStatus, strconv.Itoa(res.HTTPStatus))
	} else {
		setCell(t, row, ColHTTPStatus, "")
	}
	setCell(t, row, ColError, string(res.ErrorKind))

	fields := EmptyFields()
	if res.Success {
		fields = Extract(res.Payload)
	}
	for col, v := range fields {
		setCell(t, row, col, v)
	}
}

// setCell writes a cell whose column was added by EnsureColumns; the
// lookup cannot fail after that.
func setCell(t *dataset.Table, row int, col, v string) {
	_ = t.Set(row, col, v)
}

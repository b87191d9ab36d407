// Package pipeline provides the high-level orchestration of a build: fetch
// the archive, normalize the selected files, expand, export and store.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/unihan-tabular/internal/config"
	"github.com/jonathan/unihan-tabular/internal/db"
	"github.com/jonathan/unihan-tabular/internal/expansion"
	"github.com/jonathan/unihan-tabular/internal/export"
	"github.com/jonathan/unihan-tabular/internal/fetch"
	"github.com/jonathan/unihan-tabular/internal/grammar"
	"github.com/jonathan/unihan-tabular/internal/logging"
	"github.com/jonathan/unihan-tabular/internal/manifest"
	"github.com/jonathan/unihan-tabular/internal/normalize"
	"github.com/jonathan/unihan-tabular/internal/observability"
	"github.com/jonathan/unihan-tabular/internal/pipeline/steps"
	"github.com/jonathan/unihan-tabular/internal/schemas"
	"github.com/jonathan/unihan-tabular/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Config     config.Config
	Manifest   manifest.Manifest    // defaults to manifest.Default
	Fetcher    *fetch.CachedFetcher // defaults to a fetcher with default settings
	Out        io.Writer            // verbose output, defaults to stdout
	OnProgress ProgressCallback
}

// Result describes a finished build
type Result struct {
	RunID        uuid.UUID
	Steps        []string
	Selection    manifest.Selection
	Records      []types.Record
	Expanded     bool
	Lines        int
	Malformed    []*normalize.MalformedLineError
	DecodeErrors []error
	Pruned       int
	Output       string
	FromCache    bool
	Validated    bool
	Stored       int64
	Duration     time.Duration
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID uuid.UUID, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: steps.StepRegistry[step].Category,
			Message:  message,
			RunID:    runID.String(),
			Content:  content,
		})
	}
}

// Run executes a build described by opts.Config. Values are expanded
// unless NoExpand is set or the format is csv, and empty expanded values
// are pruned unless NoPrune is set. Output is written when Destination is
// set and stored when DatabaseURL is set.
func Run(ctx context.Context, opts RunOptions) (*Result, error) {
	start := time.Now()
	cfg := opts.Config
	m := opts.Manifest
	if m == nil {
		m = manifest.Default
	}

	runID := uuid.New()
	ctx = logging.ContextWithRunID(ctx, runID.String())
	logger := logging.FromContext(ctx)

	sel, err := m.Resolve(cfg.Fields, cfg.InputFiles)
	if err != nil {
		return nil, err
	}

	format := cfg.Format
	if format == "" {
		format = export.FormatCSV
	}
	expand := !cfg.NoExpand && format != export.FormatCSV
	if expand {
		if err := grammar.Validate(sel.Fields); err != nil {
			return nil, err
		}
	}

	validate := cfg.ValidateOutput && format == export.FormatJSON
	if cfg.ValidateOutput && !validate {
		logger.Warn("output validation only applies to json output, skipping", "format", format)
	}
	plan, err := steps.Plan(steps.PlanOptions{
		Expand:   expand,
		Prune:    expand && !cfg.NoPrune,
		Export:   cfg.Destination != "",
		Validate: validate && cfg.Destination != "",
		Store:    cfg.DatabaseURL != "",
	})
	if err != nil {
		return nil, err
	}
	enabled := make(map[string]bool, len(plan))
	for _, name := range plan {
		enabled[name] = true
	}

	result := &Result{RunID: runID, Steps: plan, Selection: sel, Expanded: expand}
	logger.Info("starting build", "files", sel.Files, "fields", len(sel.Fields), "format", format, "expand", expand)

	// Step 1: fetch the archive
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fetch.NewCachedFetcher(nil)
	}
	source := cfg.SourceURL()
	fetched, err := fetcher.Fetch(ctx, source, cfg.ZipPath)
	if err != nil {
		return nil, fmt.Errorf("fetching %s failed: %w", source, err)
	}
	result.FromCache = fetched.FromCache
	emitProgress(&opts, runID, steps.StepFetch, fmt.Sprintf("Archive ready at %s", cfg.ZipPath), nil)

	// Step 2: extract the selected files
	if fetched.FromCache && fetch.FilesExist(cfg.WorkDir, sel.Files) {
		logger.Info("source files already extracted", "work_dir", cfg.WorkDir)
	} else {
		written, err := fetch.Extract(cfg.ZipPath, cfg.WorkDir, sel.Files)
		if err != nil {
			return nil, fmt.Errorf("extracting %s failed: %w", cfg.ZipPath, err)
		}
		logger.Info("extracted source files", "work_dir", cfg.WorkDir, "files", written)
	}
	emitProgress(&opts, runID, steps.StepExtract, fmt.Sprintf("Extracted %d files", len(sel.Files)), sel.Files)

	// Step 3: normalize
	readers, closeAll, err := fetch.OpenFiles(cfg.WorkDir, sel.Files)
	if err != nil {
		return nil, err
	}
	defer closeAll()
	sources := make([]normalize.Source, len(sel.Files))
	for i, name := range sel.Files {
		sources[i] = normalize.Source{Name: name, Reader: readers[i]}
	}
	norm, err := normalize.Options{NFC: cfg.NFC}.Normalize(ctx, sel.Fields, sources...)
	if err != nil {
		return nil, fmt.Errorf("normalization failed: %w", err)
	}
	result.Lines = norm.Lines
	result.Malformed = norm.Malformed
	if len(norm.Malformed) > 0 {
		logger.Warn("skipped malformed lines", "count", len(norm.Malformed))
	}
	logger.Info("normalized records", "lines", norm.Lines, "records", len(norm.Records))
	emitProgress(&opts, runID, steps.StepNormalize,
		fmt.Sprintf("Read %d lines into %d records", norm.Lines, len(norm.Records)), nil)

	// Step 4: expand
	var records []types.Record
	if enabled[steps.StepExpand] {
		policy, err := expansion.ParsePolicy(cfg.OnDecodeError)
		if err != nil {
			return nil, err
		}
		engine := &expansion.Engine{Workers: cfg.Workers, Policy: policy}
		expanded, report, err := engine.ExpandAll(ctx, norm.Records)
		if err != nil {
			return nil, fmt.Errorf("expansion failed: %w", err)
		}
		records = expanded
		result.DecodeErrors = report.Errors
		logger.Info("expanded records", "records", report.Records, "values", report.Fields, "skipped", len(report.Errors))
		emitProgress(&opts, runID, steps.StepExpand,
			fmt.Sprintf("Decoded %d values", report.Fields), report)
	} else {
		records = expansion.FromRawAll(norm.Records)
	}

	// Step 5: prune
	if enabled[steps.StepPrune] {
		result.Pruned = expansion.Prune(records)
		logger.Debug("pruned empty values", "count", result.Pruned)
		emitProgress(&opts, runID, steps.StepPrune, fmt.Sprintf("Pruned %d empty values", result.Pruned), nil)
	}
	result.Records = records

	// Step 6: export
	if enabled[steps.StepExport] {
		output := cfg.OutputPath()
		if err := export.WriteFile(output, format, sel.Fields, records); err != nil {
			return nil, err
		}
		result.Output = output
		logger.Info("wrote output", "path", output, "format", format, "records", len(records))
		emitProgress(&opts, runID, steps.StepExport, fmt.Sprintf("Wrote %d records to %s", len(records), output), nil)
	}

	// Step 7: validate the JSON output
	if enabled[steps.StepValidate] {
		if err := schemas.ValidateRecordsFile(result.Output); err != nil {
			return nil, fmt.Errorf("output %s does not match the record schema: %w", result.Output, err)
		}
		result.Validated = true
		emitProgress(&opts, runID, steps.StepValidate, "Output matches the record schema", nil)
	}

	// Step 8: store
	if enabled[steps.StepStore] {
		stored, err := store(ctx, cfg.DatabaseURL, runID, db.RunInput{
			Source:   source,
			Format:   format,
			Expanded: expand,
			Fields:   sel.Fields,
		}, records)
		if err != nil {
			return nil, err
		}
		result.Stored = stored
		if stored > 0 {
			emitProgress(&opts, runID, steps.StepStore, fmt.Sprintf("Stored %d records", stored), nil)
		}
	}

	result.Duration = time.Since(start)
	logger.Info("build complete", "records", len(records), "duration", result.Duration)

	if cfg.Verbose {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		printer := observability.NewPrinter(out)
		printer.PrintBuildSummary(summarize(result, source, format))
		if expand {
			printer.PrintDecodeErrors(result.DecodeErrors)
		}
	}

	return result, nil
}

// store saves records as a database run. A database that cannot be reached
// is logged and skipped.
func store(ctx context.Context, databaseURL string, runID uuid.UUID, input db.RunInput, records []types.Record) (int64, error) {
	logger := logging.FromContext(ctx)

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		logger.Warn("continuing without database persistence", "error", err)
		return 0, nil
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	if err := database.CreateRun(ctx, runID, input); err != nil {
		return 0, err
	}
	n, err := database.SaveCharacters(ctx, runID, records)
	if err != nil {
		_ = database.CompleteRun(ctx, runID, db.RunStatusFailed, 0)
		return 0, err
	}
	if err := database.CompleteRun(ctx, runID, db.RunStatusCompleted, int(n)); err != nil {
		return n, err
	}
	logger.Info("stored records", "rows", n)
	return n, nil
}

func summarize(r *Result, source, format string) *observability.BuildSummary {
	return &observability.BuildSummary{
		RunID:        r.RunID.String(),
		Source:       source,
		FromCache:    r.FromCache,
		Files:        r.Selection.Files,
		Lines:        r.Lines,
		Malformed:    len(r.Malformed),
		Records:      len(r.Records),
		Fields:       len(r.Selection.Fields),
		Expanded:     r.Expanded,
		Pruned:       r.Pruned,
		DecodeErrors: len(r.DecodeErrors),
		Output:       r.Output,
		Format:       format,
		Stored:       r.Stored,
		Validated:    r.Validated,
		Duration:     r.Duration,
	}
}

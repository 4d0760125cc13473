package chunk

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-doc-chunker/internal/common"
	"github.com/dtnitsch/llm-doc-chunker/internal/fetch"
	"github.com/dtnitsch/llm-doc-chunker/models"
	"github.com/dtnitsch/llm-doc-chunker/pkg/artifact_manager"
	"github.com/dtnitsch/llm-doc-chunker/pkg/db"
	"github.com/dtnitsch/llm-doc-chunker/pkg/fetcher"
	"github.com/dtnitsch/llm-doc-chunker/pkg/manifest"
	"github.com/dtnitsch/llm-doc-chunker/pkg/parser"
)

// ChunkAction fetches, converts and chunks every reference, then writes chunk
// files, the SQLite export and summary.yaml under --output-dir.
func ChunkAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	startTime := time.Now()

	cfg, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit(err.Error(), common.ExitFailed)
	}
	chunkCfg := cfg.Chunker.WithDefaults()

	manager, err := artifact_manager.NewManager(c.String("output-dir"))
	if err != nil {
		logger.Error("failed to initialize artifact manager", "error", err)
		return cli.Exit(err.Error(), common.ExitFailed)
	}

	f := fetcher.NewFetcher(cfg.Fetch, fetcher.WithLogger(logger))
	refs, err := fetch.LoadReferences(c, f, logger)
	if err != nil {
		code := common.ExitFailed
		if errors.Is(err, fetch.ErrNoReferences) || errors.Is(err, fetch.ErrMalformedURL) {
			code = common.ExitPartial
		}
		return cli.Exit("Error: "+err.Error(), code)
	}

	var progress io.Writer
	if !c.Bool("quiet") {
		progress = c.App.ErrWriter
	}
	runID, docs, err := fetch.Run(c.Context, f, logger, cfg.Fetch, refs, progress)
	if err != nil {
		return cli.Exit(err.Error(), common.ExitFailed)
	}

	logger.Info("Starting convert and chunk phase", "run_id", runID, "documents", len(docs), "max_tokens", chunkCfg.MaxTokens)
	results, err := Process(c.Context, parser.New(), docs, chunkCfg, cfg.Fetch.WorkerCount)
	if err != nil {
		return cli.Exit(err.Error(), common.ExitFailed)
	}

	for i := range results {
		r := &results[i]
		if r.Failure() != "" {
			logger.Warn("Document failed", "url", r.Document.Reference.Locator, "error", r.Failure())
			continue
		}
		r.Dir, err = manager.WriteDocument(r.Document, r.Page, r.Chunks)
		if err != nil {
			logger.Error("failed to write chunks", "url", r.Document.Reference.Locator, "error", err)
			return cli.Exit(err.Error(), common.ExitFailed)
		}
	}

	if !c.Bool("no-db") {
		dbPath := filepath.Join(manager.BaseDir(), db.DefaultDBName)
		if err := exportDB(logger, dbPath, runID, startTime, chunkCfg, results); err != nil {
			logger.Error("failed to export chunk database", "path", dbPath, "error", err)
			return cli.Exit(err.Error(), common.ExitFailed)
		}
	}

	summary := manifest.GenerateSummary(runID, results, chunkCfg.TargetTokens)
	summaryPath, err := manifest.WriteSummary(manager.BaseDir(), summary)
	if err != nil {
		logger.Error("failed to write summary", "error", err)
		return cli.Exit(err.Error(), common.ExitFailed)
	}

	printReport(c.App.Writer, summary, summaryPath, time.Since(startTime))

	if code := common.ExitCode(summary.TotalDocuments, summary.Failed); code != common.ExitOK {
		return cli.Exit("", code)
	}
	return nil
}

func exportDB(logger *slog.Logger, path, runID string, startedAt time.Time, cfg models.ChunkerConfig, results []manifest.DocumentResult) error {
	database, err := db.Create(path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.InsertRun(runID, startedAt, len(results), cfg); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := database.InsertDocument(runID, r.Document, r.Page, r.Chunks, r.Failure()); err != nil {
			return err
		}
	}

	stats, err := database.RunStats(runID)
	if err != nil {
		return err
	}
	logger.Info("Chunk database written", "path", path, "documents", stats.Documents, "chunks", stats.Chunks, "largest_chunk_tokens", stats.MaxChunkTokens)
	return nil
}

func printReport(w io.Writer, s manifest.SummaryManifest, summaryPath string, elapsed time.Duration) {
	totalTokens := 0
	for _, d := range s.Documents {
		totalTokens += d.EstimatedTokens
	}

	fmt.Fprintf(w, "Run %s: %d/%d documents chunked\n", s.RunID, s.Successful, s.TotalDocuments)
	fmt.Fprintf(w, "Chunks: %s (%s estimated tokens", humanize.Comma(int64(s.TotalChunks)), humanize.Comma(int64(totalTokens)))
	if s.ChunksOverTarget > 0 {
		fmt.Fprintf(w, ", %d over target", s.ChunksOverTarget)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintf(w, "Summary: %s\n", summaryPath)
	fmt.Fprintf(w, "Took %s\n", elapsed.Round(time.Millisecond))

	if s.Failed > 0 {
		fmt.Fprintf(w, "\nFailed (%d):\n", s.Failed)
		for _, d := range s.Documents {
			if d.Status == "error" {
				fmt.Fprintf(w, "  - %s: %s\n", d.URL, d.ErrorMessage)
			}
		}
	}
}

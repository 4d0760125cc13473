package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-doc-chunker/internal/common"
	"github.com/dtnitsch/llm-doc-chunker/models"
	"github.com/dtnitsch/llm-doc-chunker/pkg/manifest"
	"github.com/dtnitsch/llm-doc-chunker/pkg/orchestrator"
)

// ErrNoReferences is returned when neither --urls nor --manifest yields anything to fetch.
var ErrNoReferences = errors.New("no URLs provided (use --urls or --manifest)")

// ErrMalformedURL marks --urls entries that stay invalid after sanitizing.
var ErrMalformedURL = errors.New("malformed URL")

// LoadReferences collects references from --manifest and --urls, in that order.
// Malformed --urls entries are an error; unusable manifest links are only logged.
func LoadReferences(c *cli.Context, g manifest.Getter, logger *slog.Logger) ([]models.DocumentReference, error) {
	var refs []models.DocumentReference

	if source := c.String("manifest"); source != "" {
		m, err := manifest.Load(c.Context, source, g)
		if err != nil {
			return nil, err
		}
		for _, skipped := range m.Skipped {
			logger.Warn("Skipping manifest link", "link", skipped)
		}
		logger.Info("Manifest loaded", "source", source, "title", m.Title, "references", len(m.References))
		refs = append(refs, m.References...)
	}

	if raw := c.String("urls"); raw != "" {
		urlRefs, invalid := manifest.ReferencesFromURLs(strings.Split(raw, ","))
		if len(invalid) > 0 {
			return nil, fmt.Errorf("%w: %d URL(s) invalid even after cleanup: %s", ErrMalformedURL, len(invalid), strings.Join(invalid, ", "))
		}
		refs = append(refs, urlRefs...)
	}

	if len(refs) == 0 {
		return nil, ErrNoReferences
	}
	return refs, nil
}

// Run fetches refs through an orchestrator backed by g and returns the run ID and
// one document per reference. SIGINT or SIGTERM aborts the run; pending items
// resolve as cancelled. Progress lines go to progress when it is non-nil.
func Run(ctx context.Context, g orchestrator.Getter, logger *slog.Logger, cfg models.FetchConfig, refs []models.DocumentReference, progress io.Writer) (string, []models.FetchedDocument, error) {
	opts := []orchestrator.Option{orchestrator.WithLogger(logger)}
	if progress != nil {
		lastCompleted := 0
		opts = append(opts, orchestrator.WithProgressFunc(func(p models.FetchRunProgress) {
			// also fires when an item starts; only report completions
			if p.Completed == lastCompleted {
				return
			}
			lastCompleted = p.Completed
			fmt.Fprintf(progress, "fetched %d/%d (%d failed)\n", p.Completed, p.Total, len(p.Errors))
		}))
	}

	o, err := orchestrator.New(g, cfg, opts...)
	if err != nil {
		return "", nil, err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	stopAbort := context.AfterFunc(sigCtx, func() {
		logger.Warn("Interrupted, aborting fetch run")
		o.Abort()
	})
	defer stopAbort()

	docs := o.FetchAll(ctx, refs)
	return o.Progress().RunID, docs, nil
}

// CountFailures returns how many documents failed to fetch.
func CountFailures(docs []models.FetchedDocument) int {
	failed := 0
	for _, d := range docs {
		if !d.OK() {
			failed++
		}
	}
	return failed
}

// exitCode wraps common.ExitCode for a finished fetch.
func exitCode(docs []models.FetchedDocument) int {
	return common.ExitCode(len(docs), CountFailures(docs))
}

package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/llm-doc-chunker/internal/common"
	"github.com/dtnitsch/llm-doc-chunker/pkg/fetcher"
)

// FetchAction fetches every reference and prints a per-document report.
// Exit code 0 when all succeed, 1 on partial failure, 2 when all fail.
func FetchAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	startTime := time.Now()

	cfg, err := common.LoadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return cli.Exit(err.Error(), common.ExitFailed)
	}

	f := fetcher.NewFetcher(cfg.Fetch, fetcher.WithLogger(logger))
	refs, err := LoadReferences(c, f, logger)
	if err != nil {
		code := common.ExitFailed
		if errors.Is(err, ErrNoReferences) || errors.Is(err, ErrMalformedURL) {
			code = common.ExitPartial
		}
		return cli.Exit("Error: "+err.Error(), code)
	}

	var progress io.Writer
	if !c.Bool("quiet") {
		progress = c.App.ErrWriter
	}
	runID, docs, err := Run(c.Context, f, logger, cfg.Fetch, refs, progress)
	if err != nil {
		return cli.Exit(err.Error(), common.ExitFailed)
	}

	out := BuildOutput(runID, docs, time.Since(startTime))
	var data []byte
	if strings.ToLower(c.String("format")) == "json" {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = yaml.Marshal(out)
	}
	if err != nil {
		logger.Error("failed to marshal final output", "error", err)
		return cli.Exit(err.Error(), common.ExitFailed)
	}
	fmt.Fprintln(c.App.Writer, strings.TrimRight(string(data), "\n"))

	if code := exitCode(docs); code != common.ExitOK {
		return cli.Exit("", code)
	}
	return nil
}

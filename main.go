package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-doc-chunker/internal/chunk"
	"github.com/dtnitsch/llm-doc-chunker/internal/common"
	"github.com/dtnitsch/llm-doc-chunker/internal/estimate"
	"github.com/dtnitsch/llm-doc-chunker/internal/fetch"
	"github.com/dtnitsch/llm-doc-chunker/models"
	"github.com/dtnitsch/llm-doc-chunker/pkg/artifact_manager"
	"github.com/dtnitsch/llm-doc-chunker/pkg/help"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(common.ExitFailed)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "llm-doc-chunker",
		Usage: "fetch documentation sites and split them into LLM-sized chunks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file (missing file = defaults)", Value: "config.yaml"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "only log errors, no progress"},
			&cli.BoolFlag{Name: "verbose", Usage: "debug logging"},
		},
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "fetch documents and report what was retrieved",
				Flags: append(append(sourceFlags(), fetchFlags()...),
					&cli.StringFlag{Name: "format", Usage: "output format: yaml or json", Value: "yaml"},
				),
				Action: fetch.FetchAction,
			},
			{
				Name:  "chunk",
				Usage: "fetch, convert and chunk documents into --output-dir",
				Flags: append(append(sourceFlags(), fetchFlags()...), append(chunkerFlags(),
					&cli.StringFlag{Name: "output-dir", Usage: "where chunk files, summary.yaml and chunks.db go", Value: artifact_manager.DefaultBaseDir},
					&cli.BoolFlag{Name: "no-db", Usage: "skip the SQLite export"},
				)...),
				Action: chunk.ChunkAction,
			},
			{
				Name:      "estimate",
				Usage:     "estimate tokens for files or stdin",
				ArgsUsage: "[file ...]",
				Flags: append(chunkerFlags(),
					&cli.BoolFlag{Name: "chunks", Usage: "also show how the text would be chunked"},
				),
				Action: estimate.EstimateAction,
			},
			{
				Name:  "coldstart",
				Usage: "print a quick start guide",
				Action: func(c *cli.Context) error {
					fmt.Fprint(c.App.Writer, help.ColdstartYAML)
					return nil
				},
			},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "urls", Usage: "comma-separated document URLs"},
		&cli.StringFlag{Name: "manifest", Usage: "llms.txt style manifest, local path or URL"},
	}
}

func fetchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "workers", Usage: "concurrent fetches", Value: models.DefaultWorkerCount},
		&cli.DurationFlag{Name: "timeout", Usage: "per-attempt timeout", Value: models.DefaultTimeout},
		&cli.IntFlag{Name: "retries", Usage: "extra attempts after a failure", Value: models.DefaultRetries},
		&cli.DurationFlag{Name: "retry-backoff", Usage: "base delay between attempts", Value: models.DefaultRetryBackoff},
		&cli.Float64Flag{Name: "rate-limit", Usage: "max requests per second across workers, 0 = off"},
		&cli.StringFlag{Name: "user-agent", Value: models.DefaultUserAgent},
	}
}

func chunkerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "max-tokens", Usage: "hard chunk budget", Value: models.DefaultMaxTokens},
		&cli.IntFlag{Name: "min-tokens", Usage: "merge chunks smaller than this", Value: models.DefaultMinTokens},
		&cli.IntFlag{Name: "target-tokens", Usage: "report chunks above this size", Value: models.DefaultTargetTokens},
	}
}

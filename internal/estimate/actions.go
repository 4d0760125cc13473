package estimate

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/dtnitsch/llm-doc-chunker/internal/common"
	"github.com/dtnitsch/llm-doc-chunker/pkg/chunker"
)

// EstimateAction prints the token estimate for each file argument, or for stdin
// when there are none. With --chunks it also reports how the text would be split.
func EstimateAction(c *cli.Context) error {
	cfg, err := common.LoadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), common.ExitFailed)
	}
	chunkCfg := cfg.Chunker.WithDefaults()

	names := c.Args().Slice()
	if len(names) == 0 {
		names = []string{"-"}
	}

	for _, name := range names {
		text, err := readInput(c.App.Reader, name)
		if err != nil {
			return cli.Exit(err.Error(), common.ExitFailed)
		}

		tokens := chunker.EstimateTokens(text)
		fmt.Fprintf(c.App.Writer, "%s\t%s tokens\t%s\n", name, humanize.Comma(int64(tokens)), humanize.Bytes(uint64(len(text))))
		if !c.Bool("chunks") {
			continue
		}
		title := name
		if title == "-" {
			title = "stdin"
		}
		for _, ch := range chunker.Chunk(text, title, chunkCfg) {
			fmt.Fprintf(c.App.Writer, "  h%d %6d  %s\n", ch.HeadingLevel, ch.EstimatedTokens, ch.Title)
		}
	}
	return nil
}

func readInput(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

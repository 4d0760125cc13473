package chunk

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dtnitsch/llm-doc-chunker/models"
	"github.com/dtnitsch/llm-doc-chunker/pkg/analytics"
	"github.com/dtnitsch/llm-doc-chunker/pkg/chunker"
	"github.com/dtnitsch/llm-doc-chunker/pkg/manifest"
	"github.com/dtnitsch/llm-doc-chunker/pkg/parser"
)

// Process converts and chunks every successfully fetched document, at most limit
// at a time. results[i] always corresponds to docs[i]. Conversion errors are kept
// on the result; only context cancellation is returned.
func Process(ctx context.Context, p *parser.Parser, docs []models.FetchedDocument, cfg models.ChunkerConfig, limit int) ([]manifest.DocumentResult, error) {
	results := make([]manifest.DocumentResult, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))
	for i, doc := range docs {
		results[i].Document = doc
		if !doc.OK() {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			locator := doc.SourceLocator
			if locator == "" {
				locator = doc.Reference.Locator
			}
			page, err := p.Parse(models.ParseRequest{
				URL:     locator,
				Title:   doc.Reference.Title,
				Content: doc.RawContent,
				Kind:    doc.ContentKind,
			})
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Page = page
			results[i].Chunks = chunker.Chunk(page.Text, page.Title, cfg)
			results[i].WordCounts = analytics.WordFrequency(page.Text)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

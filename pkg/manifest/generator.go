package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/llm-doc-chunker/models"
	"github.com/dtnitsch/llm-doc-chunker/pkg/analytics"
)

const (
	SummaryFile = "summary.yaml"

	documentKeywords  = 10
	aggregateKeywords = 25
)

// SummaryManifest is a lightweight overview of one run: what was fetched, what
// failed, and how each document was chunked.
type SummaryManifest struct {
	GeneratedAt      string            `yaml:"generated_at"`
	RunID            string            `yaml:"run_id"`
	TotalDocuments   int               `yaml:"total_documents"`
	Successful       int               `yaml:"successful"`
	Failed           int               `yaml:"failed"`
	TotalChunks      int               `yaml:"total_chunks"`
	ChunksOverTarget int               `yaml:"chunks_over_target"`
	TopKeywords      []string          `yaml:"top_keywords,omitempty"`
	Documents        []DocumentSummary `yaml:"documents"`
}

// DocumentSummary is the per-document entry of a SummaryManifest.
type DocumentSummary struct {
	URL             string             `yaml:"url"`
	SourceURL       string             `yaml:"source_url,omitempty"`
	Title           string             `yaml:"title,omitempty"`
	Category        string             `yaml:"category,omitempty"`
	Status          string             `yaml:"status"` // "success" or "error"
	ErrorMessage    string             `yaml:"error_message,omitempty"`
	ContentKind     models.ContentKind `yaml:"content_kind,omitempty"`
	Language        string             `yaml:"language,omitempty"`
	WordCount       int                `yaml:"word_count,omitempty"`
	Chunks          int                `yaml:"chunks,omitempty"`
	EstimatedTokens int                `yaml:"estimated_tokens,omitempty"`
	TopKeywords     []string           `yaml:"top_keywords,omitempty"`
	Dir             string             `yaml:"dir,omitempty"`
}

// DocumentResult is everything the chunk command learned about one reference.
type DocumentResult struct {
	Document models.FetchedDocument
	Page     *models.Page
	Chunks   []models.Chunk
	// Err is a conversion error; fetch failures live on Document.Failure.
	Err        error
	Dir        string
	WordCounts map[string]int
}

// Failure returns the first error the document hit, or "".
func (r DocumentResult) Failure() string {
	switch {
	case r.Document.Failure != "":
		return r.Document.Failure
	case r.Err != nil:
		return r.Err.Error()
	}
	return ""
}

// GenerateSummary aggregates per-document results. Chunks above targetTokens are
// counted but not treated as failures.
func GenerateSummary(runID string, results []DocumentResult, targetTokens int) SummaryManifest {
	summary := SummaryManifest{
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		RunID:          runID,
		TotalDocuments: len(results),
		Documents:      make([]DocumentSummary, 0, len(results)),
	}

	var counts []map[string]int
	for _, result := range results {
		doc := result.Document
		entry := DocumentSummary{
			URL:         doc.Reference.Locator,
			SourceURL:   doc.SourceLocator,
			Title:       doc.Reference.Title,
			Category:    doc.Reference.Category,
			ContentKind: doc.ContentKind,
		}

		if msg := result.Failure(); msg != "" {
			summary.Failed++
			entry.Status = "error"
			entry.ErrorMessage = msg
			summary.Documents = append(summary.Documents, entry)
			continue
		}

		summary.Successful++
		entry.Status = "success"
		entry.Dir = result.Dir
		if result.Page != nil {
			entry.Title = firstNonEmpty(result.Page.Title, entry.Title)
			entry.Language = result.Page.Metadata.Language
			entry.WordCount = result.Page.Metadata.WordCount
		}
		entry.Chunks = len(result.Chunks)
		for _, c := range result.Chunks {
			entry.EstimatedTokens += c.EstimatedTokens
			if targetTokens > 0 && c.EstimatedTokens > targetTokens {
				summary.ChunksOverTarget++
			}
		}
		if result.WordCounts != nil {
			entry.TopKeywords = analytics.TopKeywords(result.WordCounts, documentKeywords)
			counts = append(counts, result.WordCounts)
		}
		summary.TotalChunks += entry.Chunks
		summary.Documents = append(summary.Documents, entry)
	}

	if len(counts) > 0 {
		summary.TopKeywords = analytics.TopKeywords(analytics.Merge(counts...), aggregateKeywords)
	}
	return summary
}

// WriteSummary saves the summary as YAML under dir and returns the file path.
func WriteSummary(dir string, summary SummaryManifest) (string, error) {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return "", fmt.Errorf("error marshalling summary: %w", err)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, SummaryFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("error saving summary: %w", err)
	}
	return path, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

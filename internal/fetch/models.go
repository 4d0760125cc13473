package fetch

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dtnitsch/llm-doc-chunker/models"
)

// DocumentOutput is the structured output for a single reference.
type DocumentOutput struct {
	URL         string             `json:"url" yaml:"url"`
	SourceURL   string             `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	Title       string             `json:"title,omitempty" yaml:"title,omitempty"`
	Status      string             `json:"status" yaml:"status"`
	ContentKind models.ContentKind `json:"content_kind,omitempty" yaml:"content_kind,omitempty"`
	Size        string             `json:"size,omitempty" yaml:"size,omitempty"`
	FetchedAt   int64              `json:"fetched_at" yaml:"fetched_at"`
	Error       string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// FinalOutput is the structured output for the entire run.
type FinalOutput struct {
	Status  string           `json:"status" yaml:"status"`
	RunID   string           `json:"run_id" yaml:"run_id"`
	Results []DocumentOutput `json:"results" yaml:"results"`
	Stats   Stats            `json:"stats" yaml:"stats"`
}

// Stats provides summary statistics for the run.
type Stats struct {
	TotalURLs        int     `json:"total_urls" yaml:"total_urls"`
	Successful       int     `json:"successful" yaml:"successful"`
	Failed           int     `json:"failed" yaml:"failed"`
	TotalSize        string  `json:"total_size" yaml:"total_size"`
	TotalTimeSeconds float64 `json:"total_time_seconds" yaml:"total_time_seconds"`
}

// BuildOutput turns fetched documents into the command's report.
func BuildOutput(runID string, docs []models.FetchedDocument, elapsed time.Duration) FinalOutput {
	out := FinalOutput{
		RunID:   runID,
		Results: make([]DocumentOutput, 0, len(docs)),
		Stats: Stats{
			TotalURLs:        len(docs),
			TotalTimeSeconds: elapsed.Seconds(),
		},
	}

	var totalBytes uint64
	for _, d := range docs {
		item := DocumentOutput{
			URL:         d.Reference.Locator,
			SourceURL:   d.SourceLocator,
			Title:       d.Reference.Title,
			ContentKind: d.ContentKind,
			FetchedAt:   d.FetchedAtMillis(),
		}
		if d.OK() {
			out.Stats.Successful++
			item.Status = "success"
			item.Size = humanize.Bytes(uint64(len(d.RawContent)))
			totalBytes += uint64(len(d.RawContent))
		} else {
			out.Stats.Failed++
			item.Status = "failed"
			item.Error = d.Failure
		}
		out.Results = append(out.Results, item)
	}
	out.Stats.TotalSize = humanize.Bytes(totalBytes)

	switch {
	case out.Stats.Failed == 0:
		out.Status = "success"
	case out.Stats.Successful == 0:
		out.Status = "failed"
	default:
		out.Status = "partial_failure"
	}
	return out
}

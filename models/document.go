package models

import "time"

// ContentKind describes the format of fetched content.
type ContentKind string

const (
	// ContentKindStructuredText is Markdown-like source text served directly by the site.
	ContentKindStructuredText ContentKind = "structured-text"
	// ContentKindMarkup is HTML that still needs conversion before chunking.
	ContentKindMarkup ContentKind = "markup"
)

// DocumentReference identifies one remote document to retrieve.
type DocumentReference struct {
	Locator     string `json:"locator" yaml:"locator"`
	Title       string `json:"title" yaml:"title"`
	Category    string `json:"category,omitempty" yaml:"category,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// FetchedDocument is the outcome of fetching a single reference.
// A non-empty Failure means RawContent is empty and the item failed terminally.
type FetchedDocument struct {
	Reference     DocumentReference `json:"reference" yaml:"reference"`
	SourceLocator string            `json:"source_locator,omitempty" yaml:"source_locator,omitempty"`
	RawContent    string            `json:"-" yaml:"-"`
	ContentKind   ContentKind       `json:"content_kind,omitempty" yaml:"content_kind,omitempty"`
	FetchedAt     time.Time         `json:"fetched_at" yaml:"fetched_at"`
	Failure       string            `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// OK reports whether the document was fetched successfully.
func (d FetchedDocument) OK() bool {
	return d.Failure == ""
}

// FetchedAtMillis returns the fetch time as Unix epoch milliseconds.
func (d FetchedDocument) FetchedAtMillis() int64 {
	return d.FetchedAt.UnixMilli()
}

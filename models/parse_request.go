package models

// ParseRequest is the input to the converter.
type ParseRequest struct {
	URL     string
	Title   string
	Content string
	Kind    ContentKind
}

package models

type PageMetadata struct {
	Language string `json:"language,omitempty" yaml:"language,omitempty"` // ISO-639-1 if detected (e.g. "en")

	WordCount    int `json:"word_count" yaml:"word_count"`
	SectionCount int `json:"section_count" yaml:"section_count"`
	BlockCount   int `json:"block_count" yaml:"block_count"`

	// Readability enrichment, markup only
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`
	Excerpt  string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	SiteName string `json:"site_name,omitempty" yaml:"site_name,omitempty"`
}

package models

import (
	"fmt"
	"strings"
)

// Page represents the converted content of a single document.
type Page struct {
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Content  []ContentBlock `json:"content,omitempty"`
	Metadata PageMetadata   `json:"metadata"`

	// Text is set directly for structured-text sources, which skip block extraction.
	Text string `json:"-"`
}

type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows"`
}

type Code struct {
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}

// ContentBlock represents a semantic block of text on a page.
type ContentBlock struct {
	Type  string `json:"type"` // e.g., "h1", "h2", "p", "li"
	Text  string `json:"text"`
	Table *Table `json:"table,omitempty"`
	Code  *Code  `json:"code,omitempty"`
}

// ToMarkdown renders the page as heading-structured text, one blank line between blocks.
// Headings keep their level so the chunker can split on them.
func (p *Page) ToMarkdown() string {
	if p.Text != "" || len(p.Content) == 0 {
		return p.Text
	}

	var sb strings.Builder
	prevList := false
	for _, block := range p.Content {
		isList := block.Type == "li"
		if sb.Len() > 0 {
			if isList && prevList {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		prevList = isList

		switch block.Type {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			level := int(block.Type[1] - '0')
			sb.WriteString(strings.Repeat("#", level))
			sb.WriteString(" ")
			sb.WriteString(block.Text)

		case "li":
			sb.WriteString("- ")
			sb.WriteString(block.Text)

		case "table":
			writeTable(&sb, block.Table)

		case "code":
			fmt.Fprintf(&sb, "```%s\n%s\n```", block.Code.Language, block.Code.Content)

		default:
			sb.WriteString(block.Text)
		}
	}

	return sb.String()
}

func writeTable(sb *strings.Builder, t *Table) {
	if len(t.Headers) > 0 {
		sb.WriteString("| " + strings.Join(t.Headers, " | ") + " |\n")
		sep := make([]string, len(t.Headers))
		for i := range sep {
			sep[i] = "---"
		}
		sb.WriteString("| " + strings.Join(sep, " | ") + " |")
	}
	for i, row := range t.Rows {
		if i > 0 || len(t.Headers) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("| " + strings.Join(row, " | ") + " |")
	}
}

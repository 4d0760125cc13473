package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/llm-doc-chunker/models"
)

const englishParagraph = "The quick brown fox jumps over the lazy dog while the farmer watches from the porch. " +
	"Every morning the fox returns to the same field, hoping to find something new to eat before the sun rises. " +
	"Nobody in the village remembers when this habit started, but everyone agrees it has become part of daily life."

func articleHTML() string {
	var sb strings.Builder
	sb.WriteString(`<html><head><title>Install Guide</title></head><body>`)
	sb.WriteString(`<nav><a href="/">Home</a></nav><article>`)
	sb.WriteString(`<h2>Installation</h2>`)
	for i := 0; i < 4; i++ {
		sb.WriteString("<p>" + englishParagraph + "</p>")
	}
	sb.WriteString(`<h2>Usage</h2>`)
	for i := 0; i < 3; i++ {
		sb.WriteString("<p>" + englishParagraph + "</p>")
	}
	sb.WriteString(`<pre><code class="language-go">fmt.Println("hi")</code></pre>`)
	sb.WriteString(`</article></body></html>`)
	return sb.String()
}

func TestParse_StructuredText(t *testing.T) {
	p := New()
	page, err := p.Parse(models.ParseRequest{
		URL:     "https://example.com/guide.md",
		Content: "# Guide\r\n\r\nIntro.\r\n\r\n## Setup\r\n\r\n```sh\r\n# not a heading\r\n```\r\n\r\n#hashtag\r\n",
		Kind:    models.ContentKindStructuredText,
	})
	require.NoError(t, err)

	assert.Equal(t, "Guide", page.Title)
	assert.NotContains(t, page.Text, "\r")
	assert.True(t, strings.HasPrefix(page.Text, "# Guide\n\nIntro."))
	assert.Equal(t, 2, page.Metadata.SectionCount)
	assert.Equal(t, page.Text, page.ToMarkdown())
}

func TestParse_StructuredKeepsGivenTitle(t *testing.T) {
	page, err := New().Parse(models.ParseRequest{
		Title:   "From Manifest",
		Content: "# Heading\n\nbody",
		Kind:    models.ContentKindStructuredText,
	})
	require.NoError(t, err)
	assert.Equal(t, "From Manifest", page.Title)
}

func TestParse_Markup(t *testing.T) {
	page, err := New().Parse(models.ParseRequest{
		URL:     "https://example.com/guide",
		Title:   "fallback",
		Content: articleHTML(),
		Kind:    models.ContentKindMarkup,
	})
	require.NoError(t, err)

	assert.Equal(t, "Install Guide", page.Title)
	assert.Contains(t, page.Text, "Installation")
	assert.Contains(t, page.Text, "quick brown fox")
	assert.Contains(t, page.Text, "fmt.Println(\"hi\")")
	assert.NotContains(t, page.Text, "<p>")
	assert.Greater(t, page.Metadata.WordCount, 100)
	assert.Greater(t, page.Metadata.BlockCount, 5)
	assert.Equal(t, "en", page.Metadata.Language)
}

func TestParse_Errors(t *testing.T) {
	p := New()

	_, err := p.Parse(models.ParseRequest{Content: "x", Kind: "pdf"})
	assert.ErrorContains(t, err, "unsupported content kind")

	_, err = p.Parse(models.ParseRequest{Content: " \n\n ", Kind: models.ContentKindStructuredText})
	assert.ErrorContains(t, err, "no content extracted")

	_, err = p.Parse(models.ParseRequest{URL: "://bad", Content: "<p>x</p>", Kind: models.ContentKindMarkup})
	assert.ErrorContains(t, err, "invalid url")
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  hello  ", "hello"},
		{"line one\n\n   line two\n", "line one line two"},
		{"\n\t\n", ""},
	}
	for _, tt := range tests {
		if got := normalizeText(tt.in); got != tt.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func selection(t *testing.T, html, selector string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find(selector).First()
}

func TestExtractTable(t *testing.T) {
	t.Run("thead headers", func(t *testing.T) {
		s := selection(t, `<table><thead><tr><th>Name</th><th>Value</th></tr></thead>
			<tbody><tr><td>a</td><td>1</td></tr><tr><td>b</td><td>2</td></tr></tbody></table>`, "table")
		table := extractTable(s)
		require.NotNil(t, table)
		assert.Equal(t, []string{"Name", "Value"}, table.Headers)
		assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}}, table.Rows)
	})

	t.Run("first row headers", func(t *testing.T) {
		s := selection(t, `<table><tr><th>K</th></tr><tr><td>v</td></tr></table>`, "table")
		table := extractTable(s)
		require.NotNil(t, table)
		assert.Equal(t, []string{"K"}, table.Headers)
		assert.Equal(t, [][]string{{"v"}}, table.Rows)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, extractTable(selection(t, `<table></table>`, "table")))
	})
}

func TestExtractCodeBlock(t *testing.T) {
	code := extractCodeBlock(selection(t, `<pre><code class="hljs language-python">print(1)</code></pre>`, "pre"))
	require.NotNil(t, code)
	assert.Equal(t, "python", code.Language)
	assert.Equal(t, "print(1)", code.Content)

	bare := extractCodeBlock(selection(t, "<pre>\nplain text\n</pre>", "pre"))
	require.NotNil(t, bare)
	assert.Empty(t, bare.Language)
	assert.Equal(t, "plain text", bare.Content)

	assert.Nil(t, extractCodeBlock(selection(t, `<pre>  </pre>`, "pre")))
}

package parser

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/llm-doc-chunker/models"
)

// minDetectRunes is the shortest text worth running language detection on.
const minDetectRunes = 40

var detectLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Russian,
	lingua.Chinese,
	lingua.Japanese,
}

// Parser converts fetched documents into heading-structured text.
// It is safe for concurrent use.
type Parser struct {
	detector lingua.LanguageDetector
}

func New() *Parser {
	return &Parser{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectLanguages...).
			WithLowAccuracyMode().
			Build(),
	}
}

// Parse converts req according to its content kind. Structured text passes through
// with normalized line endings; markup goes through readability extraction.
func (p *Parser) Parse(req models.ParseRequest) (*models.Page, error) {
	var page *models.Page
	var err error

	switch req.Kind {
	case models.ContentKindStructuredText:
		page = parseStructured(req)
	case models.ContentKindMarkup:
		page, err = ParseToStructured(req.URL, req.Content)
		if err != nil {
			return nil, err
		}
		if page.Title == "" {
			page.Title = req.Title
		}
	default:
		return nil, fmt.Errorf("unsupported content kind %q", req.Kind)
	}

	text := page.ToMarkdown()
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("no content extracted")
	}
	page.Text = text
	page.Metadata.WordCount = len(strings.Fields(text))
	page.Metadata.Language = p.detectLanguage(text)
	return page, nil
}

func (p *Parser) detectLanguage(text string) string {
	if p.detector == nil || len([]rune(text)) < minDetectRunes {
		return ""
	}
	lang, ok := p.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

func parseStructured(req models.ParseRequest) *models.Page {
	text := strings.ReplaceAll(req.Content, "\r\n", "\n")
	page := &models.Page{
		URL:   req.URL,
		Title: req.Title,
		Text:  text,
	}

	inFence := false
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(line, "#") {
			continue
		}
		level := len(line) - len(strings.TrimLeft(line, "#"))
		if level > 6 || len(line) == level || line[level] != ' ' {
			continue
		}
		page.Metadata.SectionCount++
		if level == 1 && page.Title == "" {
			page.Title = strings.TrimSpace(line[level:])
		}
	}
	return page
}

// ParseToStructured uses go-readability to extract the main article content and
// then walks that clean content into a structured Page.
func ParseToStructured(rawURL, html string) (*models.Page, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	article, err := readability.NewParser().Parse(strings.NewReader(html), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("readability failed for %s: %w", rawURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article html: %w", err)
	}

	var content []models.ContentBlock
	sections := 0
	doc.Find("h1,h2,h3,h4,h5,h6,p,li,table,pre").Each(func(i int, s *goquery.Selection) {
		tag := goquery.NodeName(s)

		// nested matches are rendered by their outermost block
		if tag != "table" && tag != "pre" && s.ParentsFiltered("table,pre,li").Length() > 0 {
			return
		}

		switch tag {
		case "table":
			if table := extractTable(s); table != nil {
				content = append(content, models.ContentBlock{Type: "table", Table: table})
			}

		case "pre":
			if code := extractCodeBlock(s); code != nil {
				content = append(content, models.ContentBlock{Type: "code", Code: code})
			}

		default:
			text := normalizeText(s.Text())
			if text == "" {
				return
			}
			if tag[0] == 'h' {
				sections++
			}
			content = append(content, models.ContentBlock{Type: tag, Text: text})
		}
	})

	return &models.Page{
		URL:     rawURL,
		Title:   normalizeText(article.Title),
		Content: content,
		Metadata: models.PageMetadata{
			SectionCount: sections,
			BlockCount:   len(content),
			Author:       normalizeText(article.Byline),
			Excerpt:      normalizeText(article.Excerpt),
			SiteName:     normalizeText(article.SiteName),
		},
	}, nil
}

// normalizeText trims every line and joins the non-empty ones with single spaces.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			b.WriteString(line)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

func extractTable(s *goquery.Selection) *models.Table {
	var headers []string
	var rows [][]string

	s.Find("thead tr th").Each(func(i int, th *goquery.Selection) {
		headers = append(headers, normalizeText(th.Text()))
	})

	// Fallback: first row
	skipFirst := false
	if len(headers) == 0 {
		s.Find("tr").First().Find("th").Each(func(i int, cell *goquery.Selection) {
			headers = append(headers, normalizeText(cell.Text()))
		})
		skipFirst = len(headers) > 0
	}

	s.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 && skipFirst {
			return
		}
		var row []string
		tr.Find("td").Each(func(j int, td *goquery.Selection) {
			row = append(row, normalizeText(td.Text()))
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})

	if len(headers) == 0 && len(rows) == 0 {
		return nil
	}
	return &models.Table{Headers: headers, Rows: rows}
}

func extractCodeBlock(s *goquery.Selection) *models.Code {
	codeSel := s.Find("code").First()
	text := s.Text()
	if codeSel.Length() > 0 {
		text = codeSel.Text()
	}
	code := strings.Trim(text, "\n")
	if strings.TrimSpace(code) == "" {
		return nil
	}

	var lang string
	classes, _ := codeSel.Attr("class")
	for _, class := range strings.Fields(classes) {
		if after, ok := strings.CutPrefix(class, "language-"); ok {
			lang = after
			break
		}
	}
	return &models.Code{Language: lang, Content: code}
}

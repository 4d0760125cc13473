// Package manifest reads llms.txt style document manifests and writes run summaries.
package manifest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/dtnitsch/llm-doc-chunker/internal/common"
	"github.com/dtnitsch/llm-doc-chunker/models"
	"github.com/dtnitsch/llm-doc-chunker/pkg/fetcher"
)

// - [Title](url): description
var linkLine = regexp.MustCompile(`^[-*+]\s+\[([^\]]*)\]\(\s*([^)\s]+)(?:\s+"[^"]*")?\s*\)\s*(?:[:\-]\s*(.*))?$`)

// Manifest is a parsed document list.
type Manifest struct {
	Title       string
	Description string
	References  []models.DocumentReference
	// Skipped holds link targets that did not resolve to a usable http(s) URL.
	Skipped []string
}

// Getter fetches a remote manifest. *fetcher.Fetcher satisfies it.
type Getter interface {
	Get(ctx context.Context, url string) (*fetcher.Response, error)
}

// Load reads a manifest from a local path or an http(s) URL. Relative links in a
// remote manifest resolve against the manifest URL.
func Load(ctx context.Context, source string, g Getter) (*Manifest, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := g.Get(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch manifest: %w", err)
		}
		return Parse(strings.NewReader(string(resp.Body)), source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()
	return Parse(f, "")
}

// Parse reads the manifest line by line. "# " sets the title, the first "> " block
// the description, "## " the category of the links that follow.
func Parse(r io.Reader, baseURL string) (*Manifest, error) {
	var base *url.URL
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid manifest url %q: %w", baseURL, err)
		}
		base = u
	}

	m := &Manifest{}
	var category string
	var desc []string
	descDone := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if quote, ok := strings.CutPrefix(line, ">"); ok {
			if !descDone {
				desc = append(desc, strings.TrimSpace(quote))
			}
			continue
		}
		if len(desc) > 0 {
			descDone = true
		}

		switch {
		case strings.HasPrefix(line, "# "):
			if m.Title == "" {
				m.Title = strings.TrimSpace(line[2:])
			}
		case strings.HasPrefix(line, "## "):
			category = strings.TrimSpace(line[3:])
		default:
			match := linkLine.FindStringSubmatch(line)
			if match == nil {
				continue
			}
			locator, err := resolve(base, match[2])
			if err != nil {
				m.Skipped = append(m.Skipped, match[2])
				continue
			}
			m.References = append(m.References, models.DocumentReference{
				Locator:     locator,
				Title:       strings.TrimSpace(match[1]),
				Category:    category,
				Description: strings.TrimSpace(match[3]),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m.Description = strings.TrimSpace(strings.Join(desc, " "))
	return m, nil
}

func resolve(base *url.URL, link string) (string, error) {
	link = common.SanitizeURL(link)
	if base != nil {
		ref, err := url.Parse(link)
		if err != nil {
			return "", err
		}
		link = base.ResolveReference(ref).String()
	}
	return common.ValidateURL(link)
}

// ReferencesFromURLs builds references for URLs given directly on the command line.
// Invalid entries are returned separately.
func ReferencesFromURLs(urls []string) ([]models.DocumentReference, []string) {
	valid, invalid := common.SanitizeAndValidateURLs(urls)
	refs := make([]models.DocumentReference, 0, len(valid))
	for _, u := range valid {
		refs = append(refs, models.DocumentReference{Locator: u})
	}
	return refs, invalid
}

package artifact_manager

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dtnitsch/llm-doc-chunker/internal/common"
	"github.com/dtnitsch/llm-doc-chunker/models"
)

const (
	DefaultBaseDir = "ldc-results"
	IndexFile      = "index.yaml"
	SourceFile     = "source.md"
)

// maxSlugLen keeps document directory names well under common filesystem limits.
const maxSlugLen = 80

// ChunkIndex is written next to a document's chunk files.
type ChunkIndex struct {
	URL         string             `yaml:"url"`
	SourceURL   string             `yaml:"source_url,omitempty"`
	Title       string             `yaml:"title,omitempty"`
	Category    string             `yaml:"category,omitempty"`
	ContentKind models.ContentKind `yaml:"content_kind"`
	Language    string             `yaml:"language,omitempty"`
	FetchedAt   int64              `yaml:"fetched_at"`
	ContentHash string             `yaml:"content_hash"`
	Chunks      []ChunkEntry       `yaml:"chunks"`
}

type ChunkEntry struct {
	ID              string `yaml:"id"`
	Title           string `yaml:"title"`
	HeadingLevel    int    `yaml:"heading_level"`
	EstimatedTokens int    `yaml:"estimated_tokens"`
	File            string `yaml:"file"`
	ContentHash     string `yaml:"content_hash"`
}

// Manager writes per-document chunk artifacts under a base directory.
type Manager struct {
	baseDir string
}

// NewManager creates a new Artifact Manager instance and ensures the base directory exists.
func NewManager(baseDir string) (*Manager, error) {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Manager{baseDir: baseDir}, nil
}

func (m *Manager) BaseDir() string {
	return m.baseDir
}

// DocumentDir returns the directory name for a document, relative to the base directory.
// Example: example_com_docs_guide-1a2b3c4d5e6f
func DocumentDir(rawURL string) (string, error) {
	normalizedURL, err := normalizeURL(rawURL)
	if err != nil {
		return "", err
	}
	slug := sanitizeSlug(rawURL)
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "_")
	}
	return fmt.Sprintf("%s-%s", slug, getShortHash(normalizedURL)), nil
}

// WriteDocument writes the converted text, one Markdown file per chunk and an
// index.yaml describing them. It returns the document directory relative to the
// base directory. Existing files for the same document are overwritten.
func (m *Manager) WriteDocument(doc models.FetchedDocument, page *models.Page, chunks []models.Chunk) (string, error) {
	rel, err := DocumentDir(doc.Reference.Locator)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(m.baseDir, rel)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create document directory: %w", err)
	}

	text := page.ToMarkdown()
	if err := writeFile(filepath.Join(dir, SourceFile), text); err != nil {
		return "", err
	}

	index := ChunkIndex{
		URL:         doc.Reference.Locator,
		SourceURL:   doc.SourceLocator,
		Title:       page.Title,
		Category:    doc.Reference.Category,
		ContentKind: doc.ContentKind,
		Language:    page.Metadata.Language,
		FetchedAt:   doc.FetchedAtMillis(),
		ContentHash: common.ContentHash([]byte(text)),
		Chunks:      make([]ChunkEntry, 0, len(chunks)),
	}

	for i, c := range chunks {
		name := fmt.Sprintf("%03d-%s.md", i+1, c.ID)
		if err := writeFile(filepath.Join(dir, name), c.Content); err != nil {
			return "", err
		}
		index.Chunks = append(index.Chunks, ChunkEntry{
			ID:              c.ID,
			Title:           c.Title,
			HeadingLevel:    c.HeadingLevel,
			EstimatedTokens: c.EstimatedTokens,
			File:            name,
			ContentHash:     common.ContentHash([]byte(c.Content)),
		})
	}

	data, err := yaml.Marshal(index)
	if err != nil {
		return "", fmt.Errorf("error marshalling chunk index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, IndexFile), data, 0600); err != nil {
		return "", fmt.Errorf("failed to write chunk index: %w", err)
	}
	return rel, nil
}

func writeFile(path, content string) error {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// normalizeURL creates a canonical representation of a URL for consistent hashing.
func normalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	u.Host = strings.ToLower(u.Host)

	// Sort query parameters alphabetically
	if u.RawQuery != "" {
		params := u.Query()
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sortedQuery := url.Values{}
		for _, k := range keys {
			for _, v := range params[k] {
				sortedQuery.Add(k, v)
			}
		}
		u.RawQuery = sortedQuery.Encode()
	}

	u.Fragment = ""
	return u.String(), nil
}

// getShortHash generates a short, stable hash from a normalized URL.
func getShortHash(normalizedURL string) string {
	hash := sha256.Sum256([]byte(normalizedURL))
	return fmt.Sprintf("%x", hash[:6])
}

var invalidFilenameChar = regexp.MustCompile(`[^a-zA-Z0-9\-_]+`)

// sanitizeSlug creates a filesystem-safe slug from a URL host and path.
func sanitizeSlug(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		safe := invalidFilenameChar.ReplaceAllString(rawURL, "_")
		return strings.Trim(safe, "_")
	}

	hostPart := invalidFilenameChar.ReplaceAllString(strings.ReplaceAll(u.Host, ".", "_"), "_")
	pathPart := strings.TrimPrefix(u.Path, "/")
	pathPart = invalidFilenameChar.ReplaceAllString(pathPart, "_")
	pathPart = strings.Trim(pathPart, "_")

	if pathPart == "" {
		return hostPart
	}
	return fmt.Sprintf("%s_%s", hostPart, pathPart)
}

package fetcher

import (
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/dtnitsch/llm-doc-chunker/models"
)

// Source is one way of retrieving a document: a locator transform paired with the
// kind of content it yields. Sources are tried in order.
type Source struct {
	Name string
	Kind models.ContentKind
	// Probe sources get a single attempt, and their failure falls through to the next source.
	Probe bool
	// Resolve maps the reference locator to the locator to fetch, or reports that
	// the source does not apply.
	Resolve func(locator string) (string, bool)
	// Accept optionally vets a successful response.
	Accept func(*Response) error
}

// DefaultSources is the structured-text-first strategy: fetch locators that already
// carry a structured suffix directly, otherwise probe locator+suffix once, then fall
// back to the locator itself as markup.
func DefaultSources(suffixes []string) []Source {
	if len(suffixes) == 0 {
		suffixes = []string{".md"}
	}
	primary := suffixes[0]

	return []Source{
		{
			Name: "structured",
			Kind: models.ContentKindStructuredText,
			Resolve: func(locator string) (string, bool) {
				return locator, HasStructuredSuffix(locator, suffixes)
			},
		},
		{
			Name:  "structured-probe",
			Kind:  models.ContentKindStructuredText,
			Probe: true,
			Resolve: func(locator string) (string, bool) {
				if HasStructuredSuffix(locator, suffixes) {
					return "", false
				}
				return AlternateLocator(locator, primary), true
			},
			Accept: rejectHTML,
		},
		{
			Name: "markup",
			Kind: models.ContentKindMarkup,
			Resolve: func(locator string) (string, bool) {
				return locator, !HasStructuredSuffix(locator, suffixes)
			},
		},
	}
}

// HasStructuredSuffix reports whether the locator's path ends in one of suffixes.
func HasStructuredSuffix(locator string, suffixes []string) bool {
	path := locator
	if u, err := url.Parse(locator); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(path, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// AlternateLocator appends suffix to the locator's path, keeping any query string.
// A path ending in "/" gets "index"+suffix.
func AlternateLocator(locator, suffix string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return locator + suffix
	}
	u.Fragment = ""
	switch {
	case u.Path == "":
		u.Path = "/index" + suffix
	case strings.HasSuffix(u.Path, "/"):
		u.Path += "index" + suffix
	default:
		u.Path += suffix
	}
	return u.String()
}

// rejectHTML turns away probe responses that are really HTML pages, as served by
// sites that answer every path with their app shell.
func rejectHTML(r *Response) error {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return nil
	}
	if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
		return fmt.Errorf("GET %s: served %s instead of structured text", r.URL, mediaType)
	}
	return nil
}

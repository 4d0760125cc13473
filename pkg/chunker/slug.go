package chunker

import (
	"strconv"
	"strings"
	"unicode"
)

const maxSlugRunes = 60

// slugify lowercases s and collapses everything that is not a letter or digit into single hyphens.
func slugify(s string) string {
	var b strings.Builder
	n := 0
	pendingHyphen := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			n++
			if n >= maxSlugRunes {
				break
			}
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// idSet hands out chunk identifiers that are unique within one document.
type idSet map[string]int

// next joins the slugs of the non-empty parts and disambiguates repeats with the
// lowest free "-N" suffix, skipping ids already handed out.
func (s idSet) next(parts ...string) string {
	slugs := make([]string, 0, len(parts))
	for _, p := range parts {
		if sl := slugify(p); sl != "" {
			slugs = append(slugs, sl)
		}
	}
	base := strings.Join(slugs, "-")
	if base == "" {
		base = "document"
	}

	if s[base] == 0 {
		s[base] = 1
		return base
	}
	for n := max(s[base]+1, 2); ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if s[candidate] == 0 {
			s[candidate] = 1
			s[base] = n
			return candidate
		}
	}
}

// Package analytics computes keyword statistics for converted documents.
package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// minWordRunes drops one- and two-letter tokens, which are almost never useful keywords.
const minWordRunes = 3

var stopwords = toSet(`
about above after again against also although always among another anyone
anything are aren't around because been before being below between both but
can can't cannot could couldn't did didn't does doesn't doing don't down during
each either else enough even every few for from further had hasn't have haven't
having her here hers herself him himself his how however into isn't it's its
itself just last least less let's like many may maybe might more most much must
myself neither never next none nor not now off often once only other others our
ours ourselves out over own same she should shouldn't since some such than that
that's the their theirs them themselves then there there's these they they're
this those though through too under until upon very was wasn't were weren't what
when where whether which while who whom whose why will with within without won't
would wouldn't yet you you're your yours yourself yourselves
click link menu button page pages site website home search loading
`)

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether word is filtered out of keyword counts.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// WordFrequency counts the keywords of text. Words are lowercased and stripped of
// surrounding punctuation; stopwords, numbers and very short words are skipped.
// Lines inside fenced code blocks are ignored.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	inFence := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		for _, word := range strings.Fields(strings.ToLower(line)) {
			word = strings.TrimFunc(word, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			})
			if len([]rune(word)) < minWordRunes || !strings.ContainsFunc(word, unicode.IsLetter) {
				continue
			}
			if _, skip := stopwords[word]; skip {
				continue
			}
			frequencies[word]++
		}
	}
	return frequencies
}

// Merge sums several frequency maps into a new one.
func Merge(counts ...map[string]int) map[string]int {
	merged := make(map[string]int)
	for _, c := range counts {
		for word, n := range c {
			merged[word] += n
		}
	}
	return merged
}

// TopKeywords returns the n most frequent words formatted as "word:count",
// highest count first and alphabetical among equal counts.
func TopKeywords(wordCounts map[string]int, n int) []string {
	type kv struct {
		word  string
		count int
	}

	ss := make([]kv, 0, len(wordCounts))
	for w, c := range wordCounts {
		ss = append(ss, kv{w, c})
	}
	slices.SortFunc(ss, func(a, b kv) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return strings.Compare(a.word, b.word)
	})

	limit := min(max(n, 0), len(ss))
	keywords := make([]string, limit)
	for i := range limit {
		keywords[i] = fmt.Sprintf("%s:%d", ss[i].word, ss[i].count)
	}
	return keywords
}

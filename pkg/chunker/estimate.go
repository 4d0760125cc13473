package chunker

import (
	"strings"
	"unicode/utf16"
)

// EstimateTokens approximates the LLM token count of text as
// ceil(max(words*1.3, chars/4)). chars counts UTF-16 code units, so a rune
// outside the Basic Multilingual Plane (most emoji) counts twice. The word term
// dominates for Latin scripts and the character term for dense scripts, so the
// estimate errs on the high side.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	chars := 0
	for _, r := range text {
		chars += max(utf16.RuneLen(r), 1)
	}

	// integer ceilings avoid float error in words*1.3
	byWords := (words*13 + 9) / 10
	byChars := (chars + 3) / 4
	return max(byWords, byChars)
}

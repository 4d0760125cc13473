// Package chunker splits documents into heading-aligned, token-bounded chunks.
//
// A document that fits the budget is returned whole. Larger documents are cut at
// level-2 headings, then level-3 headings, then blank-line paragraph boundaries.
// Paragraphs are never split further, so a single oversized paragraph produces an
// oversized chunk.
package chunker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dtnitsch/llm-doc-chunker/models"
)

// Chunk splits content into chunks within cfg's token budget.
// Zero fields of cfg use the defaults. Empty or whitespace-only content yields no chunks.
func Chunk(content, title string, cfg models.ChunkerConfig) []models.Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	cfg = cfg.WithDefaults()
	ids := idSet{}

	if tokens := EstimateTokens(content); tokens <= cfg.MaxTokens {
		return []models.Chunk{{
			ID:              ids.next(title),
			Title:           title,
			Content:         content,
			HeadingLevel:    1,
			EstimatedTokens: tokens,
		}}
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	tree := BuildTree(content)
	if len(tree.Children) < 2 {
		return splitByParagraphs(content, title, 1, cfg, ids, title)
	}

	var chunks []models.Chunk
	for _, sec := range tree.Children {
		chunks = append(chunks, sectionChunks(sec, title, cfg, ids)...)
	}
	return mergeSmall(chunks, cfg)
}

// sectionChunks emits a level-2 section whole when it fits, otherwise walks its subsections.
func sectionChunks(sec *Section, docTitle string, cfg models.ChunkerConfig, ids idSet) []models.Chunk {
	text := strings.TrimSpace(sec.Content)
	if text == "" {
		return nil
	}
	title := firstNonEmpty(sec.Heading, docTitle)

	if tokens := EstimateTokens(text); tokens <= cfg.MaxTokens {
		return []models.Chunk{{
			ID:              ids.next(docTitle, sec.Heading),
			Title:           title,
			Content:         text,
			HeadingLevel:    headingLevel(sec.Level),
			EstimatedTokens: tokens,
		}}
	}

	if len(sec.Children) < 2 {
		return splitByParagraphs(text, title, sec.Level, cfg, ids, docTitle, sec.Heading)
	}

	var chunks []models.Chunk
	for _, sub := range sec.Children {
		subText := strings.TrimSpace(sub.Content)
		if subText == "" {
			continue
		}
		subTitle := firstNonEmpty(sub.Heading, title)

		if tokens := EstimateTokens(subText); tokens <= cfg.MaxTokens {
			chunks = append(chunks, models.Chunk{
				ID:              ids.next(docTitle, sec.Heading, sub.Heading),
				Title:           subTitle,
				Content:         subText,
				HeadingLevel:    headingLevel(sub.Level),
				EstimatedTokens: tokens,
			})
			continue
		}
		chunks = append(chunks, splitByParagraphs(subText, subTitle, sub.Level, cfg, ids, docTitle, sec.Heading, sub.Heading)...)
	}
	return chunks
}

// splitByParagraphs greedily packs consecutive paragraphs into chunks of at most
// cfg.MaxTokens. When more than one chunk results each is titled "(Part N)".
func splitByParagraphs(text, title string, level int, cfg models.ChunkerConfig, ids idSet, idParts ...string) []models.Chunk {
	var groups []string
	var buf string
	for _, p := range splitParagraphs(text) {
		if buf == "" {
			buf = p
			continue
		}
		candidate := buf + "\n\n" + p
		if EstimateTokens(candidate) > cfg.MaxTokens {
			groups = append(groups, buf)
			buf = p
			continue
		}
		buf = candidate
	}
	if buf != "" {
		groups = append(groups, buf)
	}

	chunks := make([]models.Chunk, 0, len(groups))
	for i, g := range groups {
		c := models.Chunk{
			Title:           title,
			Content:         g,
			HeadingLevel:    headingLevel(level),
			EstimatedTokens: EstimateTokens(g),
		}
		if len(groups) > 1 {
			c.Title = fmt.Sprintf("%s (Part %d)", title, i+1)
			c.ID = ids.next(append(idParts, strconv.Itoa(i+1))...)
		} else {
			c.ID = ids.next(idParts...)
		}
		chunks = append(chunks, c)
	}
	return chunks
}

// mergeSmall folds a chunk under cfg.MinTokens into its right neighbour when the
// pair fits cfg.MaxTokens. It is a single left-to-right pass; a merged chunk is
// not merged again.
func mergeSmall(chunks []models.Chunk, cfg models.ChunkerConfig) []models.Chunk {
	merged := make([]models.Chunk, 0, len(chunks))
	for i := 0; i < len(chunks); {
		cur := chunks[i]
		if cur.EstimatedTokens < cfg.MinTokens && i+1 < len(chunks) {
			next := chunks[i+1]
			if cur.EstimatedTokens+next.EstimatedTokens <= cfg.MaxTokens {
				cur.Content = cur.Content + "\n\n" + next.Content
				cur.HeadingLevel = min(cur.HeadingLevel, next.HeadingLevel)
				cur.EstimatedTokens += next.EstimatedTokens
				merged = append(merged, cur)
				i += 2
				continue
			}
		}
		merged = append(merged, cur)
		i++
	}
	return merged
}

func headingLevel(level int) int {
	return min(max(level, 1), 3)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

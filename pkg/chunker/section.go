package chunker

import "strings"

// Section is one node of a document's heading tree.
// Content holds the full text of the node, including its heading line and children.
type Section struct {
	Heading  string
	Level    int
	Content  string
	Children []*Section
}

// BuildTree splits a document into level-2 sections and each of those into level-3 subsections.
// Text before the first heading of a level becomes a child with an empty heading at
// that same level.
func BuildTree(content string) *Section {
	root := &Section{Level: 1, Content: content}
	root.Children = splitSections(content, 2)
	for _, sec := range root.Children {
		sec.Children = splitSections(sec.Content, 3)
	}
	return root
}

// splitSections cuts content at headings of exactly the given level.
// Headings inside fenced code blocks are ignored.
func splitSections(content string, level int) []*Section {
	prefix := strings.Repeat("#", level) + " "
	lines := strings.Split(content, "\n")

	var sections []*Section
	current := &Section{Level: level}
	var buf []string
	inFence := false

	flush := func() {
		text := strings.Join(buf, "\n")
		if current.Heading != "" || strings.TrimSpace(text) != "" {
			current.Content = text
			sections = append(sections, current)
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		if isFence(line) {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(line, prefix) {
			if heading := strings.TrimSpace(strings.TrimPrefix(line, prefix)); heading != "" {
				flush()
				current = &Section{Heading: heading, Level: level}
			}
		}
		buf = append(buf, line)
	}
	flush()

	return sections
}

func isFence(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// splitParagraphs cuts text at blank lines, keeping fenced code blocks whole.
func splitParagraphs(text string) []string {
	var paragraphs []string
	var buf []string
	inFence := false

	flush := func() {
		if p := strings.TrimSpace(strings.Join(buf, "\n")); p != "" {
			paragraphs = append(paragraphs, p)
		}
		buf = buf[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if isFence(line) {
			inFence = !inFence
		}
		if !inFence && strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		buf = append(buf, line)
	}
	flush()

	return paragraphs
}

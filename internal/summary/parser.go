package summary

import (
	"regexp"
	"strings"
)

// Section is one titled segment of a parsed summary.
type Section struct {
	Title   string   `json:"title"`
	Content []string `json:"content"`
}

// Block is a run of same-type lines within a section: a paragraph or a
// bullet list with markers stripped.
type Block struct {
	Type  string   `json:"type"` // "paragraph" or "list"
	Lines []string `json:"lines"`
}

// The canonical section titles, in the order generated summaries use
// them, with the wording variants each one absorbs.
var headerPhrases = []struct {
	title    string
	variants map[string]bool
}{
	{"Bill Summary", phraseSet("bill summary", "summary")},
	{"What the Bill Does", phraseSet("what the bill does", "what this bill does", "bill purpose", "purpose")},
	{"Who It Affects", phraseSet("who it affects", "who this affects", "affected parties", "target audience", "who is affected")},
	{"Major Provisions", phraseSet("major provisions", "key provisions", "provisions", "main provisions", "key points")},
	{"Potential Impacts", phraseSet("potential impacts", "impacts", "effects", "consequences", "expected impacts")},
}

func phraseSet(phrases ...string) map[string]bool {
	set := make(map[string]bool, len(phrases))
	for _, p := range phrases {
		set[p] = true
	}
	return set
}

var (
	linkRe         = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	headingHashRe  = regexp.MustCompile(`^#{1,6}\s+`)
	headerStripRe  = regexp.MustCompile(`[:•-]`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
	maxHeaderChars = 100
)

// removeMarkdown strips the light markdown generated summaries contain:
// bold and italic asterisks, link syntax (keeping the link text), and
// leading heading hashes.
func removeMarkdown(line string) string {
	line = strings.ReplaceAll(line, "**", "")
	line = strings.ReplaceAll(line, "*", "")
	line = linkRe.ReplaceAllString(line, "$1")
	line = headingHashRe.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// matchHeader tests a markdown-stripped line against the canonical
// header phrase sets. Lines over 100 characters are never headers.
func matchHeader(line string) (string, bool) {
	if len(line) > maxHeaderChars {
		return "", false
	}
	norm := strings.ToLower(line)
	norm = headerStripRe.ReplaceAllString(norm, "")
	norm = multiSpaceRe.ReplaceAllString(norm, " ")
	norm = strings.TrimSpace(norm)
	for _, h := range headerPhrases {
		if h.variants[norm] {
			return h.title, true
		}
	}
	return "", false
}

// ParseSummary segments raw summary text into titled sections. Content
// before the first recognized header lands in a default "Bill Summary"
// section; text with no recognized structure at all becomes a single
// "Bill Summary" section holding every non-empty line.
func ParseSummary(text string) []Section {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var sections []Section
	var current *Section
	for _, line := range lines {
		cleaned := removeMarkdown(line)
		if cleaned == "" {
			continue
		}
		if title, ok := matchHeader(cleaned); ok {
			if current != nil && len(current.Content) > 0 {
				sections = append(sections, *current)
			}
			current = &Section{Title: title}
			continue
		}
		if current == nil {
			current = &Section{Title: "Bill Summary"}
		}
		current.Content = append(current.Content, cleaned)
	}
	if current != nil && len(current.Content) > 0 {
		sections = append(sections, *current)
	}

	if len(sections) == 0 && len(lines) > 0 {
		all := make([]string, 0, len(lines))
		for _, line := range lines {
			if cleaned := removeMarkdown(line); cleaned != "" {
				all = append(all, cleaned)
			}
		}
		if len(all) > 0 {
			sections = []Section{{Title: "Bill Summary", Content: all}}
		}
	}
	return sections
}

var bulletRe = regexp.MustCompile(`^([-•*]|\d+\.)\s+`)

// FormatContent splits a section's lines into alternating paragraph and
// list blocks. Bullet markers are stripped; line order is preserved.
func FormatContent(content []string) []Block {
	var blocks []Block
	for _, line := range content {
		blockType := "paragraph"
		text := line
		if m := bulletRe.FindString(line); m != "" {
			blockType = "list"
			text = strings.TrimSpace(line[len(m):])
		}
		if n := len(blocks); n > 0 && blocks[n-1].Type == blockType {
			blocks[n-1].Lines = append(blocks[n-1].Lines, text)
			continue
		}
		blocks = append(blocks, Block{Type: blockType, Lines: []string{text}})
	}
	return blocks
}

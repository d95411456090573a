package parser

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/halvard/synapse/internal/models"
)

// ScanWikilinks returns every wikilink target in text, in document order,
// duplicates preserved. It scans raw characters rather than parsing
// Markdown: a "[[" opens a span, bracket depth is tracked so a balanced
// literal "[" inside the span does not end it, and "]]" closes it. The
// alias, heading, and block-id suffixes ("|", "#", "^") are stripped.
// A span left open at end of text yields no link.
func ScanWikilinks(text string) []string {
	var links []string
	runes := []rune(text)
	n := len(runes)

	for i := 0; i < n; i++ {
		if runes[i] != '[' || i+1 >= n || runes[i+1] != '[' {
			continue
		}

		depth := 1
		terminated := false
		var span []rune
		j := i + 2
		for ; j < n; j++ {
			switch runes[j] {
			case '[':
				depth++
			case ']':
				depth--
			default:
				span = append(span, runes[j])
			}
			if depth == 0 {
				terminated = true
				break
			}
		}
		if !terminated {
			break
		}
		// Skip the second closing bracket.
		i = j + 1

		target := string(span)
		if k := strings.IndexAny(target, "|#^"); k >= 0 {
			target = target[:k]
		}
		target = strings.TrimSpace(target)
		if target != "" {
			links = append(links, target)
		}
	}
	return links
}

// ScanTags returns the deduplicated "#"-prefixed tags found in text, in
// encounter order. Fenced code blocks (lines starting with "```") and
// inline code spans are skipped. A "#" starts a tag only when preceded by
// start of line, whitespace, or a comma, and a line-initial "# " is a
// heading marker, never a tag. Tag bodies consume letters, digits, "-",
// "_", and "/"; a bare "#" is discarded.
func ScanTags(text string) []string {
	seen := make(map[string]struct{})
	var tags []string
	inFence := false

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		runes := []rune(line)
		n := len(runes)
		inCode := false
		for i := 0; i < n; {
			if runes[i] == '`' {
				inCode = !inCode
				i++
				continue
			}
			if inCode {
				i++
				continue
			}
			if runes[i] != '#' {
				i++
				continue
			}
			boundary := i == 0 || unicode.IsSpace(runes[i-1]) || runes[i-1] == ','
			if !boundary {
				i++
				continue
			}
			if i == 0 && i+1 < n && runes[i+1] == ' ' {
				// Heading marker.
				i++
				continue
			}
			start := i
			i++
			for i < n && isTagRune(runes[i]) {
				i++
			}
			tag := string(runes[start:i])
			if len(tag) > 1 {
				if _, dup := seen[tag]; !dup {
					seen[tag] = struct{}{}
					tags = append(tags, tag)
				}
			}
		}
	}
	return tags
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '/'
}

// ScanHeadings returns every heading in text in document order. A heading
// is a line whose left-trimmed form starts with one to six "#" characters
// followed by a non-empty remainder. Line numbers are 1-based.
func ScanHeadings(text string) []models.Heading {
	var headings []models.Heading
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level > 6 {
			continue
		}
		heading := strings.TrimSpace(trimmed[level:])
		if heading == "" {
			continue
		}
		headings = append(headings, models.Heading{Text: heading, Level: level, Line: i + 1})
	}
	return headings
}

// CountWords counts whitespace-delimited tokens in body, skipping fenced
// code blocks. body must already have its frontmatter stripped.
func CountWords(body string) int {
	count := 0
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		count += len(strings.Fields(trimmed))
	}
	return count
}

// InferTitle resolves a note's title: the frontmatter title wins, then the
// first heading, then the filename without extension.
func InferTitle(path string, headings []models.Heading, frontmatterTitle string) string {
	if frontmatterTitle != "" {
		return frontmatterTitle
	}
	if len(headings) > 0 {
		return headings[0].Text
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

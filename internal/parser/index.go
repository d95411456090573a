package parser

import (
	"strings"

	"github.com/halvard/synapse/internal/models"
)

// IndexNote builds the full extraction record for one note. The frontmatter
// is stripped once and all scanners run over the stripped body, so YAML
// content can never leak headings, tags, or words into the index.
// frontmatterTags are merged into the tag set with a "#" prefix added when
// missing. The returned title does not consider the frontmatter title; the
// caller overlays it when present (see InferTitle).
//
// IndexNote is a pure function: identical input always yields an identical
// NoteIndex, which is what makes reindexing idempotent.
func IndexNote(path, content string, frontmatterTags []string) models.NoteIndex {
	body := StripFrontmatter(content)

	tags := ScanTags(body)
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		seen[t] = struct{}{}
	}
	for _, ft := range frontmatterTags {
		tag := ft
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		if _, dup := seen[tag]; !dup {
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	headings := ScanHeadings(body)

	return models.NoteIndex{
		Path:          path,
		Title:         InferTitle(path, headings, ""),
		OutgoingLinks: ScanWikilinks(body),
		Tags:          tags,
		Headings:      headings,
		WordCount:     CountWords(body),
	}
}

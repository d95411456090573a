// Package query answers read-side questions that combine the cache with
// on-disk note content: backlink context snippets and title search.
package query

import (
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/halvard/synapse/internal/cache"
	"github.com/halvard/synapse/internal/models"
	"github.com/halvard/synapse/internal/parser"
	"github.com/halvard/synapse/internal/storage"
)

const (
	// DefaultSearchLimit caps SearchByTitle results when the caller passes 0.
	DefaultSearchLimit = 20

	contextMaxRunes = 200
)

// Engine serves queries over an indexed vault.
type Engine struct {
	store  storage.Provider
	cache  cache.Store
	logger *slog.Logger
}

func New(store storage.Provider, c cache.Store, logger *slog.Logger) *Engine {
	return &Engine{store: store, cache: c, logger: logger}
}

// Backlinks returns every note that links to the given title, with the
// source note's display title and the first line mentioning the link.
// Sources that cannot be read anymore are skipped.
func (e *Engine) Backlinks(title string) ([]models.Backlink, error) {
	sources, err := e.cache.Backlinks(title)
	if err != nil {
		return nil, err
	}

	result := make([]models.Backlink, 0, len(sources))
	for _, src := range sources {
		content, err := e.store.Read(src)
		if err != nil {
			e.logger.Warn("backlink source unreadable, skipping", "path", src, "error", err)
			continue
		}
		result = append(result, models.Backlink{
			SourcePath:  src,
			SourceTitle: displayTitle(src, content),
			Context:     linkContext(content, title),
		})
	}
	return result, nil
}

// displayTitle prefers the frontmatter title and falls back to the
// filename stem. Headings are deliberately not consulted here: the
// backlink list should show the note's own name, not its first section.
func displayTitle(notePath string, content []byte) string {
	fm, _ := parser.ParseFrontmatter(string(content))
	if fm.Title != "" {
		return fm.Title
	}
	base := path.Base(notePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// linkContext returns the first line of content that contains a wikilink
// to title, trimmed and truncated.
func linkContext(content []byte, title string) string {
	needles := []string{
		"[[" + title + "]]",
		"[[" + title + "|",
		"[[" + title + "#",
	}
	for _, line := range strings.Split(string(content), "\n") {
		for _, needle := range needles {
			if strings.Contains(line, needle) {
				return truncate(strings.TrimSpace(line), contextMaxRunes)
			}
		}
	}
	return ""
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// SearchByTitle ranks cached notes against query, best match first:
// exact title match, then prefix, then substring, then in-order
// subsequence. Matching is case-insensitive; within a tier notes keep
// their most-recently-modified order. limit <= 0 means DefaultSearchLimit.
func (e *Engine) SearchByTitle(query string, limit int) ([]models.CachedNote, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	notes, err := e.cache.GetAllNotes()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		if len(notes) > limit {
			notes = notes[:limit]
		}
		return notes, nil
	}

	type ranked struct {
		note models.CachedNote
		tier int
		pos  int
	}
	var matches []ranked
	for i, n := range notes {
		title := strings.ToLower(n.Title)
		var tier int
		switch {
		case title == q:
			tier = 0
		case strings.HasPrefix(title, q):
			tier = 1
		case strings.Contains(title, q):
			tier = 2
		case isSubsequence(q, title):
			tier = 3
		default:
			continue
		}
		matches = append(matches, ranked{note: n, tier: tier, pos: i})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].tier != matches[j].tier {
			return matches[i].tier < matches[j].tier
		}
		return matches[i].pos < matches[j].pos
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]models.CachedNote, len(matches))
	for i, m := range matches {
		out[i] = m.note
	}
	return out, nil
}

// isSubsequence reports whether every rune of q appears in s in order.
func isSubsequence(q, s string) bool {
	qr := []rune(q)
	i := 0
	for _, r := range s {
		if i < len(qr) && r == qr[i] {
			i++
		}
	}
	return i == len(qr)
}

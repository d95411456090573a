// Package noteservice is the application core: it coordinates vault
// storage, the index cache, the reconciler, and the query engine behind
// a single API used by the HTTP handlers and the MCP server.
package noteservice

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/halvard/synapse/internal/apperr"
	"github.com/halvard/synapse/internal/cache"
	"github.com/halvard/synapse/internal/checksum"
	"github.com/halvard/synapse/internal/models"
	"github.com/halvard/synapse/internal/parser"
	"github.com/halvard/synapse/internal/query"
	"github.com/halvard/synapse/internal/reconcile"
	"github.com/halvard/synapse/internal/storage"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path      string            `json:"path"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Checksum  string            `json:"checksum"`
	Backlinks []models.Backlink `json:"backlinks"`
	Starred   bool              `json:"starred"`
	WordCount int               `json:"word_count"`
}

// Service coordinates storage, cache, and index operations.
type Service struct {
	store   storage.Provider
	cache   cache.Store
	rec     *reconcile.Reconciler
	queries *query.Engine
}

// NewService creates a new note service.
func NewService(store storage.Provider, c cache.Store, rec *reconcile.Reconciler, q *query.Engine) *Service {
	return &Service{store: store, cache: c, rec: rec, queries: q}
}

// ListEntries returns the vault tree under dir, directories first.
func (s *Service) ListEntries(_ context.Context, dir string) ([]models.VaultEntry, error) {
	return s.store.List(dir)
}

// GetNote reads a note from storage and enriches it with cache state
// and backlinks.
func (s *Service) GetNote(_ context.Context, notePath string) (*NoteDetail, error) {
	data, err := s.store.Read(notePath)
	if err != nil {
		return nil, err
	}
	return s.buildNoteDetail(notePath, data)
}

// CreateNote creates a note named after title under dir, seeding it
// with a frontmatter block, and indexes it. It returns the new note's
// vault-relative path inside the detail.
func (s *Service) CreateNote(_ context.Context, dir, title string) (*NoteDetail, error) {
	safe := sanitizeFilename(title)
	if safe == "" {
		return nil, fmt.Errorf("noteservice: empty note title: %w", apperr.ErrParse)
	}
	notePath := safe + ".md"
	if dir != "" {
		notePath = path.Join(dir, notePath)
	}
	if _, err := s.store.Read(notePath); err == nil {
		return nil, fmt.Errorf("noteservice: %s: %w", notePath, apperr.ErrAlreadyExists)
	}

	now := time.Now().UTC().Format("2006-01-02")
	content := []byte(fmt.Sprintf("---\ntitle: %s\ncreated: %s\nmodified: %s\ntags: []\n---\n\n", title, now, now))

	if err := s.store.Write(notePath, content); err != nil {
		return nil, err
	}
	if err := s.rec.ReindexNote(notePath); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(notePath, content)
}

// UpdateNote writes updated content with optimistic concurrency: a
// non-empty ifMatch must equal the checksum of the current content.
func (s *Service) UpdateNote(_ context.Context, notePath string, content []byte, ifMatch string) (*NoteDetail, error) {
	existing, err := s.store.Read(notePath)
	if err != nil {
		return nil, err
	}
	if !checksum.Matches(existing, ifMatch) {
		return nil, fmt.Errorf("noteservice: %s changed since last read: %w", notePath, apperr.ErrConflict)
	}
	if err := s.store.Write(notePath, content); err != nil {
		return nil, err
	}
	if err := s.rec.ReindexNote(notePath); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(notePath, content)
}

// DeleteNote removes a note from storage and from the cache.
func (s *Service) DeleteNote(_ context.Context, notePath string) error {
	if err := s.store.Delete(notePath); err != nil {
		return err
	}
	return s.rec.RemoveNote(notePath)
}

// RenameNote moves a note to a new vault-relative path and reconciles
// both cache entries.
func (s *Service) RenameNote(_ context.Context, oldPath, newPath string) error {
	if _, err := s.store.Read(newPath); err == nil {
		return fmt.Errorf("noteservice: %s: %w", newPath, apperr.ErrAlreadyExists)
	}
	if err := s.store.Move(oldPath, newPath); err != nil {
		return err
	}
	if err := s.rec.RemoveNote(oldPath); err != nil {
		return err
	}
	return s.rec.ReindexNote(newPath)
}

// DuplicateNote copies a note to the first free "<stem> N<ext>" sibling
// and indexes the copy. Returns the new vault-relative path.
func (s *Service) DuplicateNote(_ context.Context, notePath string) (string, error) {
	if _, err := s.store.Read(notePath); err != nil {
		return "", err
	}
	dir := path.Dir(notePath)
	ext := path.Ext(notePath)
	stem := strings.TrimSuffix(path.Base(notePath), ext)

	var target string
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s %d%s", stem, counter, ext)
		if dir != "." {
			candidate = path.Join(dir, candidate)
		}
		if _, err := s.store.Read(candidate); err != nil {
			target = candidate
			break
		}
	}

	if err := s.store.Copy(notePath, target); err != nil {
		return "", err
	}
	if err := s.rec.ReindexNote(target); err != nil {
		return "", err
	}
	return target, nil
}

// GetAllNotes lists cached notes, most recently modified first.
func (s *Service) GetAllNotes(_ context.Context) ([]models.CachedNote, error) {
	return s.cache.GetAllNotes()
}

// ToggleStar flips a note's starred flag and returns the new value.
func (s *Service) ToggleStar(_ context.Context, notePath string) (bool, error) {
	return s.cache.ToggleStar(notePath)
}

// GetBacklinks returns notes linking to title, with context snippets.
func (s *Service) GetBacklinks(_ context.Context, title string) ([]models.Backlink, error) {
	return s.queries.Backlinks(title)
}

// GetOutgoingLinks returns the link targets recorded for a note.
func (s *Service) GetOutgoingLinks(_ context.Context, notePath string) ([]string, error) {
	return s.cache.OutgoingLinks(notePath)
}

// GetAllLinks returns every link edge in the vault.
func (s *Service) GetAllLinks(_ context.Context) ([]models.Link, error) {
	return s.cache.AllLinks()
}

// SearchNotes ranks cached notes by title match quality.
func (s *Service) SearchNotes(_ context.Context, q string, limit int) ([]models.CachedNote, error) {
	return s.queries.SearchByTitle(q, limit)
}

// GetAllTags returns every tag with its note count.
func (s *Service) GetAllTags(_ context.Context) ([]models.TagCount, error) {
	return s.cache.AllTags()
}

// GetNotesByTag returns the paths of notes carrying tag.
func (s *Service) GetNotesByTag(_ context.Context, tag string) ([]string, error) {
	return s.cache.NotesByTag(tag)
}

// GetHeadings returns a note's outline in document order.
func (s *Service) GetHeadings(_ context.Context, notePath string) ([]models.Heading, error) {
	return s.cache.Headings(notePath)
}

// ReindexVault runs a full reconciliation sweep.
func (s *Service) ReindexVault(_ context.Context) error {
	return s.rec.ReindexVault()
}

// ReindexNote re-indexes a single note.
func (s *Service) ReindexNote(_ context.Context, notePath string) error {
	return s.rec.ReindexNote(notePath)
}

// GetSetting returns a persisted setting value; ok is false when unset.
func (s *Service) GetSetting(_ context.Context, key string) (string, bool, error) {
	return s.cache.GetSetting(key)
}

// SetSetting stores a setting value, replacing any previous one.
func (s *Service) SetSetting(_ context.Context, key, value string) error {
	return s.cache.SetSetting(key, value)
}

// buildNoteDetail constructs a NoteDetail from raw data without
// re-reading the file.
func (s *Service) buildNoteDetail(notePath string, data []byte) (*NoteDetail, error) {
	fm, _ := parser.ParseFrontmatter(string(data))
	body := parser.StripFrontmatter(string(data))
	headings := parser.ScanHeadings(body)
	title := parser.InferTitle(notePath, headings, fm.Title)

	backlinks, err := s.queries.Backlinks(title)
	if err != nil {
		return nil, err
	}

	detail := &NoteDetail{
		Path:      notePath,
		Title:     title,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Backlinks: backlinks,
		WordCount: parser.CountWords(body),
	}
	if cached, err := s.cache.GetNote(notePath); err == nil {
		detail.Starred = cached.Starred
	}
	return detail, nil
}

// sanitizeFilename replaces characters that are unsafe in filenames
// with underscores and trims surrounding whitespace.
func sanitizeFilename(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return strings.TrimSpace(sanitized)
}

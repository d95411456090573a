// Package reconcile keeps the cache consistent with the vault's file tree.
// It is the only writer of the cache: full-vault sweeps, single-note
// reindexes, and deletion propagation all funnel through a Reconciler.
package reconcile

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/halvard/synapse/internal/cache"
	"github.com/halvard/synapse/internal/models"
	"github.com/halvard/synapse/internal/parser"
	"github.com/halvard/synapse/internal/storage"
)

// Reconciler drives reindexing. A single mutex serializes every mutation:
// two reindexes of the same note would interleave their delete-then-insert
// sequences, and the sweep and a single-note reindex may not overlap either.
// Reindexing is rare next to read queries, so one global lock is enough.
type Reconciler struct {
	mu     sync.Mutex
	store  storage.Provider
	cache  cache.Store
	logger *slog.Logger
}

// New creates a Reconciler over the given vault storage and cache.
func New(store storage.Provider, c cache.Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, cache: c, logger: logger}
}

// ReindexVault brings the whole cache up to date with the vault:
//   - every readable .md file is extracted and upserted
//   - cached paths absent from the disk snapshot are deleted
//
// A note that fails to read or extract is skipped with a warning; one bad
// note must not abort the sweep. The disk listing is snapshotted once at
// the start, so files created while the sweep runs are never pruned.
// The sweep is idempotent: rerunning it on an unchanged vault changes
// nothing.
func (r *Reconciler) ReindexVault() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notes, err := r.store.ListNotes("")
	if err != nil {
		return fmt.Errorf("reconcile: list vault: %w", err)
	}

	disk := make(map[string]struct{}, len(notes))
	for _, entry := range notes {
		disk[entry.Path] = struct{}{}

		content, err := r.store.Read(entry.Path)
		if err != nil {
			r.logger.Warn("reconcile: read failed", slog.String("path", entry.Path), slog.String("error", err.Error()))
			continue
		}
		if err := r.indexOne(entry.Path, string(content)); err != nil {
			// Store errors are not per-note noise; they abort the sweep.
			return err
		}
		r.logger.Debug("reconcile: indexed", slog.String("path", entry.Path))
	}

	cached, err := r.cache.AllPaths()
	if err != nil {
		return err
	}
	for p := range cached {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := r.cache.DeleteNote(p); err != nil {
			return err
		}
		r.logger.Debug("reconcile: removed stale", slog.String("path", p))
	}
	return nil
}

// ReindexNote re-reads a single note and replaces its full cache record.
// Unlike the sweep it fails loudly: a single-note reindex is triggered by a
// specific save, create, or rename, so its error is directly actionable.
func (r *Reconciler) ReindexNote(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, err := r.store.Read(path)
	if err != nil {
		return err
	}
	return r.indexOne(path, string(content))
}

// RemoveNote propagates a file deletion (or a rename away from .md) to the
// cache immediately, without waiting for the next sweep.
func (r *Reconciler) RemoveNote(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.DeleteNote(path)
}

// indexOne extracts one note and writes its record. The note row is
// upserted before its link/tag/heading sets are replaced; the four writes
// are not one transaction, which is an accepted gap healed by the next
// sweep. Caller holds r.mu.
func (r *Reconciler) indexOne(path, content string) error {
	fm, err := parser.ParseFrontmatter(content)
	if err != nil {
		// Malformed frontmatter degrades to an empty one, never fails a reindex.
		r.logger.Warn("reconcile: frontmatter ignored", slog.String("path", path), slog.String("error", err.Error()))
	}
	idx := parser.IndexNote(path, content, fm.Tags)

	title := idx.Title
	if fm.Title != "" {
		title = fm.Title
	}

	note := models.CachedNote{
		Path:       path,
		Title:      title,
		CreatedAt:  fm.Created,
		ModifiedAt: fm.Modified,
		WordCount:  idx.WordCount,
	}
	if err := r.cache.UpsertNote(note); err != nil {
		return err
	}
	if err := r.cache.ReplaceLinks(path, idx.OutgoingLinks); err != nil {
		return err
	}
	if err := r.cache.ReplaceTags(path, idx.Tags); err != nil {
		return err
	}
	return r.cache.ReplaceHeadings(path, idx.Headings)
}

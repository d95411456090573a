package cache

import "github.com/halvard/synapse/internal/models"

// Store defines the cache operations the reconciler and query layer depend
// on. Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type Store interface {
	UpsertNote(n models.CachedNote) error
	GetNote(path string) (*models.CachedNote, error)
	GetAllNotes() ([]models.CachedNote, error)
	AllPaths() (map[string]struct{}, error)
	DeleteNote(path string) error
	ToggleStar(path string) (bool, error)

	ReplaceLinks(sourcePath string, targets []string) error
	Backlinks(targetName string) ([]string, error)
	OutgoingLinks(sourcePath string) ([]string, error)
	AllLinks() ([]models.Link, error)

	ReplaceTags(notePath string, tags []string) error
	AllTags() ([]models.TagCount, error)
	NotesByTag(tag string) ([]string, error)

	ReplaceHeadings(notePath string, headings []models.Heading) error
	Headings(notePath string) ([]models.Heading, error)

	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error

	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

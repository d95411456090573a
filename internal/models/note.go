// Package models defines the domain types for Synapse.
package models

// VaultEntry describes one file or directory inside the vault.
type VaultEntry struct {
	// Path is relative to the vault root, e.g. "Projects/Synapse.md".
	Path string `json:"path"`
	// Name is the filename without extension, used for display.
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	// Size is the file size in bytes; zero for directories.
	Size int64 `json:"size"`
	// Modified is unix seconds; zero when unavailable.
	Modified int64 `json:"modified"`
}

// Heading is one heading extracted from a note body.
type Heading struct {
	Text string `json:"text"`
	// Level is 1–6.
	Level int `json:"level"`
	// Line is the 1-based line number where the heading appears.
	Line int `json:"line"`
}

// NoteIndex is the metadata extracted from a single note in one pass.
// It is ephemeral: the reconciler derives it from file content and writes
// it into the cache, it is never persisted as-is.
type NoteIndex struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	// OutgoingLinks holds raw wikilink targets in document order.
	// Duplicates are preserved; the cache deduplicates on write.
	OutgoingLinks []string `json:"outgoing_links"`
	// Tags are "#"-prefixed, deduplicated, in encounter order.
	Tags      []string  `json:"tags"`
	Headings  []Heading `json:"headings"`
	WordCount int       `json:"word_count"`
}

// CachedNote is the persisted per-note row mirroring filesystem state.
// CreatedAt and ModifiedAt come from frontmatter, not file mtime, and are
// empty when the note declares neither.
type CachedNote struct {
	Path       string `json:"path"`
	Title      string `json:"title"`
	CreatedAt  string `json:"created_at,omitempty"`
	ModifiedAt string `json:"modified_at,omitempty"`
	WordCount  int    `json:"word_count"`
	Starred    bool   `json:"starred"`
}

// Link is a directed edge from a note to a raw wikilink target. The target
// is a title, not a path: it may reference a note that does not exist yet.
type Link struct {
	SourcePath string `json:"source_path"`
	TargetName string `json:"target_name"`
}

// TagCount is one entry of the tag aggregation.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Backlink is one incoming reference to a note title.
type Backlink struct {
	SourcePath  string `json:"source_path"`
	SourceTitle string `json:"source_title"`
	// Context is the first line of the source that contains the wikilink,
	// trimmed and truncated; empty when no such line survives on disk.
	Context string `json:"context"`
}

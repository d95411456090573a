package api

import (
	"github.com/halvard/synapse/internal/models"
	"github.com/halvard/synapse/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Dir   string `json:"dir" example:"projects"`
	Title string `json:"title" example:"Weekly Plan" validate:"required"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
}

// RenameNoteRequest is the request body for moving a note.
type RenameNoteRequest struct {
	OldPath string `json:"old_path" example:"inbox/draft.md" validate:"required"`
	NewPath string `json:"new_path" example:"projects/plan.md" validate:"required"`
}

// PathRequest carries a single vault-relative note path.
type PathRequest struct {
	Path string `json:"path" example:"projects/plan.md" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListResponse wraps the cached note listing.
type NoteListResponse struct {
	Notes []models.CachedNote `json:"notes"`
	Total int                 `json:"total" example:"42"`
}

// SearchResponse wraps title search results.
type SearchResponse struct {
	Results []models.CachedNote `json:"results"`
}

// BacklinksResponse wraps backlinks for a title.
type BacklinksResponse struct {
	Backlinks []models.Backlink `json:"backlinks"`
}

// LinksResponse wraps link edges.
type LinksResponse struct {
	Links []models.Link `json:"links"`
}

// TagsResponse wraps the tag listing.
type TagsResponse struct {
	Tags []models.TagCount `json:"tags"`
}

// OutlineResponse wraps a note's headings.
type OutlineResponse struct {
	Headings []models.Heading `json:"headings"`
}

// StarResponse reports the starred flag after a toggle.
type StarResponse struct {
	Path    string `json:"path"`
	Starred bool   `json:"starred"`
}

// SettingResponse is a single settings entry.
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingRequest is the request body for storing a setting.
type SettingRequest struct {
	Value string `json:"value" validate:"required"`
}

// VaultResponse wraps the vault tree listing.
type VaultResponse struct {
	Entries []models.VaultEntry `json:"entries"`
}

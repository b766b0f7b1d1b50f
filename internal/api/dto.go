package api

import (
	"github.com/starford/notemeta/internal/models"
	"github.com/starford/notemeta/internal/noteservice"
)

// NoteDetail is the note metadata response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// EditNoteRequest is the request body for editing note metadata.
type EditNoteRequest = noteservice.EditRequest

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []models.NoteFile `json:"notes" validate:"required"`
	Total int               `json:"total" example:"42" validate:"required"`
}

// FieldsResponse lists the distinct metadata keys of the vault.
type FieldsResponse struct {
	Fields []models.FieldCount `json:"fields" validate:"required"`
}

// SearchResponse wraps the paths of matching notes.
type SearchResponse struct {
	Paths []string `json:"paths" example:"daily/2024-05-01.md" validate:"required"`
}

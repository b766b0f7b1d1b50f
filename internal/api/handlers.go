package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notemeta/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the URL (everything after /api/notes/).
// Supports encoded slashes from OpenAPI clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List indexed notes with pagination
//	@Tags			notes
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	notes, total, err := h.svc.ListNotes(r.Context(), limit, offset)
	if err != nil {
		writeError(w, "list notes", "", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: total})
}

// GetNote handles GET /api/notes/*.
//
//	@Summary		Get the metadata of a note
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Param			content	query		bool	false	"Include the note content"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.GetMetadata(r.Context(), path, boolParam(r, "content"))
	if err != nil {
		writeError(w, "get note", path, err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// EditNote handles PATCH /api/notes/*.
//
//	@Summary		Apply metadata edits to a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string			true	"Note path"
//	@Param			If-Match	header	string			false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	EditNoteRequest	true	"Edits to apply"
//	@Success		200		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [patch]
func (h *Handler) EditNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	var req EditNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if len(req.Edits) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("edits are required"))
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	if ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`); ifMatch != "" {
		req.IfMatch = ifMatch
	}
	if boolParam(r, "dry_run") {
		req.DryRun = true
	}

	note, err := h.svc.ApplyEdits(r.Context(), path, req)
	if err != nil {
		writeError(w, "edit note", path, err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// Fields handles GET /api/fields.
//
//	@Summary		List distinct metadata keys with note counts
//	@Tags			fields
//	@Produce		json
//	@Param			kind	query		string	false	"Metadata kind"	Enums(frontmatter, inline)
//	@Success		200		{object}	FieldsResponse
//	@Security		BearerAuth
//	@Router			/fields [get]
func (h *Handler) Fields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.svc.Fields(r.Context(), r.URL.Query().Get("kind"))
	if err != nil {
		writeError(w, "list fields", "", err)
		return
	}
	writeJSON(w, http.StatusOK, FieldsResponse{Fields: fields})
}

// Search handles GET /api/search.
//
//	@Summary		Find notes by metadata key and value
//	@Tags			search
//	@Produce		json
//	@Param			key		query		string	true	"Metadata key"
//	@Param			value	query		string	false	"Metadata value"
//	@Param			kind	query		string	false	"Metadata kind"	Enums(frontmatter, inline)
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'key' is required"))
		return
	}
	var value *string
	if q.Has("value") {
		v := q.Get("value")
		value = &v
	}
	paths, err := h.svc.Find(r.Context(), key, value, q.Get("kind"))
	if err != nil {
		writeError(w, "search", "", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Paths: paths})
}

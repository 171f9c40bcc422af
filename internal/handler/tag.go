package handler

import (
	"log/slog"
	"net/http"

	models "savesite/internal/domain/models/bookmarks"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
	"savesite/internal/httputil"
)

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tagService bookmarksSvc.TagService
	logger     *slog.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(tagService bookmarksSvc.TagService, logger *slog.Logger) *TagHandler {
	return &TagHandler{
		tagService: tagService,
		logger:     logger,
	}
}

type listTagsQuery struct {
	Scope string `json:"scope" validate:"omitempty,oneof=global folder all"`
}

type renameTagRequest struct {
	Name string `json:"name" validate:"required"`
}

// ListTags resolves tags for a context
// GET /api/tags?scope=global|folder|all&folder_id=
func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	q := listTagsQuery{Scope: r.URL.Query().Get("scope")}
	if err := validate.Validate(&q); err != nil {
		handleError(w, err)
		return
	}

	query := &bookmarksSvc.TagQuery{Scope: models.TagQueryScope(q.Scope)}
	if folderID := r.URL.Query().Get("folder_id"); folderID != "" {
		query.FolderID = &folderID
	}

	tags, err := h.tagService.ListTags(r.Context(), httputil.GetUserID(r), query)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tags)
}

// CreateTag creates a tag at the top of its scope
// POST /api/tags
// Returns 409 with the existing tag when the name is taken
func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req bookmarksSvc.CreateTagRequest
	if !decode(w, r, &req) {
		return
	}
	userID := httputil.GetUserID(r)

	tag, err := h.tagService.CreateTag(r.Context(), userID, &req)
	if err != nil {
		handleCreateConflict(w, err, func(id string) (*models.Tag, error) {
			return h.tagService.GetTag(r.Context(), userID, id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tag)
}

// RenameTag renames a tag
// PATCH /api/tags/{id}
func (h *TagHandler) RenameTag(w http.ResponseWriter, r *http.Request) {
	var req renameTagRequest
	if !decode(w, r, &req) {
		return
	}

	tag, err := h.tagService.RenameTag(r.Context(), httputil.GetUserID(r), r.PathValue("id"), req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tag)
}

// DeleteTag deletes a tag
// DELETE /api/tags/{id}
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.tagService.DeleteTag(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// ReorderTags applies absolute positions inside one tag scope
// PUT /api/tags/positions
func (h *TagHandler) ReorderTags(w http.ResponseWriter, r *http.Request) {
	var req bookmarksSvc.ReorderTagsRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.tagService.ReorderTags(r.Context(), httputil.GetUserID(r), &req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

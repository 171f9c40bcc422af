package handler

import (
	"log/slog"
	"net/http"

	models "savesite/internal/domain/models/bookmarks"
	bookmarksSvc "savesite/internal/domain/services/bookmarks"
	"savesite/internal/httputil"
)

// WebsiteHandler handles website HTTP requests
type WebsiteHandler struct {
	websiteService bookmarksSvc.WebsiteService
	logger         *slog.Logger
}

// NewWebsiteHandler creates a new website handler
func NewWebsiteHandler(websiteService bookmarksSvc.WebsiteService, logger *slog.Logger) *WebsiteHandler {
	return &WebsiteHandler{
		websiteService: websiteService,
		logger:         logger,
	}
}

type addToFolderRequest struct {
	FolderID string `json:"folder_id" validate:"required"`
}

type starredRequest struct {
	Starred *bool `json:"starred" validate:"required"`
}

type reorderRequest struct {
	Positions []models.PositionUpdate `json:"positions" validate:"required,min=1,dive"`
}

// CreateWebsite saves a website at the top of its folder
// POST /api/websites
func (h *WebsiteHandler) CreateWebsite(w http.ResponseWriter, r *http.Request) {
	var req bookmarksSvc.CreateWebsiteRequest
	if !decode(w, r, &req) {
		return
	}
	req.OwnerID = httputil.GetUserID(r)

	website, err := h.websiteService.CreateWebsite(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, website)
}

// GetWebsite retrieves a website
// GET /api/websites/{id}
func (h *WebsiteHandler) GetWebsite(w http.ResponseWriter, r *http.Request) {
	website, err := h.websiteService.GetWebsite(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, website)
}

// UpdateWebsite applies a partial update
// PATCH /api/websites/{id}
func (h *WebsiteHandler) UpdateWebsite(w http.ResponseWriter, r *http.Request) {
	var req bookmarksSvc.UpdateWebsiteRequest
	if !decode(w, r, &req) {
		return
	}

	website, err := h.websiteService.UpdateWebsite(r.Context(), httputil.GetUserID(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, website)
}

// DeleteWebsite deletes a website from every folder
// DELETE /api/websites/{id}
func (h *WebsiteHandler) DeleteWebsite(w http.ResponseWriter, r *http.Request) {
	if err := h.websiteService.DeleteWebsite(r.Context(), httputil.GetUserID(r), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// MoveWebsite moves a website to the end of another folder
// POST /api/websites/{id}/move
func (h *WebsiteHandler) MoveWebsite(w http.ResponseWriter, r *http.Request) {
	var req bookmarksSvc.MoveWebsiteRequest
	if !decode(w, r, &req) {
		return
	}

	website, err := h.websiteService.MoveWebsite(r.Context(), httputil.GetUserID(r), r.PathValue("id"), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, website)
}

// AddToFolder files a website in one more folder
// POST /api/websites/{id}/folders
func (h *WebsiteHandler) AddToFolder(w http.ResponseWriter, r *http.Request) {
	var req addToFolderRequest
	if !decode(w, r, &req) {
		return
	}

	website, err := h.websiteService.AddToFolder(r.Context(), httputil.GetUserID(r), r.PathValue("id"), req.FolderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, website)
}

// RemoveFromFolder takes a website out of one folder
// DELETE /api/websites/{id}/folders/{folderId}
func (h *WebsiteHandler) RemoveFromFolder(w http.ResponseWriter, r *http.Request) {
	website, err := h.websiteService.RemoveFromFolder(r.Context(), httputil.GetUserID(r),
		r.PathValue("id"), r.PathValue("folderId"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, website)
}

// SetStarred stars or unstars a website
// PUT /api/websites/{id}/starred
func (h *WebsiteHandler) SetStarred(w http.ResponseWriter, r *http.Request) {
	var req starredRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.websiteService.SetStarred(r.Context(), httputil.GetUserID(r), r.PathValue("id"), *req.Starred); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// ListStarred lists starred websites
// GET /api/websites/starred
func (h *WebsiteHandler) ListStarred(w http.ResponseWriter, r *http.Request) {
	websites, err := h.websiteService.ListStarred(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, websites)
}

// ListByFolder lists a folder's websites in order
// GET /api/folders/{id}/websites
func (h *WebsiteHandler) ListByFolder(w http.ResponseWriter, r *http.Request) {
	websites, err := h.websiteService.ListByFolder(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, websites)
}

// ReorderWebsites applies absolute positions inside a folder
// PUT /api/folders/{id}/websites/positions
func (h *WebsiteHandler) ReorderWebsites(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.websiteService.ReorderWebsites(r.Context(), httputil.GetUserID(r), r.PathValue("id"), req.Positions); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

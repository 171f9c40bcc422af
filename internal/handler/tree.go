package handler

import (
	"log/slog"
	"net/http"

	bookmarksSvc "savesite/internal/domain/services/bookmarks"
	"savesite/internal/httputil"
)

// TreeHandler handles HTTP requests for the bookmark tree
type TreeHandler struct {
	treeService bookmarksSvc.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService bookmarksSvc.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the user's nested folder/website tree
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.treeService.GetTree(r.Context(), httputil.GetUserID(r))
	if err != nil {
		h.logger.Error("tree fetch failed", "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// Search matches folders and websites in the user's tree
// GET /api/search?q=
func (h *TreeHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.treeService.Search(r.Context(), httputil.GetUserID(r), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, results)
}

package handler

import (
	"log/slog"
	"net/http"

	"savesite/internal/httputil"
	"savesite/internal/preview"
)

// ThumbnailHandler resolves link previews for the website form
type ThumbnailHandler struct {
	fetcher preview.Fetcher
	logger  *slog.Logger
}

// NewThumbnailHandler creates a new thumbnail handler
func NewThumbnailHandler(fetcher preview.Fetcher, logger *slog.Logger) *ThumbnailHandler {
	return &ThumbnailHandler{
		fetcher: fetcher,
		logger:  logger,
	}
}

type thumbnailRequest struct {
	URL string `json:"url" validate:"required,http_url"`
}

// GetThumbnail returns title, description and image for a link
// POST /api/thumbnail
func (h *ThumbnailHandler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	var req thumbnailRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		h.logger.Warn("link preview failed", "url", req.URL, "error", err)
		httputil.RespondError(w, http.StatusBadGateway, "failed to generate link preview")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, p)
}

package handler

import (
	"net/http"

	"savesite/internal/httputil"
)

// GetMe returns the signed-in user
// GET /api/users/me
func GetMe(w http.ResponseWriter, r *http.Request) {
	user := httputil.GetUser(r)
	if user == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, user)
}

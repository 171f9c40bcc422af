package handler

import (
	"context"
	"net/http"
	"time"

	"savesite/internal/httputil"
)

// Pinger is satisfied by both store backends
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the store answers
// GET /health
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			httputil.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

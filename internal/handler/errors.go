package handler

import (
	"errors"
	"net/http"

	"savesite/internal/domain"
	"savesite/internal/httputil"
	"savesite/internal/validation"
)

var validate = validation.New()

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var fieldErr *validation.Error

	switch {
	case errors.As(err, &fieldErr):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(), map[string]any{
			"errors": fieldErr.Fields,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]any{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleCreateConflict answers a create conflict with 409 and the existing
// resource; any other error goes through handleError.
func handleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func(id string) (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) && conflictErr.ResourceID != "" {
		existing, fetchErr := fetchFn(conflictErr.ResourceID)
		if fetchErr != nil {
			handleError(w, fetchErr)
			return
		}
		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}
	handleError(w, err)
}

// decode parses and validates a JSON body. It writes the 400 response itself
// and reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := validate.Validate(dest); err != nil {
		handleError(w, err)
		return false
	}
	return true
}

package httpx

import (
	"errors"
	"net/http"

	"github.com/almanar-edu/almanar/internal/shared"
)

// RespondError maps domain errors to JSON HTTP responses. Internal detail
// never reaches the client; unclassified errors collapse to a generic 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Error(w, http.StatusNotFound, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrDuplicate):
		Error(w, http.StatusConflict, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrForbidden):
		Error(w, http.StatusForbidden, shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrSessionRevoked):
		Error(w, http.StatusUnauthorized, shared.UserSafeMessage(err))
	default:
		Error(w, http.StatusInternalServerError, shared.GenericErrorMessage)
	}
}

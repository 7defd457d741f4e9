package handler

import (
	"errors"
	"net/http"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// StatusOf maps a domain error to the HTTP status and the message shown to
// the visitor. ok is false for errors outside the domain taxonomy.
func StatusOf(err error) (code int, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, "sign in required", true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden", true
	case errors.Is(err, domain.ErrNotConfirmed):
		return http.StatusConflict, "action not confirmed", true
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found", true
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway, "the user directory is unavailable", true
	}
	return http.StatusInternalServerError, "internal server error", false
}

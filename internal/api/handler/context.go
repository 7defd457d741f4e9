package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/api/middleware"
	"github.com/99minutos/admin-console/internal/core/service"
)

// sessionOf returns the request's session, failing fast when the Session
// middleware did not run.
func sessionOf(c echo.Context) (*service.Session, error) {
	s := middleware.SessionFrom(c)
	if s == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	return s, nil
}

// pageData seeds a template payload with the admitted credential.
func pageData(c echo.Context) map[string]any {
	return map[string]any{
		"Credential": middleware.CredentialFrom(c),
	}
}

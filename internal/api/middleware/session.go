package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/service"
	"github.com/99minutos/admin-console/internal/infrastructure/store"
)

const (
	sessionKey    = "session"
	credentialKey = "credential"
)

// Session opens the visitor's credential store and attaches a
// *service.Session to the echo context.
func Session(provider store.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := provider.Open(c.Response(), c.Request())
			if err != nil {
				return fmt.Errorf("open session: %w", err)
			}
			c.Set(sessionKey, service.NewSession(s))
			return next(c)
		}
	}
}

// SessionFrom returns the session attached by Session, or nil.
func SessionFrom(c echo.Context) *service.Session {
	s, _ := c.Get(sessionKey).(*service.Session)
	return s
}

// CredentialFrom returns the credential admitted by Guard.
func CredentialFrom(c echo.Context) domain.Credential {
	cred, _ := c.Get(credentialKey).(domain.Credential)
	return cred
}

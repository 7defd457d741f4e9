package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/core/service"
	"github.com/99minutos/admin-console/internal/pkg/metrics"
)

// Guard admits the request when the visitor's stored credential satisfies
// requiredRole and redirects (302) to the guard's target otherwise. It must
// run after Session.
func Guard(g *service.Guard, requiredRole string) echo.MiddlewareFunc {
	roleLabel := requiredRole
	if roleLabel == "" {
		roleLabel = "any"
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if sess == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session middleware not installed")
			}
			cred, err := sess.Credential(c.Request().Context())
			if err != nil {
				return err
			}

			d := g.Authorize(cred, requiredRole)
			if !d.Allowed {
				outcome := "default"
				if d.Target == g.LoginRoute() {
					outcome = "login"
				}
				metrics.GuardDecisionsTotal.WithLabelValues(outcome, roleLabel).Inc()
				return c.Redirect(http.StatusFound, d.Target)
			}

			metrics.GuardDecisionsTotal.WithLabelValues("allow", roleLabel).Inc()
			c.Set(credentialKey, cred)
			return next(c)
		}
	}
}

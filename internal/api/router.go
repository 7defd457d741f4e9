package api

import (
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/api/handler"
	"github.com/99minutos/admin-console/internal/api/middleware"
	"github.com/99minutos/admin-console/internal/api/view"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
	"github.com/99minutos/admin-console/internal/infrastructure/store"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Log       zerolog.Logger
	Directory ports.UserDirectory
	Auth      ports.AuthGateway
	Sessions  store.Provider
	Reporter  ports.FailureReporter
	Guard     *service.Guard
	Readiness []handler.ReadinessCheck

	// SessionKey seeds the CSRF token key.
	SessionKey string
	// Secure marks cookies Secure and enforces HTTPS referer checks.
	Secure bool
	// Registry receives the HTTP request metrics. A fresh registry is used
	// when nil.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = view.MustNewRenderer()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	guard := deps.Guard
	if guard == nil {
		guard = service.NewGuard("", "")
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "admin_console",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	if !deps.Secure {
		e.Use(echo.WrapMiddleware(plaintext))
	}
	e.Use(echo.WrapMiddleware(csrfProtect(deps.SessionKey, deps.Secure)))

	// --- Probes and metrics (no session) ---
	e.GET("/health", handler.Liveness)
	e.GET("/health/ready", handler.NewHealthHandler(deps.Readiness...).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))

	// --- Console ---
	session := middleware.Session(deps.Sessions)
	signedIn := middleware.Guard(guard, "")
	admin := middleware.Guard(guard, domain.RoleAdmin)

	authHandler := handler.NewAuthHandler(deps.Auth, guard, deps.Log)
	e.GET(guard.LoginRoute(), authHandler.LoginPage, session)
	e.POST(guard.LoginRoute(), authHandler.Login, session)
	e.POST("/logout", authHandler.Logout, session)

	e.GET("/", handler.Home, session, signedIn)

	usersHandler := handler.NewUsersHandler(deps.Directory, deps.Reporter, guard, deps.Log)
	e.GET("/users", usersHandler.List, session, admin)
	e.POST("/users/:id/role", usersHandler.ToggleRole, session, admin)
	e.GET("/users/:id/delete", usersHandler.ConfirmDelete, session, admin)
	e.POST("/users/:id/delete", usersHandler.Delete, session, admin)

	return e
}

// plaintext tells the CSRF middleware the request arrived over plain HTTP,
// relaxing its HTTPS-only referer check.
func plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfProtect(sessionKey string, secure bool) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("csrf:" + sessionKey))
	return csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName("csrf_token"),
	)
}

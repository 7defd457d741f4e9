package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/api/handler"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/infrastructure/store"
)

type nopDirectory struct{}

func (nopDirectory) ListUsers(context.Context, string) ([]domain.UserRecord, error) { return nil, nil }
func (nopDirectory) ToggleRole(context.Context, string, string) error                { return nil }
func (nopDirectory) DeleteUser(context.Context, string, string) error                { return nil }

type nopAuth struct{}

func (nopAuth) Login(context.Context, string, string) (*ports.LoginResult, error) {
	return nil, domain.ErrNotAuthenticated
}

func newTestRouter(t *testing.T, checks ...handler.ReadinessCheck) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Log:        zerolog.Nop(),
		Directory:  nopDirectory{},
		Auth:       nopAuth{},
		Sessions:   store.NewServerSideProvider(store.MemoryBackend(store.NewMemoryCache(time.Hour)), store.CookieOptions{TTL: time.Hour}),
		Readiness:  checks,
		SessionKey: "0123456789abcdef0123456789abcdef",
	})
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, handler.ReadinessCheck{Name: "directory", Check: func(context.Context) error { return nil }})

	if rec := do(r, http.MethodGet, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("/health: expected 200, got %d", rec.Code)
	}
	rec := do(r, http.MethodGet, "/health/ready")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"directory"`) {
		t.Fatalf("/health/ready: unexpected %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_GuardedRoutesRedirectToLogin(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/", "/users", "/users/3/delete"} {
		rec := do(r, http.MethodGet, path)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
			t.Fatalf("%s: expected 302 to /login, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestRouter_LoginPageCarriesCSRFField(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodGet, "/login")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="csrf_token"`) {
		t.Fatalf("login form lacks CSRF field: %s", rec.Body.String())
	}
}

func TestRouter_PostWithoutCSRFTokenRejected(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodPost, "/logout")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	r := newTestRouter(t)
	do(r, http.MethodGet, "/health")

	rec := do(r, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "admin_console_requests_total") {
		t.Fatalf("request metrics missing from /metrics")
	}
}

func TestRouter_UnknownRouteIsHTML404(t *testing.T) {
	r := newTestRouter(t)

	rec := do(r, http.MethodGet, "/nope")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "404 Not Found") {
		t.Fatalf("unexpected 404 page: %d %s", rec.Code, rec.Body.String())
	}
}

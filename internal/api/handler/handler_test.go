package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/api/middleware"
	"github.com/99minutos/admin-console/internal/api/view"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
	"github.com/99minutos/admin-console/internal/infrastructure/store"
)

type fixedProvider struct {
	store ports.CredentialStore
}

func (p fixedProvider) Open(http.ResponseWriter, *http.Request) (ports.CredentialStore, error) {
	return p.store, nil
}

type stubDirectory struct {
	mu        sync.Mutex
	users     []domain.UserRecord
	listErr   error
	toggleErr error
	deleteErr error
	calls     []string
	tokens    []string
}

func (d *stubDirectory) ListUsers(_ context.Context, token string) ([]domain.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "list")
	d.tokens = append(d.tokens, token)
	return d.users, d.listErr
}

func (d *stubDirectory) ToggleRole(_ context.Context, token, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "toggle:"+id)
	d.tokens = append(d.tokens, token)
	return d.toggleErr
}

func (d *stubDirectory) DeleteUser(_ context.Context, token, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "delete:"+id)
	d.tokens = append(d.tokens, token)
	return d.deleteErr
}

type stubAuth struct {
	loginFn func(ctx context.Context, email, password string) (*ports.LoginResult, error)
}

func (s *stubAuth) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

type stubReporter struct {
	mu      sync.Mutex
	reports []domain.FailureReport
}

func (r *stubReporter) Report(_ context.Context, rep domain.FailureReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

func signedToken(t *testing.T, role, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"sub":  sub,
	}).SignedString([]byte("issuer-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// testEnv bundles an echo instance with a seeded in-memory session.
type testEnv struct {
	e     *echo.Echo
	store *store.MemoryStore
	guard *service.Guard
}

func newTestEnv(t *testing.T, token string) *testEnv {
	t.Helper()
	e := echo.New()
	e.Renderer = view.MustNewRenderer()
	e.Validator = NewValidator()

	mem := store.NewMemoryStore(store.NewMemoryCache(time.Hour), "t:")
	if token != "" {
		if err := mem.Set(context.Background(), domain.KeyToken, token); err != nil {
			t.Fatalf("seed token: %v", err)
		}
	}
	return &testEnv{e: e, store: mem, guard: service.NewGuard("/login", "/")}
}

// call runs h behind the Session middleware, and behind Guard when
// requiredRole is not "-".
func (env *testEnv) call(t *testing.T, method, target string, form url.Values, params map[string]string, requiredRole string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}

	chain := h
	if requiredRole != "-" {
		chain = middleware.Guard(env.guard, requiredRole)(chain)
	}
	chain = middleware.Session(fixedProvider{env.store})(chain)

	if err := chain(c); err != nil {
		env.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func (env *testEnv) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, err := env.store.Get(context.Background(), key)
	if err != nil {
		return "", false
	}
	return v, true
}

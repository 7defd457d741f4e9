package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubStore struct {
	values map[string]string
	getErr error
}

func newStubStore() *stubStore {
	return &stubStore{values: make(map[string]string)}
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (s *stubStore) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *stubStore) Remove(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

type stubDirectory struct {
	mu sync.Mutex

	calls    []string // "list", "toggle:<id>", "delete:<id>"
	tokens   []string
	lists    [][]domain.UserRecord // successive ListUsers responses
	listErr  error
	mutErr   error
	onToggle func()
}

func (d *stubDirectory) ListUsers(_ context.Context, token string) ([]domain.UserRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "list")
	d.tokens = append(d.tokens, token)
	if d.listErr != nil {
		return nil, d.listErr
	}
	if len(d.lists) == 0 {
		return []domain.UserRecord{}, nil
	}
	next := d.lists[0]
	if len(d.lists) > 1 {
		d.lists = d.lists[1:]
	}
	out := make([]domain.UserRecord, len(next))
	copy(out, next)
	return out, nil
}

func (d *stubDirectory) ToggleRole(_ context.Context, token, id string) error {
	d.mu.Lock()
	d.calls = append(d.calls, "toggle:"+id)
	d.tokens = append(d.tokens, token)
	hook := d.onToggle
	d.mu.Unlock()
	if hook != nil {
		hook()
	}
	return d.mutErr
}

func (d *stubDirectory) DeleteUser(_ context.Context, token, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "delete:"+id)
	d.tokens = append(d.tokens, token)
	return d.mutErr
}

func (d *stubDirectory) callLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

type stubConfirmer struct {
	answer  bool
	err     error
	prompts []string
}

func (c *stubConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

type stubReporter struct {
	mu      sync.Mutex
	reports []domain.FailureReport
}

func (r *stubReporter) Report(_ context.Context, report domain.FailureReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) Token(context.Context) (string, error) {
	return s.token, s.err
}

var errBoom = errors.New("boom")

// signedToken builds an HS256 token carrying the given claims.
func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func callsEqual(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/core/domain"
)

var sampleUsers = []domain.UserRecord{
	{ID: "1", Username: "ana", Email: "ana@example.com", Role: domain.RoleAdmin},
	{ID: "2", Username: "beto", Email: "beto@example.com", Role: domain.RoleUser},
}

func TestUsersHandler_List(t *testing.T) {
	token := signedToken(t, domain.RoleAdmin, "1")
	env := newTestEnv(t, token)
	dir := &stubDirectory{users: sampleUsers}
	h := NewUsersHandler(dir, nil, env.guard, zerolog.Nop())

	rec := env.call(t, http.MethodGet, "/users", nil, nil, domain.RoleAdmin, h.List)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"ana@example.com", "beto@example.com", `action="/users/2/role"`, `href="/users/2/delete"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
	if len(dir.tokens) != 1 || dir.tokens[0] != token {
		t.Fatalf("expected one call with the stored token, got %v", dir.tokens)
	}
}

func TestUsersHandler_List_FailureShowsBannerAndReports(t *testing.T) {
	env := newTestEnv(t, signedToken(t, domain.RoleAdmin, "1"))
	dir := &stubDirectory{listErr: &domain.NetworkError{Op: "list users", Status: 500}}
	rep := &stubReporter{}
	h := NewUsersHandler(dir, rep, env.guard, zerolog.Nop())

	rec := env.call(t, http.MethodGet, "/users", nil, nil, domain.RoleAdmin, h.List)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "the user directory is unavailable") {
		t.Fatalf("expected error banner, got %s", rec.Body.String())
	}
	if len(rep.reports) != 1 || rep.reports[0].Op != "load" || rep.reports[0].Actor != "1" {
		t.Fatalf("unexpected reports: %+v", rep.reports)
	}
}

func TestUsersHandler_List_NonAdminRedirected(t *testing.T) {
	env := newTestEnv(t, signedToken(t, domain.RoleUser, "2"))
	dir := &stubDirectory{users: sampleUsers}
	h := NewUsersHandler(dir, nil, env.guard, zerolog.Nop())

	rec := env.call(t, http.MethodGet, "/users", nil, nil, domain.RoleAdmin, h.List)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(dir.calls) != 0 {
		t.Fatalf("directory must not be called, got %v", dir.calls)
	}
}

func TestUsersHandler_ToggleRole_ReloadsAndRedirects(t *testing.T) {
	env := newTestEnv(t, signedToken(t, domain.RoleAdmin, "1"))
	dir := &stubDirectory{users: sampleUsers}
	h := NewUsersHandler(dir, nil, env.guard, zerolog.Nop())

	rec := env.call(t, http.MethodPost, "/users/2/role", url.Values{}, map[string]string{"id": "2"}, domain.RoleAdmin, h.ToggleRole)

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/users" {
		t.Fatalf("expected 303 to /users, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if got := strings.Join(dir.calls, ","); got != "toggle:2,list" {
		t.Fatalf("calls = %s, want toggle:2,list", got)
	}
}

func TestUsersHandler_ToggleRole_FailureStillReloads(t *testing.T) {
	env := newTestEnv(t, signedToken(t, domain.RoleAdmin, "1"))
	dir := &stubDirectory{users: sampleUsers, toggleErr: &domain.NetworkError{Op: "toggle role", Status: 500}}
	h := NewUsersHandler(dir, nil, env.guard, zerolog.Nop())

	rec := env.call(t, http.MethodPost, "/users/2/role", url.Values{}, map[string]string{"id": "2"}, domain.RoleAdmin, h.ToggleRole)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if got := strings.Join(dir.calls, ","); got != "toggle:2,list" {
		t.Fatalf("calls = %s, want toggle:2,list", got)
	}
	if !strings.Contains(rec.Body.String(), "beto@example.com") {
		t.Fatal("expected the reloaded list to be rendered")
	}
}

func TestUsersHandler_Delete_Declined(t *testing.T) {
	env := newTestEnv(t, signedToken(t, domain.RoleAdmin, "1"))
	dir := &stubDirectory{users: sampleUsers}
	h := NewUsersHandler(dir, nil, env.guard, zerolog.Nop())

	form := url.Values{"confirm": {"no"}}
	rec := env.call(t, http.MethodPost, "/users/2/delete", form, map[string]string{"id": "2"}, domain.RoleAdmin, h.Delete)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if len(dir.calls) != 0 {
		t.Fatalf("declined delete must send nothing, got %v", dir.calls)
	}
}

func TestUsersHandler_Delete_Confirmed(t *testing.T) {
	env := newTestEnv(t, signedToken(t, domain.RoleAdmin, "1"))
	dir := &stubDirectory{users: sampleUsers}
	h := NewUsersHandler(dir, nil, env.guard, zerolog.Nop())

	form := url.Values{"confirm": {"yes"}}
	rec := env.call(t, http.MethodPost, "/users/2/delete", form, map[string]string{"id": "2"}, domain.RoleAdmin, h.Delete)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := strings.Join(dir.calls, ","); got != "delete:2,list" {
		t.Fatalf("calls = %s, want delete:2,list", got)
	}
}

func TestUsersHandler_Delete_UnexpectedErrorPropagates(t *testing.T) {
	env := newTestEnv(t, signedToken(t, domain.RoleAdmin, "1"))
	dir := &stubDirectory{users: sampleUsers, deleteErr: errors.New("boom")}
	h := NewUsersHandler(dir, nil, env.guard, zerolog.Nop())

	form := url.Values{"confirm": {"yes"}}
	rec := env.call(t, http.MethodPost, "/users/2/delete", form, map[string]string{"id": "2"}, domain.RoleAdmin, h.Delete)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestUsersHandler_ConfirmDelete(t *testing.T) {
	env := newTestEnv(t, signedToken(t, domain.RoleAdmin, "1"))
	h := NewUsersHandler(&stubDirectory{}, nil, env.guard, zerolog.Nop())

	rec := env.call(t, http.MethodGet, "/users/2/delete", nil, map[string]string{"id": "2"}, domain.RoleAdmin, h.ConfirmDelete)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `action="/users/2/delete"`) {
		t.Fatalf("confirm form missing: %s", rec.Body.String())
	}
}

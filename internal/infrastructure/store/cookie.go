package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

// CookieName is the name of the encrypted cookie holding credentials.
const CookieName = "admin_console"

// CookieStore exposes one request's gorilla session as a credential store.
// Every write saves the session so the response carries the new cookie.
type CookieStore struct {
	session *sessions.Session
	r       *http.Request
	w       http.ResponseWriter
}

var _ ports.CredentialStore = (*CookieStore)(nil)

func (c *CookieStore) Get(_ context.Context, key string) (string, error) {
	v, ok := c.session.Values[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return s, nil
}

func (c *CookieStore) Set(_ context.Context, key, value string) error {
	c.session.Values[key] = value
	return c.save()
}

func (c *CookieStore) Remove(_ context.Context, key string) error {
	if _, ok := c.session.Values[key]; !ok {
		return nil
	}
	delete(c.session.Values, key)
	return c.save()
}

func (c *CookieStore) save() error {
	if err := c.session.Save(c.r, c.w); err != nil {
		return fmt.Errorf("save session cookie: %w", err)
	}
	return nil
}

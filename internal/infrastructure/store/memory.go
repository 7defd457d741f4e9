// Package store holds the credential store backends: a YAML file for the
// terminal front-end, and cookie, redis or in-process storage for the web.
package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

// MemoryStore keeps credentials in process memory. Several stores may share
// one cache by using distinct prefixes.
type MemoryStore struct {
	c      *gocache.Cache
	prefix string
	ttl    time.Duration
}

var _ ports.CredentialStore = (*MemoryStore)(nil)

// NewMemoryCache returns a cache suitable for sharing between MemoryStores.
func NewMemoryCache(defaultTTL time.Duration) *gocache.Cache {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return gocache.New(defaultTTL, time.Minute)
}

func NewMemoryStore(c *gocache.Cache, prefix string) *MemoryStore {
	return &MemoryStore{c: c, prefix: prefix, ttl: gocache.DefaultExpiration}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(m.prefix + key)
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.c.Set(m.prefix+key, value, m.ttl)
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.c.Delete(m.prefix + key)
	return nil
}

package store

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/99minutos/admin-console/internal/core/ports"
)

// Provider opens the credential store belonging to the visitor of one request.
type Provider interface {
	Open(w http.ResponseWriter, r *http.Request) (ports.CredentialStore, error)
}

// CookieOptions are shared by every cookie the providers issue.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

func (o CookieOptions) sessionOptions() *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   int(o.TTL.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieProvider keeps credentials inside an encrypted, signed cookie.
type CookieProvider struct {
	sessions *sessions.CookieStore
}

// NewCookieProvider derives the signing key from key and the encryption key
// from its first 32 bytes. key must be at least 32 bytes long.
func NewCookieProvider(key []byte, opts CookieOptions) *CookieProvider {
	cs := sessions.NewCookieStore(key, key[:32])
	cs.Options = opts.sessionOptions()
	return &CookieProvider{sessions: cs}
}

func (p *CookieProvider) Open(w http.ResponseWriter, r *http.Request) (ports.CredentialStore, error) {
	// A cookie that fails to decode yields a fresh session, which reads as
	// logged out. The error is deliberately ignored.
	s, _ := p.sessions.Get(r, CookieName)
	return &CookieStore{session: s, r: r, w: w}, nil
}

// SessionIDCookie names the cookie that carries a server-side session id.
const SessionIDCookie = "admin_console_sid"

// Backend returns the server-side store for one session id.
type Backend func(sid string) ports.CredentialStore

// ServerSideProvider keeps only a random session id in the visitor's cookie
// and the credentials themselves in a backend such as redis.
type ServerSideProvider struct {
	backend Backend
	opts    CookieOptions
}

func NewServerSideProvider(backend Backend, opts CookieOptions) *ServerSideProvider {
	return &ServerSideProvider{backend: backend, opts: opts}
}

// RedisBackend stores each session under admin_console:session:<sid>:.
func RedisBackend(client redis.Cmdable, ttl time.Duration) Backend {
	return func(sid string) ports.CredentialStore {
		return NewRedisStore(client, "admin_console:session:"+sid+":", ttl)
	}
}

// MemoryBackend stores sessions in a process-local cache. Sessions do not
// survive a restart and are not shared between replicas.
func MemoryBackend(c *gocache.Cache) Backend {
	return func(sid string) ports.CredentialStore {
		return NewMemoryStore(c, sid+":")
	}
}

func (p *ServerSideProvider) Open(w http.ResponseWriter, r *http.Request) (ports.CredentialStore, error) {
	if c, err := r.Cookie(SessionIDCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return p.backend(c.Value), nil
		}
	}
	// No usable id yet: mint one, but only issue the cookie once something
	// is written, so anonymous visitors never get a session.
	sid := uuid.NewString()
	return &lazySession{
		CredentialStore: p.backend(sid),
		issue: func() {
			opts := p.opts.sessionOptions()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionIDCookie,
				Value:    sid,
				Path:     opts.Path,
				MaxAge:   opts.MaxAge,
				HttpOnly: opts.HttpOnly,
				Secure:   opts.Secure,
				SameSite: opts.SameSite,
			})
		},
	}, nil
}

type lazySession struct {
	ports.CredentialStore
	once  sync.Once
	issue func()
}

func (s *lazySession) Set(ctx context.Context, key, value string) error {
	if err := s.CredentialStore.Set(ctx, key, value); err != nil {
		return err
	}
	s.once.Do(s.issue)
	return nil
}

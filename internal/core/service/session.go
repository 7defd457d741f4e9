package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
)

// userIDClaims lists the claims that may carry the user identifier, in order
// of preference.
var userIDClaims = []string{"sub", "id", "user_id", "userId"}

// DecodeCredential reads the role claim from the middle segment of a JWT
// without checking its header, signature or expiry. Any token that cannot be decoded
// yields an error wrapping domain.ErrDecode.
func DecodeCredential(token string) (domain.Credential, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Credential{}, fmt.Errorf("empty token: %w", domain.ErrDecode)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return domain.Credential{}, fmt.Errorf("%w: expected 3 segments, got %d", domain.ErrDecode, len(parts))
	}
	seg, err := jwt.NewParser().DecodeSegment(parts[1])
	if err != nil {
		return domain.Credential{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(seg, &claims); err != nil {
		return domain.Credential{}, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}

	cred := domain.Credential{Token: token, Present: true}
	cred.Role, _ = claims["role"].(string)
	for _, k := range userIDClaims {
		if id := claimString(claims[k]); id != "" {
			cred.UserID = id
			break
		}
	}
	return cred, nil
}

func claimString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}

// Session is the explicit session context handed to everything that needs the
// stored credential. Only Login and Logout write to the store.
type Session struct {
	store ports.CredentialStore
}

func NewSession(store ports.CredentialStore) *Session {
	return &Session{store: store}
}

// Credential returns the stored credential. A missing or undecodable token is
// reported as an absent credential, not as an error; only store failures are
// returned.
func (s *Session) Credential(ctx context.Context) (domain.Credential, error) {
	token, err := s.store.Get(ctx, domain.KeyToken)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return domain.Credential{}, nil
	}
	if err != nil {
		return domain.Credential{}, fmt.Errorf("read credential: %w", err)
	}

	cred, err := DecodeCredential(token)
	if err != nil {
		return domain.Credential{}, nil
	}

	if id, err := s.store.Get(ctx, domain.KeyUserID); err == nil && id != "" {
		cred.UserID = id
	}
	return cred, nil
}

// Token returns the raw bearer token for authenticated calls.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, domain.KeyToken)
	if errors.Is(err, domain.ErrKeyNotFound) || (err == nil && token == "") {
		return "", domain.ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

// Login stores a freshly issued token and the auxiliary user identifier.
func (s *Session) Login(ctx context.Context, token, userID string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrNotAuthenticated
	}
	if err := s.store.Set(ctx, domain.KeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if userID == "" {
		return s.store.Remove(ctx, domain.KeyUserID)
	}
	if err := s.store.Set(ctx, domain.KeyUserID, userID); err != nil {
		return fmt.Errorf("store user id: %w", err)
	}
	return nil
}

// Logout removes both keys. Removing an absent key is not an error.
func (s *Session) Logout(ctx context.Context) error {
	for _, k := range []string{domain.KeyToken, domain.KeyUserID} {
		if err := s.store.Remove(ctx, k); err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
			return fmt.Errorf("remove %s: %w", k, err)
		}
	}
	return nil
}

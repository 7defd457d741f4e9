package ports

import "context"

// CredentialStore is client-side persistent key/value storage for the bearer
// token and the auxiliary user identifier.
type CredentialStore interface {
	// Get returns domain.ErrKeyNotFound when the key is not set.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

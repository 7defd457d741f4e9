package ports

import (
	"context"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// UserDirectory is the remote user-directory service. Every call carries the
// caller's bearer token; the service is the authority on what it permits.
type UserDirectory interface {
	ListUsers(ctx context.Context, token string) ([]domain.UserRecord, error)
	// ToggleRole asks the service to flip the user's role. The resulting role
	// is derived server-side, so callers must reload to learn it.
	ToggleRole(ctx context.Context, token, id string) error
	DeleteUser(ctx context.Context, token, id string) error
}

// LoginResult is what the external authentication endpoint hands back.
type LoginResult struct {
	Token string
	User  *domain.UserRecord
}

// AuthGateway exchanges credentials for a bearer token. Token issuance lives
// entirely in the external service.
type AuthGateway interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

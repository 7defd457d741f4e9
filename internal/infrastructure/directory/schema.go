package directory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/99minutos/admin-console/internal/core/domain"
)

// flexibleID accepts both numeric and string identifiers on the wire.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*f = flexibleID(n.String())
	return nil
}

type userPayload struct {
	ID       flexibleID `json:"id"       validate:"required"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     string     `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token" validate:"required"`
	User  *userPayload `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toDomain(p userPayload) domain.UserRecord {
	return domain.UserRecord{
		ID:       string(p.ID),
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role,
	}
}

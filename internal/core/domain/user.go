package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// UserRecord is a user as reported by the user-directory service. Records are
// replaced wholesale on every fetch and never patched locally.
type UserRecord struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}


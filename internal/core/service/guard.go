package service

import "github.com/99minutos/admin-console/internal/core/domain"

const (
	DefaultLoginRoute   = "/login"
	DefaultLandingRoute = "/"
)

// Decision is the outcome of a guard check. When Allowed is false, Target
// names the route the caller should navigate to.
type Decision struct {
	Allowed bool
	Target  string
}

// Guard decides whether a visitor may see a protected route. It is the single
// route guard used by both the web and the terminal front-ends.
type Guard struct {
	loginRoute   string
	defaultRoute string
}

func NewGuard(loginRoute, defaultRoute string) *Guard {
	if loginRoute == "" {
		loginRoute = DefaultLoginRoute
	}
	if defaultRoute == "" {
		defaultRoute = DefaultLandingRoute
	}
	return &Guard{loginRoute: loginRoute, defaultRoute: defaultRoute}
}

func (g *Guard) LoginRoute() string   { return g.loginRoute }
func (g *Guard) DefaultRoute() string { return g.defaultRoute }

// Authorize is pure: it never touches storage or performs navigation.
// An empty requiredRole admits any signed-in visitor.
func (g *Guard) Authorize(cred domain.Credential, requiredRole string) Decision {
	if !cred.Present || cred.Token == "" {
		return Decision{Target: g.loginRoute}
	}
	if requiredRole != "" && cred.Role != requiredRole {
		return Decision{Target: g.defaultRoute}
	}
	return Decision{Allowed: true}
}

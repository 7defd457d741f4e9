package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/api/view"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
)

// AuthHandler serves the sign-in and sign-out flows. Tokens are issued by the
// directory service; this handler only stores what it receives.
type AuthHandler struct {
	auth  ports.AuthGateway
	guard *service.Guard
	log   zerolog.Logger
}

func NewAuthHandler(auth ports.AuthGateway, guard *service.Guard, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, guard: guard, log: log}
}

type loginForm struct {
	Email    string `form:"email"    validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,max=1024"`
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageLogin, map[string]any{"Email": ""})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.loginFailed(c, http.StatusBadRequest, "", "invalid form")
	}
	form.Email = strings.TrimSpace(form.Email)
	if err := c.Validate(&form); err != nil {
		return h.loginFailed(c, http.StatusBadRequest, form.Email, err.Error())
	}

	ctx := c.Request().Context()
	res, err := h.auth.Login(ctx, form.Email, form.Password)
	if err != nil {
		var netErr *domain.NetworkError
		if errors.As(err, &netErr) && (netErr.Status == http.StatusUnauthorized || netErr.Status == http.StatusBadRequest) {
			return h.loginFailed(c, http.StatusUnauthorized, form.Email, "invalid email or password")
		}
		return err
	}

	sess, err := sessionOf(c)
	if err != nil {
		return err
	}
	var userID string
	if res.User != nil {
		userID = res.User.ID
	}
	if err := sess.Login(ctx, res.Token, userID); err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return h.loginFailed(c, http.StatusBadGateway, form.Email, "the directory returned an empty token")
		}
		return err
	}

	h.log.Info().Str("user_id", userID).Msg("signed in")
	return c.Redirect(http.StatusSeeOther, h.guard.DefaultRoute())
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := sessionOf(c)
	if err != nil {
		return err
	}
	if err := sess.Logout(c.Request().Context()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, h.guard.LoginRoute())
}

func (h *AuthHandler) loginFailed(c echo.Context, status int, email, msg string) error {
	return c.Render(status, view.PageLogin, map[string]any{
		"Email": email,
		"Error": msg,
	})
}

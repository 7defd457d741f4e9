package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/admin-console/internal/api/middleware"
	"github.com/99minutos/admin-console/internal/api/view"
	"github.com/99minutos/admin-console/internal/core/domain"
	"github.com/99minutos/admin-console/internal/core/ports"
	"github.com/99minutos/admin-console/internal/core/service"
)

const usersRoute = "/users"

// UsersHandler renders the user list and runs the mutate-then-reload
// actions. Each request gets its own list, mounted on entry and torn down on
// return.
type UsersHandler struct {
	directory ports.UserDirectory
	reporter  ports.FailureReporter
	guard     *service.Guard
	log       zerolog.Logger
}

func NewUsersHandler(directory ports.UserDirectory, reporter ports.FailureReporter, guard *service.Guard, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{directory: directory, reporter: reporter, guard: guard, log: log}
}

// formConfirmer answers the delete confirmation from the submitted form.
type formConfirmer struct {
	confirmed bool
}

func (f formConfirmer) Confirm(context.Context, string) (bool, error) {
	return f.confirmed, nil
}

func (h *UsersHandler) mount(c echo.Context, confirmer ports.Confirmer) (*service.UserList, error) {
	sess, err := sessionOf(c)
	if err != nil {
		return nil, err
	}
	list := service.NewUserList(h.directory, sess, confirmer, h.reporter, h.log).
		WithActor(middleware.CredentialFrom(c).UserID)
	return list, nil
}

// List handles GET /users.
func (h *UsersHandler) List(c echo.Context) error {
	list, err := h.mount(c, nil)
	if err != nil {
		return err
	}
	defer list.Close()

	_, err = list.Load(c.Request().Context())
	return h.render(c, list, err)
}

// ToggleRole handles POST /users/:id/role.
func (h *UsersHandler) ToggleRole(c echo.Context) error {
	list, err := h.mount(c, nil)
	if err != nil {
		return err
	}
	defer list.Close()

	if err := list.ChangeRole(c.Request().Context(), c.Param("id")); err != nil {
		return h.render(c, list, err)
	}
	return c.Redirect(http.StatusSeeOther, usersRoute)
}

// ConfirmDelete handles GET /users/:id/delete.
func (h *UsersHandler) ConfirmDelete(c echo.Context) error {
	data := pageData(c)
	data["ID"] = c.Param("id")
	return c.Render(http.StatusOK, view.PageConfirmDelete, data)
}

// Delete handles POST /users/:id/delete. Only confirm=yes deletes; anything
// else is a declined confirmation and returns to the list untouched.
func (h *UsersHandler) Delete(c echo.Context) error {
	list, err := h.mount(c, formConfirmer{confirmed: c.FormValue("confirm") == "yes"})
	if err != nil {
		return err
	}
	defer list.Close()

	err = list.Delete(c.Request().Context(), c.Param("id"))
	switch {
	case err == nil, service.IsDeclined(err):
		return c.Redirect(http.StatusSeeOther, usersRoute)
	default:
		return h.render(c, list, err)
	}
}

// render shows the list's current snapshot, with err as a banner. A missing
// token sends the visitor back to sign in.
func (h *UsersHandler) render(c echo.Context, list *service.UserList, err error) error {
	status := http.StatusOK
	data := pageData(c)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return c.Redirect(http.StatusFound, h.guard.LoginRoute())
		}
		code, msg, known := StatusOf(err)
		if !known {
			return err
		}
		status = code
		data["Error"] = msg
	}

	snap := list.Snapshot()
	data["Items"] = snap.Items
	data["Loading"] = snap.Loading
	return c.Render(status, view.PageUsers, data)
}

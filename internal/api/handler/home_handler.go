package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-console/internal/api/view"
)

// Home handles GET / for any signed-in visitor.
func Home(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageHome, pageData(c))
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/api/middleware"
)

// authenticatedEmail returns the email bound by the Auth middleware.
func authenticatedEmail(c echo.Context) (string, bool) {
	email, _ := c.Get(middleware.EmailKey).(string)
	return email, email != ""
}

// unauthorized mirrors the gate's rejection for routes reached without it.
func unauthorized(c echo.Context) error {
	return c.String(http.StatusUnauthorized, middleware.UnauthorizedBody)
}

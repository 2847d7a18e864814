package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Signup creates a new account.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message(err.Error()))
	}

	_, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Email:     req.Email,
		Password:  req.Password,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, message("Signed up successfully"))
	case errors.Is(err, domain.ErrDuplicateEmail):
		return c.JSON(http.StatusBadRequest, message("Email already exists"))
	case errors.Is(err, domain.ErrPasswordTooLong):
		return c.JSON(http.StatusBadRequest, message("Password too long"))
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, message("Missing required fields"))
	default:
		return err
	}
}

// Login verifies credentials and returns a signed token.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Failure      500   {object}  messageResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid payload"))
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, loginResponse{JWTToken: token})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, message(loginFailureMessage(err)))
	case errors.Is(err, domain.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, message("Too many failed login attempts"))
	default:
		return err
	}
}

func loginFailureMessage(err error) string {
	switch err {
	case domain.ErrInvalidEmail:
		return "Invalid email"
	case domain.ErrInvalidPassword:
		return "Invalid password"
	default:
		return "Invalid email or password"
	}
}

// Profile returns the authenticated user.
//
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  profileResponse
// @Failure      401   {string}  string  "Invalid JWT Token"
// @Failure      404   {object}  messageResponse
// @Router       /profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	email, ok := authenticatedEmail(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.authService.Profile(c.Request().Context(), email)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, toProfileResponse(user))
	case errors.Is(err, domain.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, message("User not found"))
	default:
		return err
	}
}

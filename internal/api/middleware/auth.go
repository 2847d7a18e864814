package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
	"github.com/sirpyerre/task-manager/internal/pkg/metrics"
)

// EmailKey is the echo context key holding the authenticated email.
const EmailKey = "email"

// UnauthorizedBody is the plain-text body of every gate rejection.
const UnauthorizedBody = "Invalid JWT Token"

// Auth verifies the bearer token and binds the authenticated principal to both
// the echo context and the request context. Every failure produces the same
// 401 response; only the metric label tells them apart.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return reject(c, "missing_header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return reject(c, "invalid_header")
			}

			email, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				return reject(c, rejectionReason(err))
			}

			c.Set(EmailKey, email)
			req := c.Request()
			c.SetRequest(req.WithContext(domain.WithPrincipal(req.Context(), domain.Principal{Email: email})))

			return next(c)
		}
	}
}

func reject(c echo.Context, reason string) error {
	metrics.GateRejectionsTotal.WithLabelValues(reason).Inc()
	return c.String(http.StatusUnauthorized, UnauthorizedBody)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenBadSignature):
		return "bad_signature"
	default:
		return "malformed"
	}
}

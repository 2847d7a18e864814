package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/infrastructure/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokens(t *testing.T) *security.JWTService {
	t.Helper()
	svc, err := security.NewJWTService(security.TokenConfig{Secret: []byte(testSecret), TTL: time.Hour})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return svc
}

func runGate(t *testing.T, header string, next echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := Auth(newTestTokens(t))(next)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func assertRejected(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Body.String() != UnauthorizedBody {
		t.Fatalf("expected body %q, got %q", UnauthorizedBody, rec.Body.String())
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token, err := newTestTokens(t).Issue("a@x.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	called := false
	rec := runGate(t, "Bearer "+token, func(c echo.Context) error {
		called = true
		if c.Get(EmailKey) != "a@x.com" {
			t.Fatalf("email not set on echo context")
		}
		p, ok := domain.PrincipalFrom(c.Request().Context())
		if !ok || p.Email != "a@x.com" {
			t.Fatalf("principal not bound to request context: %+v", p)
		}
		return c.NoContent(http.StatusOK)
	})

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_SchemeIsCaseInsensitive(t *testing.T) {
	token, _ := newTestTokens(t).Issue("a@x.com")

	rec := runGate(t, "bearer "+token, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	assertRejected(t, runGate(t, "", mustNotRun(t)))
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	token, _ := newTestTokens(t).Issue("a@x.com")

	for _, header := range []string{token, "Token " + token, "Bearer", "Bearer   "} {
		assertRejected(t, runGate(t, header, mustNotRun(t)))
	}
}

func TestAuthMiddleware_TamperedToken(t *testing.T) {
	token, _ := newTestTokens(t).Issue("a@x.com")

	assertRejected(t, runGate(t, "Bearer "+token+"-corrupted", mustNotRun(t)))
	assertRejected(t, runGate(t, "Bearer not.a.token", mustNotRun(t)))
}

func TestAuthMiddleware_ForeignSecret(t *testing.T) {
	other, err := security.NewJWTService(security.TokenConfig{Secret: []byte("ffffffffffffffffffffffffffffffff")})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	token, _ := other.Issue("a@x.com")

	assertRejected(t, runGate(t, "Bearer "+token, mustNotRun(t)))
}

func TestRejectionReason(t *testing.T) {
	cases := map[error]string{
		domain.ErrTokenExpired:      "expired",
		domain.ErrTokenBadSignature: "bad_signature",
		domain.ErrTokenMalformed:    "malformed",
	}
	for err, want := range cases {
		if got := rejectionReason(err); got != want {
			t.Fatalf("rejectionReason(%v) = %q, want %q", err, got, want)
		}
	}
}

package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

const (
	defaultTokenTTL = 24 * time.Hour
	defaultIssuer   = "task-manager"
)

// Claims is the payload of an identity token. email_id is kept as the claim
// name for compatibility with tokens handed out by earlier clients.
type Claims struct {
	Email string `json:"email_id"`
	jwt.RegisteredClaims
}

// TokenConfig configures JWTService. Secret is required.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
	// Now overrides the clock; used by tests.
	Now func() time.Time
}

// JWTService issues and verifies HS256 identity tokens.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTService validates cfg and returns a ready service. The secret is
// copied so later mutation of cfg.Secret has no effect.
func NewJWTService(cfg TokenConfig) (*JWTService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token service: signing secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &JWTService{
		secret: secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    cfg.Now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithIssuedAt(),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(cfg.Now),
		),
	}, nil
}

// Issue signs a token for email that expires after the configured TTL.
func (s *JWTService) Issue(email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("issue token: %w", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the subject email.
func (s *JWTService) Verify(token string) (string, error) {
	if token == "" {
		return "", domain.ErrTokenMalformed
	}

	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", classifyTokenError(err)
	}
	if claims.Email == "" {
		return "", domain.ErrTokenMalformed
	}
	return claims.Email, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return domain.ErrTokenBadSignature
	default:
		return domain.ErrTokenMalformed
	}
}

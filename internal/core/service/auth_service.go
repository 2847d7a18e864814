package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
	"github.com/sirpyerre/task-manager/internal/pkg/metrics"
)

// dummyPassword is hashed once and verified against when a login names an
// unknown email, so that both failure paths cost one bcrypt comparison.
const dummyPassword = "task-manager-timing-equalizer"

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithLoginThrottle limits failed logins per email.
func WithLoginThrottle(t ports.LoginThrottle) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

// WithAuditRecorder emits an audit event for every signup and login attempt.
func WithAuditRecorder(r ports.AuthEventRecorder) AuthOption {
	return func(s *AuthService) { s.audit = r }
}

// WithDistinctLoginErrors makes Login report ErrInvalidEmail and
// ErrInvalidPassword instead of the generic ErrInvalidCredentials.
func WithDistinctLoginErrors(enabled bool) AuthOption {
	return func(s *AuthService) { s.distinctErrors = enabled }
}

// AuthService implements registration, login and profile lookup.
type AuthService struct {
	repo   ports.AuthRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger

	throttle       ports.LoginThrottle
	audit          ports.AuthEventRecorder
	distinctErrors bool
	now            func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo ports.AuthRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a new identity. The password is hashed before the
// existence check so that new and already registered emails take the same
// time; the store's unique index settles concurrent signups.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("signup: email and password are required: %w", domain.ErrInvalidInput)
	}

	user, err := s.signup(ctx, in)
	s.recordAttempt(domain.AuthEventSignup, in.Email, err)

	switch {
	case err == nil:
		metrics.SignupsTotal.WithLabelValues("created").Inc()
		s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user signed up")
	case errors.Is(err, domain.ErrDuplicateEmail):
		metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
	case errors.Is(err, domain.ErrPasswordTooLong):
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
	default:
		metrics.SignupsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("email", in.Email).Msg("signup failed")
	}
	return user, err
}

func (s *AuthService) signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, domain.ErrDuplicateEmail
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("signup: %w", err)
	}

	created, err := s.repo.Insert(ctx, &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         in.Role,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("signup: %w", err)
	}
	return created, nil
}

// Login verifies the credentials and returns a signed token for the email.
// No token is issued on any failure.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)

	token, user, err := s.login(ctx, email, password)
	s.recordAttempt(domain.AuthEventLogin, email, err)

	switch {
	case err == nil:
		metrics.LoginsTotal.WithLabelValues("success").Inc()
		s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	case errors.Is(err, domain.ErrTooManyAttempts):
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		s.log.Warn().Str("email", email).Msg("login throttled")
	default:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("email", email).Msg("login failed")
	}
	return token, user, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" {
		return "", nil, s.invalidEmail()
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allowed(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle unavailable, allowing attempt")
		} else if !allowed {
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, fmt.Errorf("login: %w", err)
		}
		s.equalizeTiming(password)
		s.recordFailure(ctx, email)
		return "", nil, s.invalidEmail()
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("login: user %s: %w", user.ID, err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		return "", nil, s.invalidPassword()
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("reset login throttle")
		}
	}
	return token, user, nil
}

// Profile returns the identity record of the authenticated email.
func (s *AuthService) Profile(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) invalidEmail() error {
	if s.distinctErrors {
		return domain.ErrInvalidEmail
	}
	return domain.ErrInvalidCredentials
}

func (s *AuthService) invalidPassword() error {
	if s.distinctErrors {
		return domain.ErrInvalidPassword
	}
	return domain.ErrInvalidCredentials
}

func (s *AuthService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Warn().Err(err).Msg("compute dummy hash")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("record failed login")
	}
}

func (s *AuthService) recordAttempt(kind domain.AuthEventKind, email string, err error) {
	if s.audit == nil {
		return
	}
	event := domain.AuthEvent{
		Kind:       kind,
		Email:      email,
		Success:    err == nil,
		OccurredAt: s.now().UTC(),
	}
	if err != nil {
		event.Reason = auditReason(err)
	}
	s.audit.Record(event)
}

// auditReason keeps internal error text out of the audit trail.
func auditReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, domain.ErrPasswordTooLong), errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal_error"
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
	"github.com/sirpyerre/task-manager/internal/infrastructure/security"
)

type stubAuthRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	finds   int
	inserts int

	// raceOnInsert simulates a concurrent signup that won the unique index.
	raceOnInsert bool
	findErr      error
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.raceOnInsert {
		return nil, domain.ErrDuplicateEmail
	}
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	copy := cloneUser(user)
	copy.ID = "id-" + user.Email
	r.users[copy.Email] = cloneUser(copy)
	return copy, nil
}

type stubTokens struct {
	issued []string
	err    error
}

func (s *stubTokens) Issue(email string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, email)
	return "token-for-" + email, nil
}

// countingHasher wraps a real hasher and counts calls.
type countingHasher struct {
	ports.PasswordHasher
	hashes   int
	verifies int
}

func (h *countingHasher) Hash(pw string) (string, error) {
	h.hashes++
	return h.PasswordHasher.Hash(pw)
}

func (h *countingHasher) Verify(pw, hash string) (bool, error) {
	h.verifies++
	return h.PasswordHasher.Verify(pw, hash)
}

type stubThrottle struct {
	blocked  bool
	err      error
	failures map[string]int
	resets   int
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: make(map[string]int)}
}

func (t *stubThrottle) Allowed(_ context.Context, _ string) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	return !t.blocked, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, email string) error {
	t.resets++
	delete(t.failures, email)
	return nil
}

type recordingAudit struct {
	events []domain.AuthEvent
}

func (a *recordingAudit) Record(e domain.AuthEvent) {
	a.events = append(a.events, e)
}

func newTestAuthService(repo *stubAuthRepo, tokens *stubTokens, opts ...AuthOption) (*AuthService, *countingHasher) {
	hasher := &countingHasher{PasswordHasher: security.NewBcryptHasher(bcrypt.MinCost)}
	return NewAuthService(repo, hasher, tokens, zerolog.Nop(), opts...), hasher
}

func signupInput(email, password string) ports.SignupInput {
	return ports.SignupInput{FirstName: "A", LastName: "B", Role: "dev", Email: email, Password: password}
}

func TestAuthService_Signup_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(repo, &stubTokens{})

	user, err := svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatalf("expected created user with id, got %+v", user)
	}
	if user.PasswordHash == "pw1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.FirstName != "A" || user.LastName != "B" || user.Role != "dev" {
		t.Fatalf("unexpected profile fields: %+v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
}

func TestAuthService_Signup_Validation(t *testing.T) {
	repo := newStubAuthRepo()
	svc, hasher := newTestAuthService(repo, &stubTokens{})

	for _, in := range []ports.SignupInput{signupInput("", "pw"), signupInput("a@x.com", ""), signupInput("   ", "pw")} {
		if _, err := svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
	if hasher.hashes != 0 || repo.inserts != 0 {
		t.Fatalf("invalid input must not reach hasher or store")
	}
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	repo := newStubAuthRepo()
	svc, hasher := newTestAuthService(repo, &stubTokens{})

	if _, err := svc.Signup(context.Background(), signupInput("a@x.com", "pw1")); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	original := cloneUser(repo.users["a@x.com"])

	_, err := svc.Signup(context.Background(), signupInput("a@x.com", "other"))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if repo.inserts != 1 {
		t.Fatalf("duplicate must be rejected before insert, inserts = %d", repo.inserts)
	}
	if got := repo.users["a@x.com"]; got.PasswordHash != original.PasswordHash {
		t.Fatalf("stored record was mutated")
	}
	if hasher.hashes != 2 {
		t.Fatalf("expected both signups to hash, got %d hashes", hasher.hashes)
	}
}

func TestAuthService_Signup_RaceLostAtStore(t *testing.T) {
	repo := newStubAuthRepo()
	repo.raceOnInsert = true
	svc, _ := newTestAuthService(repo, &stubTokens{})

	_, err := svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail from store, got %v", err)
	}
	if len(repo.users) != 0 {
		t.Fatalf("store must be unchanged")
	}
}

func TestAuthService_Signup_PasswordTooLong(t *testing.T) {
	svc, _ := newTestAuthService(newStubAuthRepo(), &stubTokens{})

	_, err := svc.Signup(context.Background(), signupInput("a@x.com", strings.Repeat("x", 80)))
	if !errors.Is(err, domain.ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestAuthService_Signup_StoreUnavailable(t *testing.T) {
	repo := newStubAuthRepo()
	repo.findErr = domain.ErrStoreUnavailable
	svc, _ := newTestAuthService(repo, &stubTokens{})

	_, err := svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubAuthRepo()
	tokens := &stubTokens{}
	svc, _ := newTestAuthService(repo, tokens)

	if _, err := svc.Signup(context.Background(), signupInput("a@x.com", "pw1")); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token != "token-for-a@x.com" {
		t.Fatalf("unexpected token %q", token)
	}
	if user == nil || user.Email != "a@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubAuthRepo()
	tokens := &stubTokens{}
	svc, _ := newTestAuthService(repo, tokens)

	_, _ = svc.Signup(context.Background(), signupInput("a@x.com", "goodpass"))
	token, _, err := svc.Login(context.Background(), "a@x.com", "badpass")
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if token != "" || len(tokens.issued) != 0 {
		t.Fatalf("no token may be issued on failure")
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	tokens := &stubTokens{}
	svc, hasher := newTestAuthService(newStubAuthRepo(), tokens)

	_, _, err := svc.Login(context.Background(), "ghost@x.com", "pw")
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if hasher.verifies != 1 {
		t.Fatalf("unknown email must still run one verification, got %d", hasher.verifies)
	}
	if len(tokens.issued) != 0 {
		t.Fatalf("no token may be issued on failure")
	}
}

func TestAuthService_Login_DistinctErrors(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(repo, &stubTokens{}, WithDistinctLoginErrors(true))
	_, _ = svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))

	_, _, err := svc.Login(context.Background(), "ghost@x.com", "pw1")
	if err != domain.ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("ErrInvalidEmail must match ErrInvalidCredentials")
	}

	_, _, err = svc.Login(context.Background(), "a@x.com", "nope")
	if err != domain.ErrInvalidPassword {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("ErrInvalidPassword must match ErrInvalidCredentials")
	}
}

func TestAuthService_Login_CorruptStoredHash(t *testing.T) {
	repo := newStubAuthRepo()
	repo.users["a@x.com"] = &domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "not-a-bcrypt-hash"}
	tokens := &stubTokens{}
	svc, _ := newTestAuthService(repo, tokens)

	_, _, err := svc.Login(context.Background(), "a@x.com", "pw")
	if !errors.Is(err, domain.ErrCorruptCredential) {
		t.Fatalf("expected ErrCorruptCredential, got %v", err)
	}
	if errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("corrupt credential must not look like a client fault")
	}
	if len(tokens.issued) != 0 {
		t.Fatalf("no token may be issued on failure")
	}
}

func TestAuthService_Login_TokenFailure(t *testing.T) {
	repo := newStubAuthRepo()
	tokens := &stubTokens{}
	svc, _ := newTestAuthService(repo, tokens)
	_, _ = svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))

	tokens.err = errors.New("signer down")
	token, _, err := svc.Login(context.Background(), "a@x.com", "pw1")
	if err == nil || token != "" {
		t.Fatalf("expected signing failure to surface, got token=%q err=%v", token, err)
	}
}

func TestAuthService_Login_Throttle(t *testing.T) {
	repo := newStubAuthRepo()
	throttle := newStubThrottle()
	svc, _ := newTestAuthService(repo, &stubTokens{}, WithLoginThrottle(throttle))
	_, _ = svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))

	_, _, _ = svc.Login(context.Background(), "a@x.com", "bad")
	_, _, _ = svc.Login(context.Background(), "ghost@x.com", "bad")
	if throttle.failures["a@x.com"] != 1 || throttle.failures["ghost@x.com"] != 1 {
		t.Fatalf("failures not recorded: %v", throttle.failures)
	}

	if _, _, err := svc.Login(context.Background(), "a@x.com", "pw1"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if throttle.resets != 1 || throttle.failures["a@x.com"] != 0 {
		t.Fatalf("successful login must reset the counter")
	}

	throttle.blocked = true
	_, _, err := svc.Login(context.Background(), "a@x.com", "pw1")
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_ThrottleUnavailableFailsOpen(t *testing.T) {
	repo := newStubAuthRepo()
	throttle := newStubThrottle()
	throttle.err = errors.New("redis down")
	svc, _ := newTestAuthService(repo, &stubTokens{}, WithLoginThrottle(throttle))
	_, _ = svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))

	if _, _, err := svc.Login(context.Background(), "a@x.com", "pw1"); err != nil {
		t.Fatalf("expected login to proceed without throttle, got %v", err)
	}
}

func TestAuthService_AuditTrail(t *testing.T) {
	repo := newStubAuthRepo()
	audit := &recordingAudit{}
	svc, _ := newTestAuthService(repo, &stubTokens{}, WithAuditRecorder(audit))

	_, _ = svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))
	_, _ = svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))
	_, _, _ = svc.Login(context.Background(), "a@x.com", "bad")
	_, _, _ = svc.Login(context.Background(), "a@x.com", "pw1")

	want := []struct {
		kind    domain.AuthEventKind
		success bool
		reason  string
	}{
		{domain.AuthEventSignup, true, ""},
		{domain.AuthEventSignup, false, "duplicate_email"},
		{domain.AuthEventLogin, false, "invalid_credentials"},
		{domain.AuthEventLogin, true, ""},
	}
	if len(audit.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(audit.events))
	}
	for i, w := range want {
		got := audit.events[i]
		if got.Kind != w.kind || got.Success != w.success || got.Reason != w.reason || got.Email != "a@x.com" {
			t.Fatalf("event %d: got %+v, want %+v", i, got, w)
		}
		if got.OccurredAt.IsZero() {
			t.Fatalf("event %d has no timestamp", i)
		}
	}
}

func TestAuthService_Profile(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(repo, &stubTokens{})
	_, _ = svc.Signup(context.Background(), signupInput("a@x.com", "pw1"))

	user, err := svc.Profile(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Profile(context.Background(), "ghost@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Profile(context.Background(), ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

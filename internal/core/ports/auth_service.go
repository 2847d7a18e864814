package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// SignupInput carries the fields of a new identity.
type SignupInput struct {
	FirstName string
	LastName  string
	Role      string
	Email     string
	Password  string
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, email string) (*domain.User, error)
}

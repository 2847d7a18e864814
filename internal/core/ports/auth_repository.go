package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// AuthRepository persists identity records.
//
// Insert must report domain.ErrDuplicateEmail when the store's uniqueness
// constraint on email rejects the row, so that racing signups are detected
// even when both passed the existence pre-check.
type AuthRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)
}

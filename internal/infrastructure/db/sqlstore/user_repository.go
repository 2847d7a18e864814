package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// UserRepository implements ports.AuthRepository.
type UserRepository struct {
	store *Store
	now   func() time.Time
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store, now: time.Now}
}

const selectUserByEmail = `SELECT user_id, first_name, last_name, role, email_id, password, created_at
FROM users WHERE email_id = ?`

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	var (
		u         domain.User
		createdAt int64
	)
	err := r.store.db.QueryRowContext(ctx, r.store.rebind(selectUserByEmail), email).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Role, &u.Email, &u.PasswordHash, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, unavailable("find user", err)
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

// Insert stores user under a freshly generated id. The UNIQUE index on
// email_id is the authority on duplicates.
func (r *UserRepository) Insert(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil || user.Email == "" || user.PasswordHash == "" {
		return nil, fmt.Errorf("insert user: %w", domain.ErrInvalidInput)
	}

	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	created := *user
	created.ID = uuid.NewString()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = r.now().UTC()
	}

	_, err := r.store.db.ExecContext(ctx, r.store.rebind(
		`INSERT INTO users (user_id, first_name, last_name, role, email_id, password, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		created.ID, created.FirstName, created.LastName, created.Role,
		created.Email, created.PasswordHash, toMillis(created.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, unavailable("insert user", err)
	}
	created.CreatedAt = fromMillis(toMillis(created.CreatedAt))
	return &created, nil
}

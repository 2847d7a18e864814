package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

// resolveOwner returns explicit when set, otherwise the id of the
// authenticated principal bound to ctx.
func resolveOwner(ctx context.Context, users ports.AuthRepository, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	p, ok := domain.PrincipalFrom(ctx)
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	u, err := users.FindByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// The token outlived its account.
			return "", domain.ErrInvalidReference
		}
		return "", fmt.Errorf("resolve owner: %w", err)
	}
	return u.ID, nil
}

package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// ProjectRepository defines persistence operations for projects.
type ProjectRepository interface {
	// Create reports domain.ErrProjectExists when the title is taken and
	// domain.ErrInvalidReference when the owner does not exist.
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	// List returns projects whose title contains search, newest first.
	List(ctx context.Context, search string) ([]domain.ProjectView, error)
	Update(ctx context.Context, id, title, description string) error
	Delete(ctx context.Context, id string) error
}

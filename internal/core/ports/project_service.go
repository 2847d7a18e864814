package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// CreateProjectInput carries the data needed to create a project.
// UserID defaults to the authenticated user when empty.
type CreateProjectInput struct {
	Title       string
	Description string
	UserID      string
}

// UpdateProjectInput carries the replacement title and description.
type UpdateProjectInput struct {
	ID          string
	Title       string
	Description string
}

type ProjectService interface {
	CreateProject(ctx context.Context, input CreateProjectInput) (*domain.Project, error)
	ListProjects(ctx context.Context, search string) ([]domain.ProjectView, error)
	UpdateProject(ctx context.Context, input UpdateProjectInput) error
	DeleteProject(ctx context.Context, id string) error
}

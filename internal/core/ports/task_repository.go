package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// Create reports domain.ErrInvalidReference when the project or the
	// assignee does not exist.
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	List(ctx context.Context, search string) ([]domain.TaskView, error)
	Update(ctx context.Context, id, title, description, status string) error
	Delete(ctx context.Context, id string) error
}

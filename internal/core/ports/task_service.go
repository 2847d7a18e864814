package ports

import (
	"context"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// CreateTaskInput carries the data needed to create a task.
// UserID defaults to the authenticated user when empty.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	ProjectID   string
	UserID      string
}

// UpdateTaskInput carries the replacement fields of a task.
type UpdateTaskInput struct {
	ID          string
	Title       string
	Description string
	Status      string
}

type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	ListTasks(ctx context.Context, search string) ([]domain.TaskView, error)
	UpdateTask(ctx context.Context, input UpdateTaskInput) error
	DeleteTask(ctx context.Context, id string) error
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
	"github.com/sirpyerre/task-manager/internal/pkg/metrics"
)

// DefaultTaskStatus is assigned when a task is created without a status.
const DefaultTaskStatus = "pending"

type TaskService struct {
	repo  ports.TaskRepository
	users ports.AuthRepository
	log   zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, users ports.AuthRepository, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, users: users, log: log}
}

func (s *TaskService) CreateTask(ctx context.Context, in ports.CreateTaskInput) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.ProjectID == "" {
		return nil, fmt.Errorf("create task: title and project are required: %w", domain.ErrInvalidInput)
	}

	assignee, err := resolveOwner(ctx, s.users, in.UserID)
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = DefaultTaskStatus
	}

	t, err := s.repo.Create(ctx, &domain.Task{
		Title:       title,
		Description: in.Description,
		Status:      status,
		ProjectID:   in.ProjectID,
		UserID:      assignee,
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksCreatedTotal.Inc()
	s.log.Info().Str("task_id", t.ID).Str("project_id", t.ProjectID).Msg("task created")
	return t, nil
}

func (s *TaskService) ListTasks(ctx context.Context, search string) ([]domain.TaskView, error) {
	return s.repo.List(ctx, strings.TrimSpace(search))
}

// UpdateTask replaces title, description and status; all three are required.
func (s *TaskService) UpdateTask(ctx context.Context, in ports.UpdateTaskInput) error {
	if in.ID == "" ||
		strings.TrimSpace(in.Title) == "" ||
		strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.Status) == "" {
		return fmt.Errorf("update task: %w", domain.ErrInvalidInput)
	}
	if err := s.repo.Update(ctx, in.ID, strings.TrimSpace(in.Title), in.Description, strings.TrimSpace(in.Status)); err != nil {
		return err
	}
	s.log.Info().Str("task_id", in.ID).Msg("task updated")
	return nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrTaskNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("task_id", id).Msg("task deleted")
	return nil
}

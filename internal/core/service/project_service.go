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

type ProjectService struct {
	repo  ports.ProjectRepository
	users ports.AuthRepository
	log   zerolog.Logger
}

func NewProjectService(repo ports.ProjectRepository, users ports.AuthRepository, log zerolog.Logger) *ProjectService {
	return &ProjectService{repo: repo, users: users, log: log}
}

// CreateProject stores a new project. When no owner is given the project
// belongs to the authenticated user.
func (s *ProjectService) CreateProject(ctx context.Context, in ports.CreateProjectInput) (*domain.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("create project: title is required: %w", domain.ErrInvalidInput)
	}

	owner, err := resolveOwner(ctx, s.users, in.UserID)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, &domain.Project{
		Title:       title,
		Description: in.Description,
		UserID:      owner,
	})
	if err != nil {
		return nil, err
	}

	metrics.ProjectsCreatedTotal.Inc()
	s.log.Info().Str("project_id", p.ID).Str("user_id", owner).Msg("project created")
	return p, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, search string) ([]domain.ProjectView, error) {
	return s.repo.List(ctx, strings.TrimSpace(search))
}

func (s *ProjectService) UpdateProject(ctx context.Context, in ports.UpdateProjectInput) error {
	if in.ID == "" || strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return fmt.Errorf("update project: %w", domain.ErrInvalidInput)
	}
	if err := s.repo.Update(ctx, in.ID, strings.TrimSpace(in.Title), in.Description); err != nil {
		return err
	}
	s.log.Info().Str("project_id", in.ID).Msg("project updated")
	return nil
}

// DeleteProject removes the project together with its tasks.
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrProjectNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("project_id", id).Msg("project deleted")
	return nil
}

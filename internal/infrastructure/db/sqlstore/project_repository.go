package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// ProjectRepository implements ports.ProjectRepository.
type ProjectRepository struct {
	store *Store
	now   func() time.Time
}

func NewProjectRepository(store *Store) *ProjectRepository {
	return &ProjectRepository{store: store, now: time.Now}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	if p == nil || p.Title == "" || p.UserID == "" {
		return nil, fmt.Errorf("create project: %w", domain.ErrInvalidInput)
	}

	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	created := *p
	created.ID = uuid.NewString()
	created.CreatedAt = fromMillis(toMillis(r.now()))

	_, err := r.store.db.ExecContext(ctx, r.store.rebind(
		`INSERT INTO projects (project_id, project_title, project_description, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`),
		created.ID, created.Title, created.Description, created.UserID, toMillis(created.CreatedAt),
	)
	switch {
	case err == nil:
		return &created, nil
	case isUniqueViolation(err):
		return nil, domain.ErrProjectExists
	case isForeignKeyViolation(err):
		return nil, domain.ErrInvalidReference
	default:
		return nil, unavailable("create project", err)
	}
}

const listProjects = `SELECT p.project_id, p.project_title, p.project_description, p.user_id, p.created_at,
       u.first_name, u.last_name, u.role, u.email_id
FROM projects p
JOIN users u ON u.user_id = p.user_id
WHERE LOWER(p.project_title) LIKE LOWER(?) ESCAPE '\'
ORDER BY p.created_at DESC, p.project_id DESC`

// List returns the projects whose title contains search, newest first.
func (r *ProjectRepository) List(ctx context.Context, search string) ([]domain.ProjectView, error) {
	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(listProjects), likePattern(search))
	if err != nil {
		return nil, unavailable("list projects", err)
	}
	defer rows.Close()

	views := make([]domain.ProjectView, 0)
	for rows.Next() {
		var (
			v         domain.ProjectView
			createdAt int64
		)
		if err := rows.Scan(
			&v.ID, &v.Title, &v.Description, &v.UserID, &createdAt,
			&v.Owner.FirstName, &v.Owner.LastName, &v.Owner.Role, &v.Owner.Email,
		); err != nil {
			return nil, unavailable("scan project", err)
		}
		v.CreatedAt = fromMillis(createdAt)
		v.Owner.UserID = v.UserID
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list projects", err)
	}
	return views, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id, title, description string) error {
	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, r.store.rebind(
		`UPDATE projects SET project_title = ?, project_description = ? WHERE project_id = ?`),
		title, description, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrProjectExists
		}
		return unavailable("update project", err)
	}
	return affectedOrNotFound(res, domain.ErrProjectNotFound)
}

// Delete removes the project; its tasks go with it through ON DELETE CASCADE.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM projects WHERE project_id = ?`), id)
	if err != nil {
		return unavailable("delete project", err)
	}
	return affectedOrNotFound(res, domain.ErrProjectNotFound)
}

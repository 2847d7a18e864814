package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// TaskRepository implements ports.TaskRepository.
type TaskRepository struct {
	store *Store
	now   func() time.Time
}

func NewTaskRepository(store *Store) *TaskRepository {
	return &TaskRepository{store: store, now: time.Now}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	if t == nil || t.Title == "" || t.ProjectID == "" || t.UserID == "" {
		return nil, fmt.Errorf("create task: %w", domain.ErrInvalidInput)
	}

	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	created := *t
	created.ID = uuid.NewString()
	created.CreatedAt = fromMillis(toMillis(r.now()))

	_, err := r.store.db.ExecContext(ctx, r.store.rebind(
		`INSERT INTO tasks (task_id, task_title, task_description, task_status, project_id, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		created.ID, created.Title, created.Description, created.Status,
		created.ProjectID, created.UserID, toMillis(created.CreatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, domain.ErrInvalidReference
		}
		return nil, unavailable("create task", err)
	}
	return &created, nil
}

const listTasks = `SELECT t.task_id, t.task_title, t.task_description, t.task_status, t.project_id, t.user_id, t.created_at,
       u.first_name, u.last_name, u.role, u.email_id, p.project_title
FROM tasks t
JOIN users u ON u.user_id = t.user_id
JOIN projects p ON p.project_id = t.project_id
WHERE LOWER(t.task_title) LIKE LOWER(?) ESCAPE '\'
ORDER BY t.created_at DESC, t.task_id DESC`

// List returns the tasks whose title contains search, newest first.
func (r *TaskRepository) List(ctx context.Context, search string) ([]domain.TaskView, error) {
	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(listTasks), likePattern(search))
	if err != nil {
		return nil, unavailable("list tasks", err)
	}
	defer rows.Close()

	views := make([]domain.TaskView, 0)
	for rows.Next() {
		var (
			v         domain.TaskView
			createdAt int64
		)
		if err := rows.Scan(
			&v.ID, &v.Title, &v.Description, &v.Status, &v.ProjectID, &v.UserID, &createdAt,
			&v.Owner.FirstName, &v.Owner.LastName, &v.Owner.Role, &v.Owner.Email, &v.ProjectTitle,
		); err != nil {
			return nil, unavailable("scan task", err)
		}
		v.CreatedAt = fromMillis(createdAt)
		v.Owner.UserID = v.UserID
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list tasks", err)
	}
	return views, nil
}

func (r *TaskRepository) Update(ctx context.Context, id, title, description, status string) error {
	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, r.store.rebind(
		`UPDATE tasks SET task_title = ?, task_description = ?, task_status = ? WHERE task_id = ?`),
		title, description, status, id,
	)
	if err != nil {
		return unavailable("update task", err)
	}
	return affectedOrNotFound(res, domain.ErrTaskNotFound)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.store.opContext(ctx)
	defer cancel()

	res, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM tasks WHERE task_id = ?`), id)
	if err != nil {
		return unavailable("delete task", err)
	}
	return affectedOrNotFound(res, domain.ErrTaskNotFound)
}

// likePattern turns a free-text search into a substring LIKE pattern.
// LIKE metacharacters in search are matched literally.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}

func affectedOrNotFound(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("rows affected", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

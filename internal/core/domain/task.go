package domain

import "time"

// Task is a unit of work inside a project, assigned to a user.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      string
	ProjectID   string
	UserID      string
	CreatedAt   time.Time
}

// TaskView is a task joined with its assignee and project title.
type TaskView struct {
	Task
	Owner        Owner
	ProjectTitle string
}

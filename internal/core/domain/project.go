package domain

import "time"

// Project groups tasks under a single owner.
type Project struct {
	ID          string
	Title       string
	Description string
	UserID      string
	CreatedAt   time.Time
}

// Owner is the subset of an identity record exposed next to projects and tasks.
type Owner struct {
	UserID    string
	FirstName string
	LastName  string
	Role      string
	Email     string
}

// ProjectView is a project joined with its owner, as returned by listings.
type ProjectView struct {
	Project
	Owner Owner
}

package handler

import (
	"time"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

// messageResponse is the envelope of every non-listing JSON reply.
type messageResponse struct {
	Message string `json:"message"`
}

func message(msg string) messageResponse {
	return messageResponse{Message: msg}
}

// ── Auth ──────────────────────────────────────────────────────────────────────

type signupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	JWTToken string `json:"jwtToken"`
}

type profileResponse struct {
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	Email     string    `json:"email_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toProfileResponse(u *domain.User) profileResponse {
	return profileResponse{
		UserID:    u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// ── Projects ──────────────────────────────────────────────────────────────────

type createProjectRequest struct {
	ProjectTitle       string `json:"projectTitle"       validate:"required"`
	ProjectDescription string `json:"projectDescription"`
	UserID             string `json:"userId"`
}

type updateProjectRequest struct {
	UpdatedProjectTitle       string `json:"updatedProjectTitle"`
	UpdatedProjectDescription string `json:"updatedProjectDescription"`
}

type createdResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type projectResponse struct {
	ProjectID          string    `json:"project_id"`
	ProjectTitle       string    `json:"project_title"`
	ProjectDescription string    `json:"project_description"`
	UserID             string    `json:"user_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Role               string    `json:"role"`
	Email              string    `json:"email_id"`
	CreatedAt          time.Time `json:"created_at"`
}

func toProjectResponses(views []domain.ProjectView) []projectResponse {
	out := make([]projectResponse, 0, len(views))
	for _, v := range views {
		out = append(out, projectResponse{
			ProjectID:          v.ID,
			ProjectTitle:       v.Title,
			ProjectDescription: v.Description,
			UserID:             v.Owner.UserID,
			FirstName:          v.Owner.FirstName,
			LastName:           v.Owner.LastName,
			Role:               v.Owner.Role,
			Email:              v.Owner.Email,
			CreatedAt:          v.CreatedAt,
		})
	}
	return out
}

// ── Tasks ─────────────────────────────────────────────────────────────────────

type createTaskRequest struct {
	TaskTitle       string `json:"taskTitle"       validate:"required"`
	TaskDescription string `json:"taskDescription"`
	TaskStatus      string `json:"taskStatus"`
	ProjectID       string `json:"projectId"       validate:"required"`
	TaskUserID      string `json:"taskUserId"`
}

type updateTaskRequest struct {
	TaskStatus             string `json:"taskStatus"`
	UpdatedTaskDescription string `json:"updatedTaskDescription"`
	UpdatedTaskTitle       string `json:"updatedTaskTitle"`
}

type taskResponse struct {
	TaskID          string    `json:"task_id"`
	TaskTitle       string    `json:"task_title"`
	TaskDescription string    `json:"task_description"`
	TaskStatus      string    `json:"task_status"`
	UserID          string    `json:"user_id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Role            string    `json:"role"`
	Email           string    `json:"email_id"`
	ProjectID       string    `json:"project_id"`
	ProjectTitle    string    `json:"project_title"`
	CreatedAt       time.Time `json:"created_at"`
}

func toTaskResponses(views []domain.TaskView) []taskResponse {
	out := make([]taskResponse, 0, len(views))
	for _, v := range views {
		out = append(out, taskResponse{
			TaskID:          v.ID,
			TaskTitle:       v.Title,
			TaskDescription: v.Description,
			TaskStatus:      v.Status,
			UserID:          v.Owner.UserID,
			FirstName:       v.Owner.FirstName,
			LastName:        v.Owner.LastName,
			Role:            v.Owner.Role,
			Email:           v.Owner.Email,
			ProjectID:       v.ProjectID,
			ProjectTitle:    v.ProjectTitle,
			CreatedAt:       v.CreatedAt,
		})
	}
	return out
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

type TaskHandler struct {
	tasks ports.TaskService
}

func NewTaskHandler(tasks ports.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create adds a task to a project.
//
// @Summary      Create task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  messageResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message(err.Error()))
	}

	t, err := h.tasks.CreateTask(c.Request().Context(), ports.CreateTaskInput{
		Title:       req.TaskTitle,
		Description: req.TaskDescription,
		Status:      req.TaskStatus,
		ProjectID:   req.ProjectID,
		UserID:      req.TaskUserID,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, createdResponse{Message: "Task created successfully", ID: t.ID})
	case errors.Is(err, domain.ErrInvalidReference):
		return c.JSON(http.StatusBadRequest, message("Project or user not found"))
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, message("Missing required fields"))
	case errors.Is(err, domain.ErrUnauthenticated):
		return unauthorized(c)
	default:
		return err
	}
}

// List returns tasks whose title contains search_q, newest first.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        search_q  query     string  false  "Title substring"
// @Success      200       {array}   taskResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	views, err := h.tasks.ListTasks(c.Request().Context(), c.QueryParam("search_q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(views))
}

// Update replaces title, description and status of a task.
//
// @Summary      Update task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        taskId  path      string             true  "Task ID"
// @Param        body    body      updateTaskRequest  true  "New values"
// @Success      200     {object}  messageResponse
// @Failure      400     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /tasks/{taskId} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid payload"))
	}

	err := h.tasks.UpdateTask(c.Request().Context(), ports.UpdateTaskInput{
		ID:          c.Param("taskId"),
		Title:       req.UpdatedTaskTitle,
		Description: req.UpdatedTaskDescription,
		Status:      req.TaskStatus,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, message("Task updated successfully"))
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, message("Missing required fields"))
	case errors.Is(err, domain.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, message("Task not found"))
	default:
		return err
	}
}

// Delete removes a task.
//
// @Summary      Delete task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        taskId  path      string  true  "Task ID"
// @Success      200     {object}  messageResponse
// @Failure      404     {object}  messageResponse
// @Router       /tasks/{taskId} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	err := h.tasks.DeleteTask(c.Request().Context(), c.Param("taskId"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, message("Task deleted successfully"))
	case errors.Is(err, domain.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, message("Invalid task id"))
	default:
		return err
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/task-manager/internal/core/domain"
	"github.com/sirpyerre/task-manager/internal/core/ports"
)

type ProjectHandler struct {
	projects ports.ProjectService
}

func NewProjectHandler(projects ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create adds a project owned by userId, or by the caller when omitted.
//
// @Summary      Create project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project"
// @Success      201   {object}  createdResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {string}  string  "Invalid JWT Token"
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message(err.Error()))
	}

	p, err := h.projects.CreateProject(c.Request().Context(), ports.CreateProjectInput{
		Title:       req.ProjectTitle,
		Description: req.ProjectDescription,
		UserID:      req.UserID,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, createdResponse{Message: "Project created successfully", ID: p.ID})
	case errors.Is(err, domain.ErrProjectExists):
		return c.JSON(http.StatusBadRequest, message("Project already exists"))
	case errors.Is(err, domain.ErrInvalidReference):
		return c.JSON(http.StatusBadRequest, message("User not found"))
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, message("Missing required fields"))
	case errors.Is(err, domain.ErrUnauthenticated):
		return unauthorized(c)
	default:
		return err
	}
}

// List returns projects whose title contains search_q, newest first.
//
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        search_q  query     string  false  "Title substring"
// @Success      200       {array}   projectResponse
// @Failure      401       {string}  string  "Invalid JWT Token"
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	views, err := h.projects.ListProjects(c.Request().Context(), c.QueryParam("search_q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponses(views))
}

// Update replaces the title and description of a project.
//
// @Summary      Update project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      string                true  "Project ID"
// @Param        body       body      updateProjectRequest  true  "New values"
// @Success      200        {object}  messageResponse
// @Failure      400        {object}  messageResponse
// @Failure      404        {object}  messageResponse
// @Router       /projects/{projectId} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, message("Invalid payload"))
	}

	err := h.projects.UpdateProject(c.Request().Context(), ports.UpdateProjectInput{
		ID:          c.Param("projectId"),
		Title:       req.UpdatedProjectTitle,
		Description: req.UpdatedProjectDescription,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, message("Project updated successfully"))
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, message("Missing required fields"))
	case errors.Is(err, domain.ErrProjectNotFound):
		return c.JSON(http.StatusNotFound, message("Project not found"))
	case errors.Is(err, domain.ErrProjectExists):
		return c.JSON(http.StatusBadRequest, message("Project already exists"))
	default:
		return err
	}
}

// Delete removes a project and its tasks.
//
// @Summary      Delete project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      string  true  "Project ID"
// @Success      200        {object}  messageResponse
// @Failure      404        {object}  messageResponse
// @Router       /projects/{projectId} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	err := h.projects.DeleteProject(c.Request().Context(), c.Param("projectId"))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, message("Project deleted successfully"))
	case errors.Is(err, domain.ErrProjectNotFound):
		return c.JSON(http.StatusNotFound, message("Invalid project id"))
	default:
		return err
	}
}

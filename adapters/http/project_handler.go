package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	projectUC "github.com/khoahotran/portfolio-api/internal/application/usecase/project"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type ProjectHandler struct {
	createProjectUseCase      *projectUC.CreateProjectUseCase
	listProjectsUseCase       *projectUC.ListProjectsUseCase
	getProjectUseCase         *projectUC.GetProjectUseCase
	updateProjectUseCase      *projectUC.UpdateProjectUseCase
	deleteProjectUseCase      *projectUC.DeleteProjectUseCase
	uploadProjectImageUseCase *projectUC.UploadProjectImageUseCase
	logger                    logger.Logger
}

func NewProjectHandler(
	createUC *projectUC.CreateProjectUseCase,
	listUC *projectUC.ListProjectsUseCase,
	getUC *projectUC.GetProjectUseCase,
	updateUC *projectUC.UpdateProjectUseCase,
	deleteUC *projectUC.DeleteProjectUseCase,
	uploadImageUC *projectUC.UploadProjectImageUseCase,
	log logger.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		createProjectUseCase:      createUC,
		listProjectsUseCase:       listUC,
		getProjectUseCase:         getUC,
		updateProjectUseCase:      updateUC,
		deleteProjectUseCase:      deleteUC,
		uploadProjectImageUseCase: uploadImageUC,
		logger:                    log,
	}
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var input projectUC.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	input.OwnerID = CallerFromGinContext(c).AccountID

	p, err := h.createProjectUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToProjectDTO(p))
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, ok := paramID(c, "project")
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	p, err := h.updateProjectUseCase.Execute(c.Request.Context(), projectUC.UpdateProjectInput{
		Caller:       CallerFromGinContext(c),
		ProjectID:    projectID,
		Name:         req.Name,
		Description:  req.Description,
		Link:         req.Link,
		Status:       req.Status,
		Completion:   req.Completion,
		Technologies: req.Technologies,
		Type:         req.Type,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProjectDTO(p))
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := paramID(c, "project")
	if !ok {
		return
	}

	input := projectUC.DeleteProjectInput{Caller: CallerFromGinContext(c), ProjectID: projectID}
	if err := h.deleteProjectUseCase.Execute(c.Request.Context(), input); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := paramID(c, "project")
	if !ok {
		return
	}
	input := projectUC.GetProjectInput{Caller: CallerFromGinContext(c), ProjectID: projectID}
	p, err := h.getProjectUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProjectDTO(p))
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	input := projectUC.ListProjectsInput{Caller: CallerFromGinContext(c), Page: page, Limit: limit}
	projects, err := h.listProjectsUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toProjectDTOs(projects))
}

func (h *ProjectHandler) UploadImage(c *gin.Context) {
	projectID, ok := paramID(c, "project")
	if !ok {
		return
	}
	file, closeFile, err := formImage(c, "image")
	if err != nil {
		c.Error(err)
		return
	}
	defer closeFile()

	p, err := h.uploadProjectImageUseCase.Execute(c.Request.Context(), projectUC.UploadProjectImageInput{
		Caller:    CallerFromGinContext(c),
		ProjectID: projectID,
		File:      file,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProjectDTO(p))
}

func toProjectDTOs(projects []*project.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = ToProjectDTO(p)
	}
	return dtos
}

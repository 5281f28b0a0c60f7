package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
	"github.com/khoahotran/portfolio-api/pkg/validation"
)

type CreateProjectUseCase struct {
	projectRepo project.Repository
	logger      logger.Logger
}

func NewCreateProjectUseCase(pRepo project.Repository, log logger.Logger) *CreateProjectUseCase {
	return &CreateProjectUseCase{projectRepo: pRepo, logger: log}
}

type CreateProjectInput struct {
	OwnerID      uuid.UUID `json:"-"`
	Name         string    `json:"name" validate:"required,max=200"`
	Description  string    `json:"description" validate:"required"`
	Link         *string   `json:"link" validate:"omitempty,url"`
	Status       string    `json:"status" validate:"required,max=100"`
	Completion   string    `json:"completion" validate:"required,max=100"`
	Technologies string    `json:"technologies" validate:"required,max=200"`
	Type         string    `json:"type" validate:"required,max=100"`
}

func (uc *CreateProjectUseCase) Execute(ctx context.Context, input CreateProjectInput) (*project.Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	if violations := validation.Struct("", input); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid project", violations)
	}

	now := time.Now().UTC()
	p := &project.Project{
		ID:           uuid.New(),
		OwnerID:      input.OwnerID,
		Name:         input.Name,
		Description:  input.Description,
		Link:         input.Link,
		Status:       input.Status,
		Completion:   input.Completion,
		Technologies: input.Technologies,
		Type:         input.Type,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("project validation failed", err)
	}

	if err := uc.projectRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save project failed: %w", err)
	}
	uc.logger.Info("Project created", zap.String("project_id", p.ID.String()), zap.String("owner_id", p.OwnerID.String()))
	return p, nil
}

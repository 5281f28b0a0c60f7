package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/ownership"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/validation"
)

type UpdateProjectUseCase struct {
	projectRepo project.Repository
	guard       *ownership.Guard
}

func NewUpdateProjectUseCase(pRepo project.Repository, guard *ownership.Guard) *UpdateProjectUseCase {
	return &UpdateProjectUseCase{projectRepo: pRepo, guard: guard}
}

// UpdateProjectInput is a partial update; nil fields keep their value.
type UpdateProjectInput struct {
	Caller       identity.Caller
	ProjectID    uuid.UUID
	Name         *string
	Description  *string
	Link         *string
	Status       *string
	Completion   *string
	Technologies *string
	Type         *string
}

func (uc *UpdateProjectUseCase) Execute(ctx context.Context, input UpdateProjectInput) (*project.Project, error) {
	p, err := uc.projectRepo.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := uc.guard.Authorize(ctx, input.Caller, ownership.ProjectResource(p)); err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Name, input.Name)
	set(&p.Description, input.Description)
	set(&p.Status, input.Status)
	set(&p.Completion, input.Completion)
	set(&p.Technologies, input.Technologies)
	set(&p.Type, input.Type)
	if input.Link != nil {
		if *input.Link == "" {
			p.Link = nil
		} else {
			p.Link = input.Link
		}
	}
	p.Name = strings.TrimSpace(p.Name)

	check := CreateProjectInput{
		Name:         p.Name,
		Description:  p.Description,
		Link:         p.Link,
		Status:       p.Status,
		Completion:   p.Completion,
		Technologies: p.Technologies,
		Type:         p.Type,
	}
	if violations := validation.Struct("", check); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid project", violations)
	}

	p.UpdatedAt = time.Now().UTC()
	if err := uc.projectRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project failed: %w", err)
	}
	return p, nil
}

package project

import (
	"context"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
)

type GetProjectUseCase struct {
	resolver    *identity.Resolver
	projectRepo project.Repository
}

func NewGetProjectUseCase(resolver *identity.Resolver, pRepo project.Repository) *GetProjectUseCase {
	return &GetProjectUseCase{resolver: resolver, projectRepo: pRepo}
}

type GetProjectInput struct {
	Caller    identity.Caller
	ProjectID uuid.UUID
}

// Execute only returns projects of the resolved portfolio; anything else is
// reported as missing.
func (uc *GetProjectUseCase) Execute(ctx context.Context, input GetProjectInput) (*project.Project, error) {
	target, err := uc.resolver.Resolve(ctx, input.Caller)
	if err != nil {
		return nil, err
	}
	p, err := uc.projectRepo.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != target.ID {
		return nil, apperror.NewNotFound("project", input.ProjectID.String())
	}
	return p, nil
}

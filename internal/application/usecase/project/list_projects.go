package project

import (
	"context"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type ListProjectsUseCase struct {
	resolver    *identity.Resolver
	projectRepo project.Repository
	logger      logger.Logger
}

func NewListProjectsUseCase(resolver *identity.Resolver, pRepo project.Repository, log logger.Logger) *ListProjectsUseCase {
	return &ListProjectsUseCase{resolver: resolver, projectRepo: pRepo, logger: log}
}

type ListProjectsInput struct {
	Caller identity.Caller
	Page   int
	Limit  int
}

func (uc *ListProjectsUseCase) Execute(ctx context.Context, input ListProjectsInput) ([]*project.Project, error) {
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}
	if input.Page <= 0 {
		input.Page = 1
	}
	offset := (input.Page - 1) * input.Limit

	target, err := uc.resolver.Resolve(ctx, input.Caller)
	if err != nil {
		return nil, err
	}
	return uc.projectRepo.ListByOwner(ctx, target.ID, input.Limit, offset)
}

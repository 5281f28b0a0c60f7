package project

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/media"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/ownership"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
)

type DeleteProjectUseCase struct {
	projectRepo project.Repository
	guard       *ownership.Guard
	images      *media.ImageStore
}

func NewDeleteProjectUseCase(pRepo project.Repository, guard *ownership.Guard, images *media.ImageStore) *DeleteProjectUseCase {
	return &DeleteProjectUseCase{projectRepo: pRepo, guard: guard, images: images}
}

type DeleteProjectInput struct {
	Caller    identity.Caller
	ProjectID uuid.UUID
}

func (uc *DeleteProjectUseCase) Execute(ctx context.Context, input DeleteProjectInput) error {
	p, err := uc.projectRepo.FindByID(ctx, input.ProjectID)
	if err != nil {
		return err
	}
	if err := uc.guard.Authorize(ctx, input.Caller, ownership.ProjectResource(p)); err != nil {
		return err
	}

	if err := uc.projectRepo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("delete project failed: %w", err)
	}
	uc.images.Discard(p.ImagePublicID)
	return nil
}

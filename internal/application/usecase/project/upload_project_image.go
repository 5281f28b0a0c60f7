package project

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/media"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/ownership"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
)

type UploadProjectImageUseCase struct {
	projectRepo project.Repository
	guard       *ownership.Guard
	images      *media.ImageStore
}

func NewUploadProjectImageUseCase(pRepo project.Repository, guard *ownership.Guard, images *media.ImageStore) *UploadProjectImageUseCase {
	return &UploadProjectImageUseCase{projectRepo: pRepo, guard: guard, images: images}
}

type UploadProjectImageInput struct {
	Caller    identity.Caller
	ProjectID uuid.UUID
	File      media.ImageFile
}

func (uc *UploadProjectImageUseCase) Execute(ctx context.Context, input UploadProjectImageInput) (*project.Project, error) {
	p, err := uc.projectRepo.FindByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := uc.guard.Authorize(ctx, input.Caller, ownership.ProjectResource(p)); err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("users/%s/projects", p.OwnerID)
	res, err := uc.images.Put(ctx, input.File, folder, p.ID.String())
	if err != nil {
		return nil, err
	}

	previous := p.ImagePublicID
	p.SetImage(res.URL, res.PublicID)
	p.UpdatedAt = time.Now().UTC()
	if err := uc.projectRepo.Update(ctx, p); err != nil {
		uc.images.Discard(&res.PublicID)
		return nil, fmt.Errorf("update project image failed: %w", err)
	}
	uc.images.Discard(previous)

	uc.images.Announce(service.PortfolioEvent{
		EventType:  service.EventProjectImageUploaded,
		AccountID:  p.OwnerID,
		ResourceID: p.ID,
		PublicID:   res.PublicID,
	})
	return p, nil
}

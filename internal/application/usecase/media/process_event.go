package media

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

const (
	mainTransformation      = "c_limit,w_1200"
	thumbnailTransformation = "c_fill,g_auto,w_400,h_400"
)

// ProcessEventUseCase handles portfolio events in the worker.
type ProcessEventUseCase struct {
	profileRepo profile.Repository
	projectRepo project.Repository
	uploader    service.Uploader
	cache       service.Cache
	logger      logger.Logger
}

func NewProcessEventUseCase(
	pRepo profile.Repository,
	prjRepo project.Repository,
	u service.Uploader,
	cache service.Cache,
	log logger.Logger,
) *ProcessEventUseCase {
	return &ProcessEventUseCase{profileRepo: pRepo, projectRepo: prjRepo, uploader: u, cache: cache, logger: log}
}

func (uc *ProcessEventUseCase) Execute(ctx context.Context, evt service.PortfolioEvent) error {
	l := uc.logger.With(zap.String("event_type", string(evt.EventType)), zap.String("account_id", evt.AccountID.String()))
	l.Info("Worker processing portfolio event")

	var err error
	switch evt.EventType {
	case service.EventProfileImageUploaded:
		err = uc.processProfileImage(ctx, l, evt)
	case service.EventProjectImageUploaded:
		err = uc.processProjectImage(ctx, l, evt)
	case service.EventCollectionSynced:
	default:
		l.Warn("Unknown event type, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	if err := uc.cache.Del(ctx, service.PublicCacheKeys(evt.AccountID)...); err != nil {
		l.Warn("Failed to drop portfolio cache", zap.Error(err))
	}
	return nil
}

func (uc *ProcessEventUseCase) processProfileImage(ctx context.Context, l logger.Logger, evt service.PortfolioEvent) error {
	p, err := uc.profileRepo.FindByAccountID(ctx, evt.AccountID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			l.Warn("Profile not found, skipping event")
			return nil
		}
		return err
	}
	if p.ImagePublicID == nil || *p.ImagePublicID != evt.PublicID {
		l.Info("Profile image was replaced since the event, skipping", zap.String("public_id", evt.PublicID))
		return nil
	}
	if p.ImageThumbnailURL != nil {
		l.Info("Profile image already processed, skipping")
		return nil
	}

	thumb, err := uc.uploader.TransformedURL(evt.PublicID, thumbnailTransformation)
	if err != nil {
		return apperror.NewInternal("failed to build thumbnail URL", err)
	}
	p.ImageThumbnailURL = &thumb
	if err := uc.profileRepo.Update(ctx, p); err != nil {
		return apperror.NewInternal("failed to store profile thumbnail", err)
	}
	l.Info("Profile thumbnail derived", zap.String("thumbnail_url", thumb))
	return nil
}

func (uc *ProcessEventUseCase) processProjectImage(ctx context.Context, l logger.Logger, evt service.PortfolioEvent) error {
	prj, err := uc.projectRepo.FindByID(ctx, evt.ResourceID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			l.Warn("Project not found, skipping event", zap.String("project_id", evt.ResourceID.String()))
			return nil
		}
		return err
	}
	if prj.ImagePublicID == nil || *prj.ImagePublicID != evt.PublicID || prj.ThumbnailURL != nil {
		l.Info("Project image already processed or replaced, skipping", zap.String("project_id", prj.ID.String()))
		return nil
	}

	mainURL, err := uc.uploader.TransformedURL(evt.PublicID, mainTransformation)
	if err != nil {
		return apperror.NewInternal("failed to build main image URL", err)
	}
	thumb, err := uc.uploader.TransformedURL(evt.PublicID, thumbnailTransformation)
	if err != nil {
		return apperror.NewInternal("failed to build thumbnail URL", err)
	}
	prj.ImageURL = &mainURL
	prj.ThumbnailURL = &thumb
	if err := uc.projectRepo.Update(ctx, prj); err != nil {
		return apperror.NewInternal("failed to store project image URLs", err)
	}
	l.Info("Project image processed", zap.String("project_id", prj.ID.String()))
	return nil
}

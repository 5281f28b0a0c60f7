package certification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/collection"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/ownership"
	"github.com/khoahotran/portfolio-api/internal/domain/certification"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
	"github.com/khoahotran/portfolio-api/pkg/validation"
)

type CertificationUseCase struct {
	locator  *collection.Locator
	guard    *ownership.Guard
	tx       service.TxManager
	certRepo certification.Repository
	linkRepo profile.LinkRepository
	cache    service.Cache
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewCertificationUseCase(
	locator *collection.Locator,
	guard *ownership.Guard,
	tx service.TxManager,
	certRepo certification.Repository,
	linkRepo profile.LinkRepository,
	cache service.Cache,
	cacheTTL time.Duration,
	log logger.Logger,
) *CertificationUseCase {
	return &CertificationUseCase{
		locator:  locator,
		guard:    guard,
		tx:       tx,
		certRepo: certRepo,
		linkRepo: linkRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func (uc *CertificationUseCase) List(ctx context.Context, caller identity.Caller) ([]*certification.Certification, error) {
	u, p, err := uc.locator.Target(ctx, caller)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return []*certification.Certification{}, nil
	}
	key := service.PublicCacheKey(u.ID, string(profile.CollectionCertifications))
	return collection.Cached(ctx, uc.cache, uc.logger, key, uc.cacheTTL, func(ctx context.Context) ([]*certification.Certification, error) {
		ids, err := uc.linkRepo.ListIDs(ctx, p.ID, profile.CollectionCertifications)
		if err != nil {
			return nil, err
		}
		return uc.certRepo.ListByIDs(ctx, ids)
	})
}

// Get returns one certification, but only if the target profile lists it.
func (uc *CertificationUseCase) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*certification.Certification, error) {
	_, p, err := uc.locator.Target(ctx, caller)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("certification", id.String())
	}
	linked, err := uc.linkRepo.Contains(ctx, p.ID, profile.CollectionCertifications, id)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperror.NewNotFound("certification", id.String())
	}
	return uc.certRepo.FindByID(ctx, id)
}

// Add upserts the certification by (title, issuer) and appends it to the
// caller's profile.
func (uc *CertificationUseCase) Add(ctx context.Context, caller identity.Caller, spec collection.CertificationSpec) (*certification.Certification, error) {
	if violations := validation.Struct("", spec); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid certification", violations)
	}
	p, err := uc.locator.Own(ctx, caller)
	if err != nil {
		return nil, err
	}

	c := collection.CertificationFromSpec(spec, caller.AccountID)
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := uc.certRepo.Upsert(ctx, c); err != nil {
			return err
		}
		return uc.linkRepo.Link(ctx, p.ID, profile.CollectionCertifications, c.ID)
	})
	if err != nil {
		return nil, err
	}

	collection.InvalidateLinked(ctx, uc.cache, uc.linkRepo, uc.logger, profile.CollectionCertifications, []uuid.UUID{c.ID}, caller.AccountID)
	uc.logger.Info("Certification added", zap.String("certification_id", c.ID.String()), zap.String("profile_id", p.ID.String()))
	return c, nil
}

type UpdateCertificationInput struct {
	Caller     identity.Caller
	ID         uuid.UUID
	Title      *string
	Issuer     *string
	Date       *string
	Badge      *string
	Type       *string
	InProgress *bool
}

func (uc *CertificationUseCase) Update(ctx context.Context, in UpdateCertificationInput) (*certification.Certification, error) {
	c, err := uc.certRepo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.guard.Authorize(ctx, in.Caller, ownership.CertificationResource(c.ID)); err != nil {
		return nil, err
	}

	spec := collection.CertificationSpec{
		Title:      c.Title,
		Issuer:     c.Issuer,
		Date:       c.Date,
		Badge:      c.Badge,
		Type:       string(c.Type),
		InProgress: c.InProgress,
	}
	if in.Title != nil {
		spec.Title = *in.Title
	}
	if in.Issuer != nil {
		spec.Issuer = *in.Issuer
	}
	if in.Date != nil {
		spec.Date = *in.Date
	}
	if in.Badge != nil {
		spec.Badge = *in.Badge
	}
	if in.Type != nil {
		spec.Type = *in.Type
	}
	if in.InProgress != nil {
		spec.InProgress = *in.InProgress
	}
	if violations := validation.Struct("", spec); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid certification", violations)
	}

	updated := collection.CertificationFromSpec(spec, in.Caller.AccountID)
	updated.ID = c.ID
	updated.CreatedBy = c.CreatedBy
	if err := uc.certRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	collection.InvalidateLinked(ctx, uc.cache, uc.linkRepo, uc.logger, profile.CollectionCertifications, []uuid.UUID{c.ID}, in.Caller.AccountID)
	return updated, nil
}

// Remove unlinks the certification from the caller's profile. The shared row
// stays for other profiles.
func (uc *CertificationUseCase) Remove(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	if _, err := uc.certRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := uc.guard.Authorize(ctx, caller, ownership.CertificationResource(id)); err != nil {
		return err
	}
	p, err := uc.locator.Own(ctx, caller)
	if err != nil {
		return err
	}
	if _, err := uc.linkRepo.Unlink(ctx, p.ID, profile.CollectionCertifications, id); err != nil {
		return err
	}
	collection.Invalidate(ctx, uc.cache, uc.logger, caller.AccountID)
	return nil
}

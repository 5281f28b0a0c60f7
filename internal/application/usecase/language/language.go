package language

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/collection"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/ownership"
	"github.com/khoahotran/portfolio-api/internal/domain/language"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type LanguageUseCase struct {
	locator  *collection.Locator
	guard    *ownership.Guard
	tx       service.TxManager
	langRepo language.Repository
	linkRepo profile.LinkRepository
	cache    service.Cache
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewLanguageUseCase(
	locator *collection.Locator,
	guard *ownership.Guard,
	tx service.TxManager,
	langRepo language.Repository,
	linkRepo profile.LinkRepository,
	cache service.Cache,
	cacheTTL time.Duration,
	log logger.Logger,
) *LanguageUseCase {
	return &LanguageUseCase{
		locator:  locator,
		guard:    guard,
		tx:       tx,
		langRepo: langRepo,
		linkRepo: linkRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func (uc *LanguageUseCase) List(ctx context.Context, caller identity.Caller) ([]*language.Language, error) {
	u, p, err := uc.locator.Target(ctx, caller)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return []*language.Language{}, nil
	}
	key := service.PublicCacheKey(u.ID, string(profile.CollectionLanguages))
	return collection.Cached(ctx, uc.cache, uc.logger, key, uc.cacheTTL, func(ctx context.Context) ([]*language.Language, error) {
		ids, err := uc.linkRepo.ListIDs(ctx, p.ID, profile.CollectionLanguages)
		if err != nil {
			return nil, err
		}
		return uc.langRepo.ListByIDs(ctx, ids)
	})
}

func (uc *LanguageUseCase) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*language.Language, error) {
	_, p, err := uc.locator.Target(ctx, caller)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("language", id.String())
	}
	linked, err := uc.linkRepo.Contains(ctx, p.ID, profile.CollectionLanguages, id)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, apperror.NewNotFound("language", id.String())
	}
	return uc.langRepo.FindByID(ctx, id)
}

func (uc *LanguageUseCase) Add(ctx context.Context, caller identity.Caller, spec collection.LanguageSpec) (*language.Language, error) {
	if violations := collection.ValidateLanguages([]collection.LanguageSpec{spec}); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid language", stripIndex(violations))
	}
	p, err := uc.locator.Own(ctx, caller)
	if err != nil {
		return nil, err
	}

	l, err := collection.LanguageFromSpec(spec)
	if err != nil {
		return nil, err
	}
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := uc.langRepo.Upsert(ctx, l); err != nil {
			return err
		}
		return uc.linkRepo.Link(ctx, p.ID, profile.CollectionLanguages, l.ID)
	})
	if err != nil {
		return nil, err
	}

	collection.Invalidate(ctx, uc.cache, uc.logger, caller.AccountID)
	uc.logger.Info("Language added", zap.String("language_id", l.ID.String()), zap.String("profile_id", p.ID.String()))
	return l, nil
}

type UpdateLanguageInput struct {
	Caller      identity.Caller
	ID          uuid.UUID
	Name        *string
	Proficiency *string
}

func (uc *LanguageUseCase) Update(ctx context.Context, in UpdateLanguageInput) (*language.Language, error) {
	l, err := uc.langRepo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := uc.guard.Authorize(ctx, in.Caller, ownership.LanguageResource(l.ID)); err != nil {
		return nil, err
	}

	spec := collection.LanguageSpec{Name: l.Name, Proficiency: string(l.Proficiency)}
	if in.Name != nil {
		spec.Name = *in.Name
	}
	if in.Proficiency != nil {
		spec.Proficiency = *in.Proficiency
	}
	if violations := collection.ValidateLanguages([]collection.LanguageSpec{spec}); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid language", stripIndex(violations))
	}

	updated, err := collection.LanguageFromSpec(spec)
	if err != nil {
		return nil, err
	}
	updated.ID = l.ID
	if err := uc.langRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	collection.InvalidateLinked(ctx, uc.cache, uc.linkRepo, uc.logger, profile.CollectionLanguages, []uuid.UUID{l.ID}, in.Caller.AccountID)
	return updated, nil
}

func (uc *LanguageUseCase) Remove(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	if _, err := uc.langRepo.FindByID(ctx, id); err != nil {
		return err
	}
	if err := uc.guard.Authorize(ctx, caller, ownership.LanguageResource(id)); err != nil {
		return err
	}
	p, err := uc.locator.Own(ctx, caller)
	if err != nil {
		return err
	}
	if _, err := uc.linkRepo.Unlink(ctx, p.ID, profile.CollectionLanguages, id); err != nil {
		return err
	}
	collection.Invalidate(ctx, uc.cache, uc.logger, caller.AccountID)
	return nil
}

// stripIndex turns "[0].name: ..." into "name: ..." for single-item requests.
func stripIndex(violations []string) []string {
	out := make([]string, len(violations))
	for i, v := range violations {
		out[i] = strings.TrimPrefix(v, "[0].")
	}
	return out
}

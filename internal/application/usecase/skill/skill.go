package skill

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
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/skill"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
	"github.com/khoahotran/portfolio-api/pkg/validation"
)

type SkillUseCase struct {
	locator   *collection.Locator
	guard     *ownership.Guard
	tx        service.TxManager
	skillRepo skill.Repository
	linkRepo  profile.LinkRepository
	cache     service.Cache
	cacheTTL  time.Duration
	logger    logger.Logger
}

func NewSkillUseCase(
	locator *collection.Locator,
	guard *ownership.Guard,
	tx service.TxManager,
	skillRepo skill.Repository,
	linkRepo profile.LinkRepository,
	cache service.Cache,
	cacheTTL time.Duration,
	log logger.Logger,
) *SkillUseCase {
	return &SkillUseCase{
		locator:   locator,
		guard:     guard,
		tx:        tx,
		skillRepo: skillRepo,
		linkRepo:  linkRepo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    log,
	}
}

func (uc *SkillUseCase) linkedCategoryIDs(ctx context.Context, p *profile.Profile) ([]uuid.UUID, error) {
	return uc.linkRepo.ListIDs(ctx, p.ID, profile.CollectionSkillCategories)
}

// ListCategories returns the target's categories with their skills.
func (uc *SkillUseCase) ListCategories(ctx context.Context, caller identity.Caller) ([]*skill.Category, error) {
	u, p, err := uc.locator.Target(ctx, caller)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return []*skill.Category{}, nil
	}
	key := service.PublicCacheKey(u.ID, string(profile.CollectionSkillCategories))
	return collection.Cached(ctx, uc.cache, uc.logger, key, uc.cacheTTL, func(ctx context.Context) ([]*skill.Category, error) {
		ids, err := uc.linkedCategoryIDs(ctx, p)
		if err != nil {
			return nil, err
		}
		return uc.skillRepo.ListCategoriesByIDs(ctx, ids)
	})
}

// ListSkills flattens the skills of every category on the target's profile.
func (uc *SkillUseCase) ListSkills(ctx context.Context, caller identity.Caller) ([]*skill.Skill, error) {
	u, p, err := uc.locator.Target(ctx, caller)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return []*skill.Skill{}, nil
	}
	key := service.PublicCacheKey(u.ID, "skills")
	return collection.Cached(ctx, uc.cache, uc.logger, key, uc.cacheTTL, func(ctx context.Context) ([]*skill.Skill, error) {
		ids, err := uc.linkedCategoryIDs(ctx, p)
		if err != nil {
			return nil, err
		}
		return uc.skillRepo.ListSkillsByCategories(ctx, ids)
	})
}

func (uc *SkillUseCase) GetCategory(ctx context.Context, caller identity.Caller, id uuid.UUID) (*skill.Category, error) {
	if err := uc.requireLinked(ctx, caller, id, "skill category", id); err != nil {
		return nil, err
	}
	return uc.skillRepo.FindCategoryByID(ctx, id)
}

func (uc *SkillUseCase) GetSkill(ctx context.Context, caller identity.Caller, id uuid.UUID) (*skill.Skill, error) {
	s, err := uc.skillRepo.FindSkillByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.requireLinked(ctx, caller, s.CategoryID, "skill", id); err != nil {
		return nil, err
	}
	return s, nil
}

// requireLinked reports NotFound unless categoryID is on the target's profile.
func (uc *SkillUseCase) requireLinked(ctx context.Context, caller identity.Caller, categoryID uuid.UUID, resource string, id uuid.UUID) error {
	_, p, err := uc.locator.Target(ctx, caller)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NewNotFound(resource, id.String())
	}
	linked, err := uc.linkRepo.Contains(ctx, p.ID, profile.CollectionSkillCategories, categoryID)
	if err != nil {
		return err
	}
	if !linked {
		return apperror.NewNotFound(resource, id.String())
	}
	return nil
}

// AddCategory upserts a category by name with its nested skills and appends
// it to the caller's profile.
func (uc *SkillUseCase) AddCategory(ctx context.Context, caller identity.Caller, spec collection.SkillCategorySpec) (*skill.Category, error) {
	if violations := validation.Struct("", spec); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid skill category", violations)
	}
	p, err := uc.locator.Own(ctx, caller)
	if err != nil {
		return nil, err
	}

	var cat *skill.Category
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		cat, _, err = uc.skillRepo.UpsertCategory(ctx, strings.TrimSpace(spec.Category))
		if err != nil {
			return err
		}
		for _, sk := range spec.Skills {
			if _, _, err := uc.skillRepo.UpsertSkill(ctx, cat.ID, strings.TrimSpace(sk.Name), sk.Level); err != nil {
				return err
			}
		}
		return uc.linkRepo.Link(ctx, p.ID, profile.CollectionSkillCategories, cat.ID)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateCategory(ctx, cat.ID, caller.AccountID)
	return uc.skillRepo.FindCategoryByID(ctx, cat.ID)
}

type RenameCategoryInput struct {
	Caller identity.Caller
	ID     uuid.UUID
	Name   string
}

func (uc *SkillUseCase) RenameCategory(ctx context.Context, in RenameCategoryInput) (*skill.Category, error) {
	if _, err := uc.skillRepo.FindCategoryByID(ctx, in.ID); err != nil {
		return nil, err
	}
	if err := uc.guard.Authorize(ctx, in.Caller, ownership.SkillCategoryResource(in.ID)); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.NewValidation("Invalid skill category", []string{"category: is required"})
	}
	if err := uc.skillRepo.RenameCategory(ctx, in.ID, name); err != nil {
		return nil, err
	}
	uc.invalidateCategory(ctx, in.ID, in.Caller.AccountID)
	return uc.skillRepo.FindCategoryByID(ctx, in.ID)
}

func (uc *SkillUseCase) RemoveCategory(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	if _, err := uc.skillRepo.FindCategoryByID(ctx, id); err != nil {
		return err
	}
	if err := uc.guard.Authorize(ctx, caller, ownership.SkillCategoryResource(id)); err != nil {
		return err
	}
	p, err := uc.locator.Own(ctx, caller)
	if err != nil {
		return err
	}
	if _, err := uc.linkRepo.Unlink(ctx, p.ID, profile.CollectionSkillCategories, id); err != nil {
		return err
	}
	collection.Invalidate(ctx, uc.cache, uc.logger, caller.AccountID)
	return nil
}

type AddSkillInput struct {
	Caller       identity.Caller
	CategoryID   *uuid.UUID
	CategoryName string
	Name         string
	Level        int
}

// AddSkill puts a skill under an existing category (by id) or a category
// found or created by name. The category is linked to the caller's profile
// if it is not already.
func (uc *SkillUseCase) AddSkill(ctx context.Context, in AddSkillInput) (*skill.Skill, error) {
	violations := validation.Struct("", collection.SkillSpec{Name: in.Name, Level: in.Level})
	if in.CategoryID == nil && strings.TrimSpace(in.CategoryName) == "" {
		violations = append(violations, "category: is required")
	}
	if len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid skill", violations)
	}
	p, err := uc.locator.Own(ctx, in.Caller)
	if err != nil {
		return nil, err
	}

	var sk *skill.Skill
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var categoryID uuid.UUID
		if in.CategoryID != nil {
			cat, err := uc.skillRepo.FindCategoryByID(ctx, *in.CategoryID)
			if err != nil {
				return err
			}
			categoryID = cat.ID
		} else {
			cat, _, err := uc.skillRepo.UpsertCategory(ctx, strings.TrimSpace(in.CategoryName))
			if err != nil {
				return err
			}
			categoryID = cat.ID
		}

		var err error
		sk, _, err = uc.skillRepo.UpsertSkill(ctx, categoryID, strings.TrimSpace(in.Name), in.Level)
		if err != nil {
			return err
		}
		return uc.linkRepo.Link(ctx, p.ID, profile.CollectionSkillCategories, categoryID)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateCategory(ctx, sk.CategoryID, in.Caller.AccountID)
	uc.logger.Info("Skill added", zap.String("skill_id", sk.ID.String()), zap.String("category_id", sk.CategoryID.String()))
	return sk, nil
}

type UpdateSkillInput struct {
	Caller identity.Caller
	ID     uuid.UUID
	Name   *string
	Level  *int
}

func (uc *SkillUseCase) UpdateSkill(ctx context.Context, in UpdateSkillInput) (*skill.Skill, error) {
	if err := uc.guard.Authorize(ctx, in.Caller, ownership.SkillResource(in.ID)); err != nil {
		return nil, err
	}
	sk, err := uc.skillRepo.FindSkillByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		sk.Name = strings.TrimSpace(*in.Name)
	}
	if in.Level != nil {
		sk.Level = *in.Level
	}
	if violations := validation.Struct("", collection.SkillSpec{Name: sk.Name, Level: sk.Level}); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid skill", violations)
	}
	if err := uc.skillRepo.UpdateSkill(ctx, sk); err != nil {
		return nil, err
	}
	uc.invalidateCategory(ctx, sk.CategoryID, in.Caller.AccountID)
	return sk, nil
}

// RemoveSkill deletes the skill row. A skill belongs to its category, so the
// skill disappears from every profile that links that category, and any of
// those profiles' accounts may delete it.
func (uc *SkillUseCase) RemoveSkill(ctx context.Context, caller identity.Caller, id uuid.UUID) error {
	if err := uc.guard.Authorize(ctx, caller, ownership.SkillResource(id)); err != nil {
		return err
	}
	sk, err := uc.skillRepo.FindSkillByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.skillRepo.DeleteSkill(ctx, id); err != nil {
		return err
	}
	uc.invalidateCategory(ctx, sk.CategoryID, caller.AccountID)
	uc.logger.Info("Skill deleted", zap.String("skill_id", id.String()), zap.String("category_id", sk.CategoryID.String()))
	return nil
}

// invalidateCategory drops the cached reads of the caller and of everyone
// linking the category, since skills are read through it.
func (uc *SkillUseCase) invalidateCategory(ctx context.Context, categoryID, accountID uuid.UUID) {
	collection.InvalidateLinked(ctx, uc.cache, uc.linkRepo, uc.logger, profile.CollectionSkillCategories, []uuid.UUID{categoryID}, accountID)
}

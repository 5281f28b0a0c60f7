package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/collection"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/media"
	"github.com/khoahotran/portfolio-api/internal/domain/certification"
	"github.com/khoahotran/portfolio-api/internal/domain/language"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/skill"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
	"github.com/khoahotran/portfolio-api/pkg/validation"
)

type Repositories struct {
	Users          user.Repository
	Profiles       profile.Repository
	Links          profile.LinkRepository
	Skills         skill.Repository
	Certifications certification.Repository
	Languages      language.Repository
}

type ProfileUseCase struct {
	locator  *collection.Locator
	repos    Repositories
	tx       service.TxManager
	images   *media.ImageStore
	cache    service.Cache
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewProfileUseCase(
	locator *collection.Locator,
	repos Repositories,
	tx service.TxManager,
	images *media.ImageStore,
	cache service.Cache,
	cacheTTL time.Duration,
	log logger.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		locator:  locator,
		repos:    repos,
		tx:       tx,
		images:   images,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// ProfileView is a profile with its account and every linked collection.
type ProfileView struct {
	User            *user.User                     `json:"user"`
	Profile         *profile.Profile               `json:"profile"`
	SkillCategories []*skill.Category              `json:"skill_categories"`
	Certifications  []*certification.Certification `json:"certifications"`
	Languages       []*language.Language           `json:"languages"`
}

func (uc *ProfileUseCase) Get(ctx context.Context, caller identity.Caller) (*ProfileView, error) {
	u, p, err := uc.locator.Target(ctx, caller)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("profile", u.Username)
	}
	key := service.PublicCacheKey(u.ID, "profile")
	return collection.Cached(ctx, uc.cache, uc.logger, key, uc.cacheTTL, func(ctx context.Context) (*ProfileView, error) {
		return uc.view(ctx, u, p)
	})
}

func (uc *ProfileUseCase) view(ctx context.Context, u *user.User, p *profile.Profile) (*ProfileView, error) {
	v := &ProfileView{User: u, Profile: p}

	catIDs, err := uc.repos.Links.ListIDs(ctx, p.ID, profile.CollectionSkillCategories)
	if err != nil {
		return nil, err
	}
	if v.SkillCategories, err = uc.repos.Skills.ListCategoriesByIDs(ctx, catIDs); err != nil {
		return nil, err
	}

	certIDs, err := uc.repos.Links.ListIDs(ctx, p.ID, profile.CollectionCertifications)
	if err != nil {
		return nil, err
	}
	if v.Certifications, err = uc.repos.Certifications.ListByIDs(ctx, certIDs); err != nil {
		return nil, err
	}

	langIDs, err := uc.repos.Links.ListIDs(ctx, p.ID, profile.CollectionLanguages)
	if err != nil {
		return nil, err
	}
	if v.Languages, err = uc.repos.Languages.ListByIDs(ctx, langIDs); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateProfileInput is a partial update. Account fields are written to the
// account row; id lists, when present, replace the matching link set.
type UpdateProfileInput struct {
	Caller identity.Caller `json:"-"`

	Username  *string `json:"username" validate:"omitempty,max=150"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`

	Bio      *string `json:"bio"`
	Title    *string `json:"title" validate:"omitempty,max=200"`
	Location *string `json:"location" validate:"omitempty,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Website  *string `json:"website" validate:"omitempty,max=200"`
	Github   *string `json:"github" validate:"omitempty,max=200"`
	Linkedin *string `json:"linkedin" validate:"omitempty,max=200"`
	Twitter  *string `json:"twitter" validate:"omitempty,max=200"`

	SkillCategoryIDs *[]uuid.UUID `json:"skill_categories"`
	CertificationIDs *[]uuid.UUID `json:"certifications"`
	LanguageIDs      *[]uuid.UUID `json:"languages"`
}

func (uc *ProfileUseCase) Update(ctx context.Context, in UpdateProfileInput) (*ProfileView, error) {
	if !in.Caller.Authenticated {
		return nil, apperror.NewUnauthorized("authentication required", nil)
	}
	violations := validation.Struct("", in)
	if in.Username != nil && strings.TrimSpace(*in.Username) == "" {
		violations = append(violations, "username: may not be blank")
	}
	if len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid profile", violations)
	}

	var (
		u *user.User
		p *profile.Profile
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if u, err = uc.repos.Users.FindByID(ctx, in.Caller.AccountID); err != nil {
			return err
		}
		if p, err = uc.repos.Profiles.GetOrCreate(ctx, u.ID); err != nil {
			return err
		}

		if in.Username != nil || in.FirstName != nil || in.LastName != nil {
			apply(&u.Username, in.Username)
			apply(&u.FirstName, in.FirstName)
			apply(&u.LastName, in.LastName)
			u.Username = strings.TrimSpace(u.Username)
			if err := uc.repos.Users.Update(ctx, u); err != nil {
				return err
			}
		}

		apply(&p.Bio, in.Bio)
		apply(&p.Title, in.Title)
		apply(&p.Location, in.Location)
		apply(&p.Phone, in.Phone)
		apply(&p.Website, in.Website)
		apply(&p.Github, in.Github)
		apply(&p.Linkedin, in.Linkedin)
		apply(&p.Twitter, in.Twitter)
		p.UpdatedAt = time.Now().UTC()
		if err := uc.repos.Profiles.Update(ctx, p); err != nil {
			return err
		}

		links := []struct {
			c   profile.Collection
			ids *[]uuid.UUID
		}{
			{profile.CollectionSkillCategories, in.SkillCategoryIDs},
			{profile.CollectionCertifications, in.CertificationIDs},
			{profile.CollectionLanguages, in.LanguageIDs},
		}
		for _, l := range links {
			if l.ids == nil {
				continue
			}
			if err := uc.repos.Links.ReplaceAll(ctx, p.ID, l.c, collection.Dedupe(*l.ids)); err != nil {
				return fmt.Errorf("replace %s links failed: %w", l.c, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	collection.Invalidate(ctx, uc.cache, uc.logger, u.ID)
	uc.logger.Info("Profile updated", zap.String("account_id", u.ID.String()))
	return uc.view(ctx, u, p)
}

func apply(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func (uc *ProfileUseCase) Delete(ctx context.Context, caller identity.Caller) error {
	if !caller.Authenticated {
		return apperror.NewUnauthorized("authentication required", nil)
	}
	p, err := uc.repos.Profiles.FindByAccountID(ctx, caller.AccountID)
	if err != nil {
		return err
	}
	if err := uc.repos.Profiles.Delete(ctx, caller.AccountID); err != nil {
		return err
	}
	uc.images.Discard(p.ImagePublicID)
	collection.Invalidate(ctx, uc.cache, uc.logger, caller.AccountID)
	return nil
}

// UploadImage stores a new profile picture and returns its URL.
func (uc *ProfileUseCase) UploadImage(ctx context.Context, caller identity.Caller, file media.ImageFile) (string, error) {
	p, err := uc.locator.Own(ctx, caller)
	if err != nil {
		return "", err
	}

	folder := fmt.Sprintf("users/%s/profile", caller.AccountID)
	res, err := uc.images.Put(ctx, file, folder, "user_"+caller.AccountID.String())
	if err != nil {
		return "", err
	}

	previous := p.ImagePublicID
	p.SetImage(res.URL, res.PublicID)
	p.UpdatedAt = time.Now().UTC()
	if err := uc.repos.Profiles.Update(ctx, p); err != nil {
		uc.images.Discard(&res.PublicID)
		if errors.Is(err, apperror.ErrInternal) {
			return "", err
		}
		return "", apperror.NewInternal("failed to save profile image", err)
	}
	uc.images.Discard(previous)

	collection.Invalidate(ctx, uc.cache, uc.logger, caller.AccountID)
	uc.images.Announce(service.PortfolioEvent{
		EventType:  service.EventProfileImageUploaded,
		AccountID:  caller.AccountID,
		ResourceID: p.ID,
		PublicID:   res.PublicID,
	})
	return res.URL, nil
}

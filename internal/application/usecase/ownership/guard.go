package ownership

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/project"
	"github.com/khoahotran/portfolio-api/internal/domain/skill"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

var tracer = otel.Tracer("portfolio-api/ownership")

type Kind string

const (
	KindProject       Kind = "project"
	KindCertification Kind = "certification"
	KindLanguage      Kind = "language"
	KindSkillCategory Kind = "skill_category"
	KindSkill         Kind = "skill"
)

// Resource is the target of a mutation. OwnerID is only read for projects.
type Resource struct {
	Kind    Kind
	ID      uuid.UUID
	OwnerID uuid.UUID
}

func ProjectResource(p *project.Project) Resource {
	return Resource{Kind: KindProject, ID: p.ID, OwnerID: p.OwnerID}
}

func CertificationResource(id uuid.UUID) Resource {
	return Resource{Kind: KindCertification, ID: id}
}

func LanguageResource(id uuid.UUID) Resource {
	return Resource{Kind: KindLanguage, ID: id}
}

func SkillCategoryResource(id uuid.UUID) Resource {
	return Resource{Kind: KindSkillCategory, ID: id}
}

func SkillResource(id uuid.UUID) Resource {
	return Resource{Kind: KindSkill, ID: id}
}

type Decision struct {
	Allowed bool
	Reason  string

	anonymous bool
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err turns a denial into the error handlers report; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.anonymous {
		return apperror.NewUnauthorized(d.Reason, nil)
	}
	return apperror.NewPermissionDenied(d.Reason)
}

type Guard struct {
	profileRepo profile.Repository
	linkRepo    profile.LinkRepository
	skillRepo   skill.Repository
	logger      logger.Logger
}

func NewGuard(pRepo profile.Repository, lRepo profile.LinkRepository, sRepo skill.Repository, log logger.Logger) *Guard {
	return &Guard{profileRepo: pRepo, linkRepo: lRepo, skillRepo: sRepo, logger: log}
}

func (g *Guard) AuthorizeMutation(ctx context.Context, caller identity.Caller, res Resource) (Decision, error) {
	ctx, span := tracer.Start(ctx, "Guard.AuthorizeMutation")
	defer span.End()
	span.SetAttributes(attribute.String("resource.kind", string(res.Kind)), attribute.String("resource.id", res.ID.String()))

	d, err := g.decide(ctx, caller, res)
	if err != nil {
		span.RecordError(err)
		return Decision{}, err
	}
	span.SetAttributes(attribute.Bool("allowed", d.Allowed))
	if !d.Allowed {
		g.logger.WithContext(ctx).Debug("Mutation denied",
			zap.String("kind", string(res.Kind)),
			zap.String("resource_id", res.ID.String()),
			zap.String("reason", d.Reason),
		)
	}
	return d, nil
}

// Authorize is AuthorizeMutation with the denial folded into the error.
func (g *Guard) Authorize(ctx context.Context, caller identity.Caller, res Resource) error {
	d, err := g.AuthorizeMutation(ctx, caller, res)
	if err != nil {
		return err
	}
	return d.Err()
}

func (g *Guard) decide(ctx context.Context, caller identity.Caller, res Resource) (Decision, error) {
	if !caller.Authenticated {
		return Decision{Reason: "authentication required", anonymous: true}, nil
	}

	if res.Kind == KindProject {
		if res.OwnerID == caller.AccountID {
			return allow(), nil
		}
		return deny("you do not own this project"), nil
	}

	p, err := g.profileRepo.FindByAccountID(ctx, caller.AccountID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return deny("caller has no profile"), nil
		}
		return Decision{}, err
	}

	var (
		collection profile.Collection
		itemID     = res.ID
	)
	switch res.Kind {
	case KindCertification:
		collection = profile.CollectionCertifications
	case KindLanguage:
		collection = profile.CollectionLanguages
	case KindSkillCategory:
		collection = profile.CollectionSkillCategories
	case KindSkill:
		s, err := g.skillRepo.FindSkillByID(ctx, res.ID)
		if err != nil {
			return Decision{}, err
		}
		collection = profile.CollectionSkillCategories
		itemID = s.CategoryID
	default:
		return Decision{}, apperror.NewInternal("unknown resource kind "+string(res.Kind), nil)
	}

	linked, err := g.linkRepo.Contains(ctx, p.ID, collection, itemID)
	if err != nil {
		return Decision{}, err
	}
	if !linked {
		return deny("this " + strings.ReplaceAll(string(res.Kind), "_", " ") + " is not part of your profile"), nil
	}
	return allow(), nil
}

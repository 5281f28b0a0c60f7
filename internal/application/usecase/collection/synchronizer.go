package collection

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/domain/certification"
	"github.com/khoahotran/portfolio-api/internal/domain/language"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/skill"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

var tracer = otel.Tracer("portfolio-api/collection")

type Result struct {
	Created int `json:"created"`
	Reused  int `json:"reused"`
}

func (r *Result) count(created bool) {
	if created {
		r.Created++
	} else {
		r.Reused++
	}
}

// Synchronizer replaces a whole profile collection with a client-supplied list.
// Shared rows are matched by natural key, so re-sending the same list creates
// nothing new.
type Synchronizer struct {
	tx        service.TxManager
	linkRepo  profile.LinkRepository
	certRepo  certification.Repository
	langRepo  language.Repository
	skillRepo skill.Repository
	cache     service.Cache
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewSynchronizer(
	tx service.TxManager,
	linkRepo profile.LinkRepository,
	certRepo certification.Repository,
	langRepo language.Repository,
	skillRepo skill.Repository,
	cache service.Cache,
	publisher service.EventPublisher,
	log logger.Logger,
) *Synchronizer {
	return &Synchronizer{
		tx:        tx,
		linkRepo:  linkRepo,
		certRepo:  certRepo,
		langRepo:  langRepo,
		skillRepo: skillRepo,
		cache:     cache,
		publisher: publisher,
		logger:    log,
	}
}

func (s *Synchronizer) SyncCertifications(ctx context.Context, owner *profile.Profile, specs []CertificationSpec) (*Result, error) {
	if violations := ValidateCertifications(specs); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid certifications", violations)
	}

	return s.sync(ctx, owner, profile.CollectionCertifications, len(specs), func(ctx context.Context, res *Result) ([]uuid.UUID, error) {
		ids := make([]uuid.UUID, 0, len(specs))
		for i, spec := range specs {
			c := CertificationFromSpec(spec, owner.AccountID)
			created, err := s.certRepo.Upsert(ctx, c)
			if err != nil {
				return nil, fmt.Errorf("upsert certification [%d] failed: %w", i, err)
			}
			res.count(created)
			ids = append(ids, c.ID)
		}
		return ids, nil
	})
}

func (s *Synchronizer) SyncLanguages(ctx context.Context, owner *profile.Profile, specs []LanguageSpec) (*Result, error) {
	if violations := ValidateLanguages(specs); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid languages", violations)
	}

	return s.sync(ctx, owner, profile.CollectionLanguages, len(specs), func(ctx context.Context, res *Result) ([]uuid.UUID, error) {
		ids := make([]uuid.UUID, 0, len(specs))
		for i, spec := range specs {
			l, err := LanguageFromSpec(spec)
			if err != nil {
				return nil, err
			}
			created, err := s.langRepo.Upsert(ctx, l)
			if err != nil {
				return nil, fmt.Errorf("upsert language [%d] failed: %w", i, err)
			}
			res.count(created)
			ids = append(ids, l.ID)
		}
		return ids, nil
	})
}

// SyncSkillCategories upserts each category and its nested skills. Skills
// already in a category but missing from the request are left alone.
func (s *Synchronizer) SyncSkillCategories(ctx context.Context, owner *profile.Profile, specs []SkillCategorySpec) (*Result, error) {
	if violations := ValidateSkillCategories(specs); len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid skill categories", violations)
	}

	return s.sync(ctx, owner, profile.CollectionSkillCategories, len(specs), func(ctx context.Context, res *Result) ([]uuid.UUID, error) {
		ids := make([]uuid.UUID, 0, len(specs))
		for i, spec := range specs {
			cat, created, err := s.skillRepo.UpsertCategory(ctx, strings.TrimSpace(spec.Category))
			if err != nil {
				return nil, fmt.Errorf("upsert skill category [%d] failed: %w", i, err)
			}
			res.count(created)
			for j, sk := range spec.Skills {
				if _, _, err := s.skillRepo.UpsertSkill(ctx, cat.ID, strings.TrimSpace(sk.Name), sk.Level); err != nil {
					return nil, fmt.Errorf("upsert skill [%d].skills[%d] failed: %w", i, j, err)
				}
			}
			ids = append(ids, cat.ID)
		}
		return ids, nil
	})
}

func (s *Synchronizer) sync(
	ctx context.Context,
	owner *profile.Profile,
	c profile.Collection,
	size int,
	upsertAll func(ctx context.Context, res *Result) ([]uuid.UUID, error),
) (*Result, error) {
	ctx, span := tracer.Start(ctx, "Synchronizer.Sync",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("collection", string(c)), attribute.Int("items", size)),
	)
	defer span.End()

	l := s.logger.WithContext(ctx).With(zap.String("profile_id", owner.ID.String()), zap.String("collection", string(c)))

	res := &Result{}
	var ids []uuid.UUID
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		upserted, err := upsertAll(ctx, res)
		if err != nil {
			return err
		}
		ids = Dedupe(upserted)
		return s.linkRepo.ReplaceAll(ctx, owner.ID, c, ids)
	})
	if err != nil {
		span.RecordError(err)
		l.Error("Collection sync rolled back", err)
		return nil, err
	}

	l.Info("Collection synced", zap.Int("created", res.Created), zap.Int("reused", res.Reused))
	s.afterWrite(ctx, owner, c, ids, res)
	return res, nil
}

// afterWrite drops the public read cache of every account sharing the synced
// rows and announces the change. Neither failure undoes the committed sync.
func (s *Synchronizer) afterWrite(ctx context.Context, owner *profile.Profile, c profile.Collection, ids []uuid.UUID, res *Result) {
	InvalidateLinked(ctx, s.cache, s.linkRepo, s.logger, c, ids, owner.AccountID)

	evt := service.PortfolioEvent{
		EventType:  service.EventCollectionSynced,
		AccountID:  owner.AccountID,
		ResourceID: owner.ID,
		Collection: string(c),
		Created:    res.Created,
		Reused:     res.Reused,
	}
	go func() {
		if err := s.publisher.PublishPortfolioEvent(context.Background(), evt); err != nil {
			s.logger.Error("Failed to publish Kafka 'collection.synced' event", err, zap.String("account_id", owner.AccountID.String()))
		}
	}()
}

// Dedupe keeps the first occurrence of every id, preserving order.
func Dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func CertificationFromSpec(spec CertificationSpec, createdBy uuid.UUID) *certification.Certification {
	c := &certification.Certification{
		Title:      strings.TrimSpace(spec.Title),
		Issuer:     strings.TrimSpace(spec.Issuer),
		Date:       spec.Date,
		Badge:      spec.Badge,
		Type:       certification.Type(spec.Type),
		InProgress: spec.InProgress,
		CreatedBy:  &createdBy,
	}
	if c.Type == "" {
		c.Type = certification.TypeOther
	}
	return c
}

func LanguageFromSpec(spec LanguageSpec) (*language.Language, error) {
	p, err := language.ParseProficiency(spec.Proficiency)
	if err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	return &language.Language{Name: strings.TrimSpace(spec.Name), Proficiency: p}, nil
}

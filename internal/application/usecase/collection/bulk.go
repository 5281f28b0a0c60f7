package collection

import (
	"context"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
)

// BulkUseCase runs a sync on the caller's own profile.
type BulkUseCase struct {
	locator *Locator
	sync    *Synchronizer
}

func NewBulkUseCase(locator *Locator, sync *Synchronizer) *BulkUseCase {
	return &BulkUseCase{locator: locator, sync: sync}
}

// owner rejects an invalid list before the profile is touched.
func (uc *BulkUseCase) owner(ctx context.Context, caller identity.Caller, details string, violations []string) (*profile.Profile, error) {
	if !caller.Authenticated {
		return nil, apperror.NewUnauthorized("authentication required", nil)
	}
	if len(violations) > 0 {
		return nil, apperror.NewValidation(details, violations)
	}
	return uc.locator.Own(ctx, caller)
}

func (uc *BulkUseCase) Certifications(ctx context.Context, caller identity.Caller, specs []CertificationSpec) (*Result, error) {
	p, err := uc.owner(ctx, caller, "Invalid certifications", ValidateCertifications(specs))
	if err != nil {
		return nil, err
	}
	return uc.sync.SyncCertifications(ctx, p, specs)
}

func (uc *BulkUseCase) Languages(ctx context.Context, caller identity.Caller, specs []LanguageSpec) (*Result, error) {
	p, err := uc.owner(ctx, caller, "Invalid languages", ValidateLanguages(specs))
	if err != nil {
		return nil, err
	}
	return uc.sync.SyncLanguages(ctx, p, specs)
}

func (uc *BulkUseCase) SkillCategories(ctx context.Context, caller identity.Caller, specs []SkillCategorySpec) (*Result, error) {
	p, err := uc.owner(ctx, caller, "Invalid skill categories", ValidateSkillCategories(specs))
	if err != nil {
		return nil, err
	}
	return uc.sync.SyncSkillCategories(ctx, p, specs)
}

package auth

import (
	"context"
	"errors"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
)

type AccountUseCase struct {
	resolver    *identity.Resolver
	profileRepo profile.Repository
}

func NewAccountUseCase(resolver *identity.Resolver, profileRepo profile.Repository) *AccountUseCase {
	return &AccountUseCase{resolver: resolver, profileRepo: profileRepo}
}

// Account is a user with the picture from its profile, if it has one.
type Account struct {
	User         *user.User
	ProfileImage *string
}

func (uc *AccountUseCase) Me(ctx context.Context, caller identity.Caller) (*Account, error) {
	if !caller.Authenticated {
		return nil, apperror.NewUnauthorized("authentication required", nil)
	}
	u, err := uc.resolver.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}
	return uc.withImage(ctx, u)
}

// Owner returns the public portfolio owner's account.
func (uc *AccountUseCase) Owner(ctx context.Context) (*Account, error) {
	u, err := uc.resolver.Owner(ctx)
	if err != nil {
		return nil, err
	}
	return uc.withImage(ctx, u)
}

func (uc *AccountUseCase) withImage(ctx context.Context, u *user.User) (*Account, error) {
	p, err := uc.profileRepo.FindByAccountID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &Account{User: u}, nil
		}
		return nil, err
	}
	return &Account{User: u, ProfileImage: p.ImageURL}, nil
}

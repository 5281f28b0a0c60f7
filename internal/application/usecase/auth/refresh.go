package auth

import (
	"context"
	"errors"

	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/auth"
)

type RefreshTokenUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
}

func NewRefreshTokenUseCase(repo user.Repository, jwtSvc *auth.JWTService) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{userRepo: repo, jwtSvc: jwtSvc}
}

// Execute trades a refresh token for a new access token. The account must
// still exist.
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperror.NewInvalidInput("refresh token is required", nil)
	}
	claims, err := uc.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperror.NewUnauthorized("token is invalid or expired", err)
	}

	u, err := uc.userRepo.FindByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", apperror.NewUnauthorized("account no longer exists", err)
		}
		return "", err
	}

	access, err := uc.jwtSvc.GenerateToken(u.ID, u.Username)
	if err != nil {
		return "", apperror.NewInternal("failed to generate token", err)
	}
	return access, nil
}

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/domain/profile"
	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/auth"
	"github.com/khoahotran/portfolio-api/pkg/logger"
	"github.com/khoahotran/portfolio-api/pkg/validation"
)

type RegisterUseCase struct {
	tx          service.TxManager
	userRepo    user.Repository
	profileRepo profile.Repository
	logger      logger.Logger
}

func NewRegisterUseCase(tx service.TxManager, uRepo user.Repository, pRepo profile.Repository, log logger.Logger) *RegisterUseCase {
	return &RegisterUseCase{tx: tx, userRepo: uRepo, profileRepo: pRepo, logger: log}
}

type RegisterInput struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

// Execute creates the account together with its empty profile.
func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (*user.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	violations := validation.Struct("", input)
	if input.PasswordConfirm != "" && input.Password != input.PasswordConfirm {
		violations = append(violations, "password: Passwords don't match")
	}
	if len(violations) > 0 {
		return nil, apperror.NewValidation("Invalid registration", violations)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Create(ctx, u); err != nil {
			return err
		}
		_, err := uc.profileRepo.GetOrCreate(ctx, u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Account registered", zap.String("user_id", u.ID.String()), zap.String("username", u.Username))
	return u, nil
}

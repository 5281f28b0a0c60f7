package auth

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/domain/user"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/auth"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

var ErrInvalidCredentials = errors.New("username or password is incorrect")

type LoginUseCase struct {
	userRepo user.Repository
	jwtSvc   *auth.JWTService
	logger   logger.Logger
}

func NewLoginUseCase(repo user.Repository, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		userRepo: repo,
		jwtSvc:   jwtSvc,
		logger:   log,
	}
}

// LoginInput takes either a username or an email as the login handle.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken  string
	RefreshToken string
}

var tracer = otel.Tracer("portfolio-api/auth")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "LoginUseCase.Execute")
	defer span.End()

	if input.Password == "" || (input.Username == "" && input.Email == "") {
		return nil, apperror.NewInvalidInput("username (or email) and password are required", nil)
	}

	var (
		u   *user.User
		err error
	)
	if input.Username != "" {
		u, err = uc.userRepo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	} else {
		u, err = uc.userRepo.FindByEmail(ctx, strings.TrimSpace(input.Email))
	}
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewUnauthorized("no active account found with the given credentials", ErrInvalidCredentials)
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(input.Password, u.PasswordHash) {
		err := apperror.NewUnauthorized("no active account found with the given credentials", ErrInvalidCredentials)
		span.RecordError(err)
		return nil, err
	}

	access, err := uc.jwtSvc.GenerateToken(u.ID, u.Username)
	if err != nil {
		uc.logger.WithContext(ctx).Error("Failed to generate token", err, zap.String("user_id", u.ID.String()))
		return nil, apperror.NewInternal("failed to generate token", err)
	}
	refresh, err := uc.jwtSvc.GenerateRefreshToken(u.ID)
	if err != nil {
		uc.logger.WithContext(ctx).Error("Failed to generate refresh token", err, zap.String("user_id", u.ID.String()))
		return nil, apperror.NewInternal("failed to generate refresh token", err)
	}

	span.SetAttributes(attribute.String("user_id", u.ID.String()))
	return &LoginOutput{AccessToken: access, RefreshToken: refresh}, nil
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio-api/internal/application/usecase/auth"
	"github.com/khoahotran/portfolio-api/pkg/apperror"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type AuthHandler struct {
	registerUseCase *auth.RegisterUseCase
	loginUseCase    *auth.LoginUseCase
	refreshUseCase  *auth.RefreshTokenUseCase
	accountUseCase  *auth.AccountUseCase
	logger          logger.Logger
}

func NewAuthHandler(
	registerUC *auth.RegisterUseCase,
	loginUC *auth.LoginUseCase,
	refreshUC *auth.RefreshTokenUseCase,
	accountUC *auth.AccountUseCase,
	log logger.Logger,
) *AuthHandler {
	return &AuthHandler{
		registerUseCase: registerUC,
		loginUseCase:    loginUC,
		refreshUseCase:  refreshUC,
		accountUseCase:  accountUC,
		logger:          log,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for registration", err))
		return
	}

	u, err := h.registerUseCase.Execute(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToUserDTO(u, nil))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for login", err))
		return
	}

	output, err := h.loginUseCase.Execute(c.Request.Context(), auth.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access":  output.AccessToken,
		"refresh": output.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("refresh token is required", err))
		return
	}

	access, err := h.refreshUseCase.Execute(c.Request.Context(), req.Refresh)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.accountUseCase.Me(c.Request.Context(), CallerFromGinContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTO(account.User, account.ProfileImage))
}

func (h *AuthHandler) Owner(c *gin.Context) {
	account, err := h.accountUseCase.Owner(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToUserDTO(account.User, account.ProfileImage))
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/portfolio-api/adapters/persistence"
	authUC "github.com/khoahotran/portfolio-api/internal/application/usecase/auth"
	"github.com/khoahotran/portfolio-api/internal/application/usecase/identity"
	"github.com/khoahotran/portfolio-api/internal/config"
	"github.com/khoahotran/portfolio-api/pkg/auth"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

type AuthE2ETestSuite struct {
	suite.Suite
	Router   *gin.Engine
	dbPool   *pgxpool.Pool
	username string
	testPass string
}

func (s *AuthE2ETestSuite) SetupSuite() {
	cfg, err := config.LoadConfig("../..")
	if err != nil {
		s.T().Fatalf("Failed to load config for E2E test: %v", err)
	}

	appLogger := logger.NewZapLogger("development")
	if err := persistence.RunMigrations(cfg, appLogger); err != nil {
		s.T().Fatalf("E2E test failed to migrate: %v", err)
	}

	dbPool, err := pgxpool.New(context.Background(), cfg.DB.DSN)
	if err != nil {
		s.T().Fatalf("E2E test failed to connect postgres: %v", err)
	}
	s.dbPool = dbPool

	s.username = "e2e_test_user"
	s.testPass = "e2e_test_password_123"
	if _, err := dbPool.Exec(context.Background(), `DELETE FROM users WHERE username = $1`, s.username); err != nil {
		s.T().Fatalf("E2E test failed to clean user: %v", err)
	}

	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	txManager := persistence.NewTxManager(dbPool, appLogger)
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.RefreshSecret, cfg.Auth.TokenLifespan, cfg.Auth.RefreshLifespan)
	resolver := identity.NewResolver(userRepo, cfg.Portfolio.OwnerUsername, appLogger)

	authHandler := NewAuthHandler(
		authUC.NewRegisterUseCase(txManager, userRepo, profileRepo, appLogger),
		authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger),
		authUC.NewRefreshTokenUseCase(userRepo, jwtSvc),
		authUC.NewAccountUseCase(resolver, profileRepo),
		appLogger,
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorMiddleware(appLogger), OptionalAuth(jwtSvc))

	api := router.Group("/api/auth")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/me", RequireAuth(), authHandler.Me)
	}

	s.Router = router
}

func (s *AuthE2ETestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Exec(context.Background(), `DELETE FROM users WHERE username = $1`, s.username)
		s.dbPool.Close()
	}
}

func TestAuthE2E(t *testing.T) {
	if os.Getenv("E2E_TESTS") == "" {
		t.Skip("Skipping E2E tests. Set E2E_TESTS=1 to run.")
	}
	suite.Run(t, new(AuthE2ETestSuite))
}

func (s *AuthE2ETestSuite) post(path string, body gin.H) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func (s *AuthE2ETestSuite) Test_Login_Flow() {
	rrReg := s.post("/api/auth/register", gin.H{
		"username":         s.username,
		"email":            s.username + "@example.com",
		"password":         s.testPass,
		"password_confirm": s.testPass,
	})
	assert.Equal(s.T(), http.StatusCreated, rrReg.Code)

	rrBad := s.post("/api/auth/login", gin.H{"username": s.username, "password": "wrongpassword"})
	assert.Equal(s.T(), http.StatusUnauthorized, rrBad.Code)

	rrGood := s.post("/api/auth/login", gin.H{"username": s.username, "password": s.testPass})
	assert.Equal(s.T(), http.StatusOK, rrGood.Code)

	var loginResponse map[string]string
	json.Unmarshal(rrGood.Body.Bytes(), &loginResponse)
	accessToken := loginResponse["access"]
	assert.NotEmpty(s.T(), accessToken)

	reqAuth := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	reqAuth.Header.Set("Authorization", "Bearer "+accessToken)
	rrAuth := httptest.NewRecorder()
	s.Router.ServeHTTP(rrAuth, reqAuth)
	assert.Equal(s.T(), http.StatusOK, rrAuth.Code)

	reqNoAuth := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rrNoAuth := httptest.NewRecorder()
	s.Router.ServeHTTP(rrNoAuth, reqNoAuth)
	assert.Equal(s.T(), http.StatusUnauthorized, rrNoAuth.Code)
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"

	issuer = "portfolio-api"
)

var ErrWrongTokenType = errors.New("unexpected token type")

type JWTService struct {
	secretKey       []byte
	refreshKey      []byte
	tokenLifespan   time.Duration
	refreshLifespan time.Duration
	now             func() time.Time
}

type CustomClaims struct {
	AccountID uuid.UUID `json:"account_id"`
	Username  string    `json:"username,omitempty"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

func NewJWTService(secretKey, refreshKey string, tokenLifespan, refreshLifespan time.Duration) *JWTService {
	if refreshKey == "" {
		refreshKey = secretKey
	}
	return &JWTService{
		secretKey:       []byte(secretKey),
		refreshKey:      []byte(refreshKey),
		tokenLifespan:   tokenLifespan,
		refreshLifespan: refreshLifespan,
		now:             time.Now,
	}
}

func (s *JWTService) GenerateToken(accountID uuid.UUID, username string) (string, error) {
	return s.sign(accountID, username, TokenTypeAccess, s.tokenLifespan, s.secretKey)
}

func (s *JWTService) GenerateRefreshToken(accountID uuid.UUID) (string, error) {
	return s.sign(accountID, "", TokenTypeRefresh, s.refreshLifespan, s.refreshKey)
}

func (s *JWTService) sign(accountID uuid.UUID, username, tokenType string, lifespan time.Duration, key []byte) (string, error) {
	now := s.now()
	claims := CustomClaims{
		AccountID: accountID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(lifespan)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   accountID.String(),
			Issuer:    issuer,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("cannot sign token: %w", err)
	}

	return signedString, nil
}

// ValidateToken accepts access tokens only.
func (s *JWTService) ValidateToken(tokenString string) (*CustomClaims, error) {
	return s.parse(tokenString, s.secretKey, TokenTypeAccess)
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (*CustomClaims, error) {
	return s.parse(tokenString, s.refreshKey, TokenTypeRefresh)
}

func (s *JWTService) parse(tokenString string, key []byte, wantType string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signature algorithm: %v", token.Header["alg"])
		}
		return key, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("error when parsing token claims")
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

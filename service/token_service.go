// file: service/token_service.go

package service

import (
	"fmt"
	"nutritrack-api/config"
	"nutritrack-api/logger"
	"nutritrack-api/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind selects which signing secret verifies a token. Access and
// refresh tokens use independent secrets, so an access token can never be
// replayed as a refresh token or vice versa.
type TokenKind string

const (
	AccessTokenKind  TokenKind = "access"
	RefreshTokenKind TokenKind = "refresh"
)

// ITokenService defines the contract for minting and verifying tokens.
type ITokenService interface {
	IssueAccessToken(user *model.User) (string, error)
	IssueRefreshToken(user *model.User) (string, error)
	Verify(tokenString string, kind TokenKind) (*model.AppClaims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// TokenService is a stateless token issuer. Issuing has no side effects;
// persisting refresh tokens is the auth service's job.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService() *TokenService {
	cfg := config.AppConfig.JWT
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

// NewTokenServiceWith builds a token service with explicit secrets and TTLs,
// used by tests to construct isolated instances.
func NewTokenServiceWith(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *TokenService) secretFor(kind TokenKind) []byte {
	if kind == RefreshTokenKind {
		return s.refreshSecret
	}
	return s.accessSecret
}

func (s *TokenService) issue(user *model.User, kind TokenKind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &model.AppClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretFor(kind))
	if err != nil {
		logger.Log.WithError(err).WithField("email", user.Email).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}

	return tokenString, nil
}

// IssueAccessToken mints a short-lived access token carrying identity and
// role claims.
func (s *TokenService) IssueAccessToken(user *model.User) (string, error) {
	return s.issue(user, AccessTokenKind, s.accessTTL)
}

// IssueRefreshToken mints a longer-lived refresh token. The caller is
// responsible for persisting it in the refresh token store.
func (s *TokenService) IssueRefreshToken(user *model.User) (string, error) {
	return s.issue(user, RefreshTokenKind, s.refreshTTL)
}

// Verify checks signature and expiry against the secret for the given kind
// and returns the claims.
//
// A payload without a role claim is accepted and defaults to the
// lowest-privilege role. Tokens minted before role claims existed must keep
// working; role is independently re-checked server-side on every sensitive
// mutation, so this compatibility branch does not widen access.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (*model.AppClaims, error) {
	claims := &model.AppClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretFor(kind), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid %s token: %w", kind, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid %s token", kind)
	}

	if claims.Role == "" {
		claims.Role = model.RoleUser
	}

	return claims, nil
}

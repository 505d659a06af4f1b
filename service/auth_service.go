// file: service/auth_service.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"nutritrack-api/common"
	"nutritrack-api/logger"
	"nutritrack-api/model"
	"nutritrack-api/repository"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

// IAuthService defines the contract for identity lifecycle operations.
type IAuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.TokenPair, error)
	Login(ctx context.Context, req *model.LoginRequest, identifier string) (*model.User, *model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// AuthService composes the token issuer, the user store and the refresh
// token store into the register/login/refresh/logout lifecycle.
type AuthService struct {
	userRepo  repository.IUserRepository
	tokenRepo repository.ITokenRepository
	tokens    ITokenService
	limiter   IRateLimitService
}

func NewAuthService(userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository, tokens ITokenService, limiter IRateLimitService) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokens:    tokens,
		limiter:   limiter,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// issueTokenPair mints an access+refresh pair and persists the refresh token
// row. Used by register and login; refresh has its own rotation path.
func (s *AuthService) issueTokenPair(user *model.User) (*model.TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}

	row := &model.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.tokenRepo.Create(row); err != nil {
		return nil, err
	}

	return &model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Register creates a new user with the lowest-privilege role and returns the
// user together with a fresh token pair. A taken email fails with a conflict.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.TokenPair, error) {
	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, nil, common.NewInternalError("Error hashing password", err)
	}

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     model.RoleUser,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, nil, common.NewConflictError("Email is already registered")
		}
		return nil, nil, common.NewInternalError("Error creating user", err)
	}

	tokens, err := s.issueTokenPair(user)
	if err != nil {
		return nil, nil, common.NewInternalError("Error issuing tokens", err)
	}

	user.Password = ""
	return user, tokens, nil
}

// Login authenticates by email+password. Attempts are rate-limited per
// identifier (email plus client address) before credentials are checked, and
// each admitted attempt is recorded whether or not the credentials match.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest, identifier string) (*model.User, *model.TokenPair, error) {
	if err := s.limiter.Check(ctx, identifier, ActionLogin); err != nil {
		return nil, nil, err
	}
	if err := s.limiter.Record(ctx, identifier, ActionLogin); err != nil {
		logger.Log.WithError(err).Warn("Failed to record login attempt")
	}

	user, err := s.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, common.NewAuthError("Invalid email or password", nil)
		}
		return nil, nil, common.NewInternalError("Error fetching user", err)
	}

	if !s.CheckPasswordHash(req.Password, user.Password) {
		return nil, nil, common.NewAuthError("Invalid email or password", nil)
	}

	tokens, err := s.issueTokenPair(user)
	if err != nil {
		return nil, nil, common.NewInternalError("Error issuing tokens", err)
	}

	user.Password = ""
	return user, tokens, nil
}

// Refresh redeems a refresh token for a new access+refresh pair, rotating
// the stored row atomically. Every failure is reported as the same auth
// error: a replayed, forged or revoked token must be indistinguishable to
// the caller. A redeemed value is always gone afterwards, so the second use
// of any given refresh token deterministically fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, RefreshTokenKind)
	if err != nil {
		return nil, common.NewAuthError("Invalid refresh token", err)
	}

	row, err := s.tokenRepo.GetByToken(refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already redeemed, revoked or never issued. The distinction is
			// deliberately not surfaced; see the replay-detection note in
			// DESIGN.md.
			logger.Log.WithField("user_id", claims.UserID).Warn("Refresh token row missing on redeem")
			return nil, common.NewAuthError("Invalid refresh token", nil)
		}
		return nil, common.NewInternalError("Error loading refresh token", err)
	}

	if row.ExpiresAt.Before(time.Now()) {
		if err := s.tokenRepo.DeleteByToken(refreshToken); err != nil {
			logger.Log.WithError(err).Warn("Failed to delete expired refresh token")
		}
		return nil, common.NewAuthError("Refresh token expired", nil)
	}

	user := &model.User{ID: row.UserID, Email: claims.Email, Role: claims.Role}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, common.NewInternalError("Error issuing access token", err)
	}
	newRefreshToken, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, common.NewInternalError("Error issuing refresh token", err)
	}

	replacement := &model.RefreshToken{
		Token:     newRefreshToken,
		UserID:    row.UserID,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.tokenRepo.Rotate(refreshToken, replacement); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A concurrent redeem of the same value won the race.
			return nil, common.NewAuthError("Invalid refresh token", nil)
		}
		return nil, common.NewInternalError("Error rotating refresh token", err)
	}

	return &model.TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// Logout revokes a refresh token. Revoking an unknown or already-revoked
// token succeeds, which makes logout idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenRepo.DeleteByToken(refreshToken); err != nil {
		return common.NewInternalError("Error revoking refresh token", err)
	}
	return nil
}

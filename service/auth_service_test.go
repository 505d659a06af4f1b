// file: service/auth_service_test.go

package service

import (
	"context"
	"database/sql"
	"nutritrack-api/common"
	"nutritrack-api/model"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}
func (m *mockUserRepo) GetUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
func (m *mockUserRepo) GetAllUsers() ([]*model.User, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}
func (m *mockUserRepo) UpdateUserRole(userID int, newRole string) error {
	args := m.Called(userID, newRole)
	return args.Error(0)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) Create(token *model.RefreshToken) error {
	args := m.Called(token)
	return args.Error(0)
}
func (m *mockTokenRepo) GetByToken(tokenValue string) (*model.RefreshToken, error) {
	args := m.Called(tokenValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}
func (m *mockTokenRepo) DeleteByToken(tokenValue string) error {
	args := m.Called(tokenValue)
	return args.Error(0)
}
func (m *mockTokenRepo) Rotate(oldTokenValue string, replacement *model.RefreshToken) error {
	args := m.Called(oldTokenValue, replacement)
	return args.Error(0)
}
func (m *mockTokenRepo) DeleteByUserID(userID int) error {
	args := m.Called(userID)
	return args.Error(0)
}
func (m *mockTokenRepo) SweepExpired(now time.Time) (int64, error) {
	args := m.Called(now)
	return args.Get(0).(int64), args.Error(1)
}

// noopLimiter admits everything; login throttling has its own tests.
type noopLimiter struct{}

func (noopLimiter) Check(ctx context.Context, identifier, action string) error  { return nil }
func (noopLimiter) Record(ctx context.Context, identifier, action string) error { return nil }
func (noopLimiter) SweepExpired(ctx context.Context) (int64, error)             { return 0, nil }

func newAuthServiceForTest(userRepo *mockUserRepo, tokenRepo *mockTokenRepo) (*AuthService, *TokenService) {
	tokens := newTestTokenService()
	return NewAuthService(userRepo, tokenRepo, tokens, noopLimiter{}), tokens
}

// TestAuthService_HashAndCheckPassword ensures that password hashing and
// verification methods work correctly.
func TestAuthService_HashAndCheckPassword(t *testing.T) {
	authService, _ := newAuthServiceForTest(nil, nil)
	password := "mySecretPassword123"

	hashedPassword, err := authService.HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hashedPassword)

	assert.True(t, authService.CheckPasswordHash(password, hashedPassword))
	assert.False(t, authService.CheckPasswordHash("notMyPassword", hashedPassword))
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate email conflicts", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		userRepo.On("CreateUser", mock.Anything).Return(&pq.Error{Code: uniqueViolation}).Once()

		svc, _ := newAuthServiceForTest(userRepo, tokenRepo)
		_, _, err := svc.Register(ctx, &model.RegisterRequest{Name: "A", Email: "a@example.com", Password: "password123"})

		require.Error(t, err)
		assert.Equal(t, common.KindConflict, common.AsAppError(err).Kind)
		userRepo.AssertExpectations(t)
	})

	t.Run("new users start with the lowest role", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		userRepo.On("CreateUser", mock.MatchedBy(func(u *model.User) bool {
			return u.Role == model.RoleUser && u.Password != "password123"
		})).Return(nil).Once()
		tokenRepo.On("Create", mock.Anything).Return(nil).Once()

		svc, _ := newAuthServiceForTest(userRepo, tokenRepo)
		user, tokens, err := svc.Register(ctx, &model.RegisterRequest{Name: "A", Email: "a@example.com", Password: "password123"})

		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.Empty(t, user.Password)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
		userRepo.AssertExpectations(t)
		tokenRepo.AssertExpectations(t)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hashed, _ := (&AuthService{}).HashPassword("correct-password")
	storedUser := &model.User{ID: 5, Email: "a@example.com", Password: hashed, Role: model.RoleEditor}

	t.Run("success issues a persisted token pair", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		userRepo.On("GetUserByEmail", "a@example.com").Return(storedUser, nil).Once()
		tokenRepo.On("Create", mock.MatchedBy(func(rt *model.RefreshToken) bool {
			return rt.UserID == 5 && rt.ExpiresAt.After(time.Now())
		})).Return(nil).Once()

		svc, _ := newAuthServiceForTest(userRepo, tokenRepo)
		user, tokens, err := svc.Login(ctx, &model.LoginRequest{Email: "a@example.com", Password: "correct-password"}, "a@example.com|1.2.3.4")

		require.NoError(t, err)
		assert.Equal(t, 5, user.ID)
		assert.NotEmpty(t, tokens.RefreshToken)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		userRepo.On("GetUserByEmail", "a@example.com").Return(storedUser, nil).Once()

		svc, _ := newAuthServiceForTest(userRepo, tokenRepo)
		_, _, err := svc.Login(ctx, &model.LoginRequest{Email: "a@example.com", Password: "wrong-password"}, "id")

		require.Error(t, err)
		assert.Equal(t, common.KindAuth, common.AsAppError(err).Kind)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		userRepo.On("GetUserByEmail", "ghost@example.com").Return(nil, sql.ErrNoRows).Once()

		svc, _ := newAuthServiceForTest(userRepo, tokenRepo)
		_, _, err := svc.Login(ctx, &model.LoginRequest{Email: "ghost@example.com", Password: "whatever123"}, "id")

		require.Error(t, err)
		assert.Equal(t, "Invalid email or password", common.AsAppError(err).Message)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	user := &model.User{ID: 9, Email: "a@example.com", Role: model.RoleUser}

	issueRefresh := func(t *testing.T, tokens *TokenService) string {
		t.Helper()
		refresh, err := tokens.IssueRefreshToken(user)
		require.NoError(t, err)
		return refresh
	}

	t.Run("successful redeem rotates the stored row", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		svc, tokens := newAuthServiceForTest(userRepo, tokenRepo)
		refresh := issueRefresh(t, tokens)

		tokenRepo.On("GetByToken", refresh).Return(&model.RefreshToken{
			Token: refresh, UserID: 9, ExpiresAt: time.Now().Add(time.Hour),
		}, nil).Once()
		tokenRepo.On("Rotate", refresh, mock.MatchedBy(func(rt *model.RefreshToken) bool {
			return rt.UserID == 9 && rt.Token != refresh
		})).Return(nil).Once()

		pair, err := svc.Refresh(ctx, refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEqual(t, refresh, pair.RefreshToken)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("missing row fails regardless of cause", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		svc, tokens := newAuthServiceForTest(userRepo, tokenRepo)
		refresh := issueRefresh(t, tokens)

		tokenRepo.On("GetByToken", refresh).Return(nil, sql.ErrNoRows).Once()

		_, err := svc.Refresh(ctx, refresh)
		require.Error(t, err)
		assert.Equal(t, common.KindAuth, common.AsAppError(err).Kind)
	})

	t.Run("lost rotation race fails as already redeemed", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		svc, tokens := newAuthServiceForTest(userRepo, tokenRepo)
		refresh := issueRefresh(t, tokens)

		tokenRepo.On("GetByToken", refresh).Return(&model.RefreshToken{
			Token: refresh, UserID: 9, ExpiresAt: time.Now().Add(time.Hour),
		}, nil).Once()
		// The concurrent redeem deleted the row between our read and write.
		tokenRepo.On("Rotate", refresh, mock.Anything).Return(sql.ErrNoRows).Once()

		_, err := svc.Refresh(ctx, refresh)
		require.Error(t, err)
		assert.Equal(t, common.KindAuth, common.AsAppError(err).Kind)
	})

	t.Run("expired row is deleted and rejected", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		svc, tokens := newAuthServiceForTest(userRepo, tokenRepo)
		refresh := issueRefresh(t, tokens)

		tokenRepo.On("GetByToken", refresh).Return(&model.RefreshToken{
			Token: refresh, UserID: 9, ExpiresAt: time.Now().Add(-time.Minute),
		}, nil).Once()
		tokenRepo.On("DeleteByToken", refresh).Return(nil).Once()

		_, err := svc.Refresh(ctx, refresh)
		require.Error(t, err)
		assert.Equal(t, common.KindAuth, common.AsAppError(err).Kind)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("garbage token never reaches the store", func(t *testing.T) {
		userRepo := new(mockUserRepo)
		tokenRepo := new(mockTokenRepo)
		svc, _ := newAuthServiceForTest(userRepo, tokenRepo)

		_, err := svc.Refresh(ctx, "not-a-jwt")
		require.Error(t, err)
		tokenRepo.AssertNotCalled(t, "GetByToken")
	})
}

func TestAuthService_LogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	userRepo := new(mockUserRepo)
	tokenRepo := new(mockTokenRepo)
	tokenRepo.On("DeleteByToken", "some-token").Return(nil).Twice()

	svc, _ := newAuthServiceForTest(userRepo, tokenRepo)
	assert.NoError(t, svc.Logout(ctx, "some-token"))
	assert.NoError(t, svc.Logout(ctx, "some-token"))
	tokenRepo.AssertExpectations(t)
}

// file: service/ratelimit_service_test.go

package service

import (
	"context"
	"nutritrack-api/common"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRateLimitRepo struct{ mock.Mock }

func (m *mockRateLimitRepo) CountSince(ctx context.Context, identifier, action string, since time.Time) (int, error) {
	args := m.Called(ctx, identifier, action, since)
	return args.Int(0), args.Error(1)
}

func (m *mockRateLimitRepo) Record(ctx context.Context, identifier, action string) error {
	args := m.Called(ctx, identifier, action)
	return args.Error(0)
}

func (m *mockRateLimitRepo) SweepBefore(ctx context.Context, horizon time.Time) (int64, error) {
	args := m.Called(ctx, horizon)
	return args.Get(0).(int64), args.Error(1)
}

func testLimits() map[string]ActionLimit {
	return map[string]ActionLimit{
		ActionMealAnalysis: {Window: 24 * time.Hour, MaxAttempts: 20, Label: "analysis"},
		ActionRecipeImport: {Window: time.Hour, MaxAttempts: 10, Label: "import"},
	}
}

func TestRateLimitService_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("below ceiling admits", func(t *testing.T) {
		repo := new(mockRateLimitRepo)
		repo.On("CountSince", ctx, "user:1", ActionMealAnalysis, mock.AnythingOfType("time.Time")).Return(19, nil).Once()

		svc := NewRateLimitServiceWith(repo, testLimits())
		assert.NoError(t, svc.Check(ctx, "user:1", ActionMealAnalysis))
		repo.AssertExpectations(t)
	})

	t.Run("at ceiling rejects with retry hint", func(t *testing.T) {
		repo := new(mockRateLimitRepo)
		repo.On("CountSince", ctx, "user:1", ActionMealAnalysis, mock.AnythingOfType("time.Time")).Return(20, nil).Once()

		svc := NewRateLimitServiceWith(repo, testLimits())
		err := svc.Check(ctx, "user:1", ActionMealAnalysis)
		require.Error(t, err)

		appErr := common.AsAppError(err)
		assert.Equal(t, common.KindRateLimited, appErr.Kind)
		assert.Equal(t, 429, appErr.Code)
		assert.Equal(t, "Analysis limit reached (20/day)", appErr.Message)
		repo.AssertExpectations(t)
	})

	t.Run("actions use independent windows", func(t *testing.T) {
		repo := new(mockRateLimitRepo)
		// Import is saturated, analysis is not; only import must reject.
		repo.On("CountSince", ctx, "user:2", ActionRecipeImport, mock.AnythingOfType("time.Time")).Return(10, nil).Once()
		repo.On("CountSince", ctx, "user:2", ActionMealAnalysis, mock.AnythingOfType("time.Time")).Return(0, nil).Once()

		svc := NewRateLimitServiceWith(repo, testLimits())
		assert.Error(t, svc.Check(ctx, "user:2", ActionRecipeImport))
		assert.NoError(t, svc.Check(ctx, "user:2", ActionMealAnalysis))
		repo.AssertExpectations(t)
	})

	t.Run("unconfigured action is never throttled", func(t *testing.T) {
		repo := new(mockRateLimitRepo)
		svc := NewRateLimitServiceWith(repo, testLimits())

		assert.NoError(t, svc.Check(ctx, "user:3", "unknown_action"))
		repo.AssertNotCalled(t, "CountSince")
	})
}

func TestRateLimitService_WindowExpiryAdmitsAgain(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRateLimitRepo)

	// First check: the window still holds all attempts. Second check: the
	// window has slid past them and the count has dropped back to zero.
	repo.On("CountSince", ctx, "user:1", ActionRecipeImport, mock.AnythingOfType("time.Time")).Return(10, nil).Once()
	repo.On("CountSince", ctx, "user:1", ActionRecipeImport, mock.AnythingOfType("time.Time")).Return(0, nil).Once()

	svc := NewRateLimitServiceWith(repo, testLimits())
	assert.Error(t, svc.Check(ctx, "user:1", ActionRecipeImport))
	assert.NoError(t, svc.Check(ctx, "user:1", ActionRecipeImport))
	repo.AssertExpectations(t)
}

func TestRateLimitService_SweepExpired(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRateLimitRepo)
	repo.On("SweepBefore", ctx, mock.AnythingOfType("time.Time")).Return(int64(5), nil).Once()

	svc := NewRateLimitServiceWith(repo, testLimits())
	n, err := svc.SweepExpired(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), n)

	// The horizon passed to the repository must be ~24h in the past.
	horizon := repo.Calls[0].Arguments.Get(1).(time.Time)
	assert.WithinDuration(t, time.Now().Add(-attemptHorizon), horizon, time.Minute)
}

// file: service/ratelimit_service.go

package service

import (
	"context"
	"fmt"
	"nutritrack-api/common"
	"nutritrack-api/config"
	"nutritrack-api/logger"
	"nutritrack-api/repository"
	"time"

	"github.com/sirupsen/logrus"
)

// Rate-limited action names. Each action has its own independent window and
// ceiling; attempts for one action never count against another.
const (
	ActionLogin          = "login"
	ActionMealAnalysis   = "meal_analysis"
	ActionPlanGeneration = "plan_generation"
	ActionRecipeImport   = "recipe_import"
)

// attemptHorizon is how long attempt rows are retained before SweepExpired
// reclaims them. It must be at least as long as the widest configured window.
const attemptHorizon = 24 * time.Hour

// ActionLimit is a window/ceiling pair plus the human-readable label used in
// 429 messages.
type ActionLimit struct {
	Window      time.Duration
	MaxAttempts int
	Label       string
}

// IRateLimitService defines the contract for the sliding-window limiter.
// Callers invoke Check before doing expensive work and Record once the
// attempt is admitted, so a rejected attempt is not itself counted.
type IRateLimitService interface {
	Check(ctx context.Context, identifier, action string) error
	Record(ctx context.Context, identifier, action string) error
	SweepExpired(ctx context.Context) (int64, error)
}

// RateLimitService counts attempts per (identifier, action) in a trailing
// window. The check-then-record pair is a soft guarantee: a small race window
// between concurrent requests is acceptable for abuse mitigation.
type RateLimitService struct {
	repo   repository.IRateLimitRepository
	limits map[string]ActionLimit
}

func NewRateLimitService(repo repository.IRateLimitRepository) *RateLimitService {
	cfg := config.AppConfig.RateLimit
	return NewRateLimitServiceWith(repo, map[string]ActionLimit{
		ActionLogin:          {Window: cfg.Login.Window, MaxAttempts: cfg.Login.MaxAttempts, Label: "login"},
		ActionMealAnalysis:   {Window: cfg.MealAnalysis.Window, MaxAttempts: cfg.MealAnalysis.MaxAttempts, Label: "analysis"},
		ActionPlanGeneration: {Window: cfg.PlanGeneration.Window, MaxAttempts: cfg.PlanGeneration.MaxAttempts, Label: "plan generation"},
		ActionRecipeImport:   {Window: cfg.RecipeImport.Window, MaxAttempts: cfg.RecipeImport.MaxAttempts, Label: "import"},
	})
}

// NewRateLimitServiceWith builds a limiter with explicit per-action limits,
// used by tests to construct isolated instances.
func NewRateLimitServiceWith(repo repository.IRateLimitRepository, limits map[string]ActionLimit) *RateLimitService {
	return &RateLimitService{repo: repo, limits: limits}
}

// Check fails with a rate-limit error when the attempt count for
// (identifier, action) within the action's trailing window has reached the
// ceiling. An action without configured limits is never throttled.
func (s *RateLimitService) Check(ctx context.Context, identifier, action string) error {
	limit, ok := s.limits[action]
	if !ok || limit.MaxAttempts <= 0 {
		return nil
	}

	since := time.Now().Add(-limit.Window)
	count, err := s.repo.CountSince(ctx, identifier, action, since)
	if err != nil {
		return err
	}

	if count >= limit.MaxAttempts {
		logger.Log.WithFields(logrus.Fields{
			"identifier": identifier,
			"action":     action,
			"count":      count,
			"max":        limit.MaxAttempts,
		}).Warn("Rate limit exceeded")
		return common.NewRateLimitError(limitMessage(limit))
	}

	return nil
}

// Record appends one attempt row for (identifier, action).
func (s *RateLimitService) Record(ctx context.Context, identifier, action string) error {
	return s.repo.Record(ctx, identifier, action)
}

// SweepExpired deletes attempt rows older than the retention horizon. It
// never affects Check correctness, which already filters by window.
func (s *RateLimitService) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.SweepBefore(ctx, time.Now().Add(-attemptHorizon))
}

func limitMessage(limit ActionLimit) string {
	per := windowLabel(limit.Window)
	return fmt.Sprintf("%s limit reached (%d/%s)", capitalize(limit.Label), limit.MaxAttempts, per)
}

func windowLabel(window time.Duration) string {
	switch {
	case window >= 24*time.Hour:
		return "day"
	case window >= time.Hour:
		return "hour"
	default:
		return fmt.Sprintf("%dm", int(window.Minutes()))
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

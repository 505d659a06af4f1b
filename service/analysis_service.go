// file: service/analysis_service.go

package service

import (
	"context"
	"fmt"
	"nutritrack-api/common"
	"nutritrack-api/model"
)

// Analyzer is the external collaborator that turns a free-text meal
// description into nutrition numbers. Prompt construction and the AI call
// itself live behind this interface.
type Analyzer interface {
	AnalyzeMeal(ctx context.Context, description string) (*model.MealAnalysis, error)
}

// Planner generates a weekly meal plan for a user.
type Planner interface {
	GeneratePlan(ctx context.Context, userID int, preferences string) (*model.MealPlan, error)
}

// Importer fetches and parses a recipe from an external URL.
type Importer interface {
	ImportRecipe(ctx context.Context, url string) (*model.RecipeInput, error)
}

// IAnalysisService defines the contract for the rate-limited AI operations.
type IAnalysisService interface {
	AnalyzeMeal(ctx context.Context, claims *model.AppClaims, req *model.AnalyzeMealRequest) (*model.MealAnalysis, error)
	GeneratePlan(ctx context.Context, claims *model.AppClaims, req *model.GeneratePlanRequest) (*model.MealPlan, error)
	ImportRecipe(ctx context.Context, claims *model.AppClaims, req *model.ImportRecipeRequest) (*model.Recipe, error)
}

// AnalysisService gates the expensive AI-backed operations behind the
// sliding-window limiter. Each action has its own independent ceiling, keyed
// by the calling user. The limiter is consulted before any external call and
// the attempt is recorded only once admitted.
type AnalysisService struct {
	limiter  IRateLimitService
	analyzer Analyzer
	planner  Planner
	importer Importer
	recipes  IRecipeService
}

func NewAnalysisService(limiter IRateLimitService, analyzer Analyzer, planner Planner, importer Importer, recipes IRecipeService) *AnalysisService {
	return &AnalysisService{
		limiter:  limiter,
		analyzer: analyzer,
		planner:  planner,
		importer: importer,
		recipes:  recipes,
	}
}

func (s *AnalysisService) admit(ctx context.Context, claims *model.AppClaims, action string) error {
	identifier := fmt.Sprintf("user:%d", claims.UserID)
	if err := s.limiter.Check(ctx, identifier, action); err != nil {
		return err
	}
	return s.limiter.Record(ctx, identifier, action)
}

func (s *AnalysisService) AnalyzeMeal(ctx context.Context, claims *model.AppClaims, req *model.AnalyzeMealRequest) (*model.MealAnalysis, error) {
	if err := s.admit(ctx, claims, ActionMealAnalysis); err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.AnalyzeMeal(ctx, req.Description)
	if err != nil {
		return nil, common.NewInternalError("Meal analysis failed", err)
	}
	return analysis, nil
}

func (s *AnalysisService) GeneratePlan(ctx context.Context, claims *model.AppClaims, req *model.GeneratePlanRequest) (*model.MealPlan, error) {
	if err := s.admit(ctx, claims, ActionPlanGeneration); err != nil {
		return nil, err
	}

	plan, err := s.planner.GeneratePlan(ctx, claims.UserID, req.Preferences)
	if err != nil {
		return nil, common.NewInternalError("Plan generation failed", err)
	}
	return plan, nil
}

// ImportRecipe fetches a recipe from an external source and creates it as a
// draft through the regular workflow, so imported recipes follow the same
// review path as hand-written ones.
func (s *AnalysisService) ImportRecipe(ctx context.Context, claims *model.AppClaims, req *model.ImportRecipeRequest) (*model.Recipe, error) {
	if err := s.admit(ctx, claims, ActionRecipeImport); err != nil {
		return nil, err
	}

	input, err := s.importer.ImportRecipe(ctx, req.URL)
	if err != nil {
		return nil, common.NewInternalError("Recipe import failed", err)
	}

	return s.recipes.Create(ctx, claims, input)
}

// file: service/recipe_service.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"nutritrack-api/common"
	"nutritrack-api/logger"
	"nutritrack-api/model"
	"nutritrack-api/repository"
	"time"
)

const publishedRecipesCacheKey = "recipes:published"

// IRecipeService defines the contract for the recipe publication workflow.
type IRecipeService interface {
	Create(ctx context.Context, claims *model.AppClaims, input *model.RecipeInput) (*model.Recipe, error)
	Get(ctx context.Context, claims *model.AppClaims, id int) (*model.Recipe, error)
	ListPublished(ctx context.Context) ([]*model.Recipe, error)
	Submit(ctx context.Context, claims *model.AppClaims, id int) (*model.Recipe, error)
	Review(ctx context.Context, claims *model.AppClaims, id int, req *model.ReviewRequest) (*model.Recipe, error)
	Update(ctx context.Context, claims *model.AppClaims, id int, input *model.RecipeInput) (*model.Recipe, error)
	Delete(ctx context.Context, claims *model.AppClaims, id int) error
}

// RecipeService owns the recipe state machine:
//
//	draft -> pending_review -> published | rejected
//	rejected -> draft (on submit or edit)
//
// Status is written only through the repository's conditional transition, so
// two concurrent decisions on the same recipe can never both succeed.
type RecipeService struct {
	repo  repository.IRecipeRepository
	cache ICacheClient
}

func NewRecipeService(repo repository.IRecipeRepository, cache ICacheClient) *RecipeService {
	return &RecipeService{repo: repo, cache: cache}
}

// canEdit reports whether the caller may modify the recipe: admins always,
// otherwise only the author.
func canEdit(claims *model.AppClaims, recipe *model.Recipe) bool {
	return claims.Role == model.RoleAdmin || claims.UserID == recipe.AuthorID
}

func isReviewer(role model.Role) bool {
	return role == model.RoleEditor || role == model.RoleAdmin
}

func (s *RecipeService) load(id int) (*model.Recipe, error) {
	recipe, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewNotFoundError("Recipe not found")
		}
		return nil, common.NewInternalError("Error fetching recipe", err)
	}
	return recipe, nil
}

func (s *RecipeService) invalidatePublishedCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, publishedRecipesCacheKey).Err(); err != nil {
		logger.Log.WithError(err).Warn("Failed to invalidate published recipes cache")
	}
}

// Create adds a recipe in draft, authored by the caller. Only editors and
// admins may author recipes.
func (s *RecipeService) Create(ctx context.Context, claims *model.AppClaims, input *model.RecipeInput) (*model.Recipe, error) {
	if !isReviewer(claims.Role) {
		return nil, common.NewForbiddenError("Only editors can create recipes")
	}

	recipe := &model.Recipe{
		AuthorID:    claims.UserID,
		Title:       input.Title,
		Description: input.Description,
		Status:      model.StatusDraft,
	}
	if err := s.repo.Create(recipe); err != nil {
		return nil, common.NewInternalError("Error creating recipe", err)
	}
	return recipe, nil
}

// Get returns a recipe. Published recipes are visible to any authenticated
// caller; anything else only to the author or an admin.
func (s *RecipeService) Get(ctx context.Context, claims *model.AppClaims, id int) (*model.Recipe, error) {
	recipe, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if recipe.Status != model.StatusPublished && !canEdit(claims, recipe) {
		return nil, common.NewForbiddenError("You do not have access to this recipe")
	}
	return recipe, nil
}

// ListPublished lists published recipes using a cache-aside strategy.
func (s *RecipeService) ListPublished(ctx context.Context) ([]*model.Recipe, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, publishedRecipesCacheKey).Result(); err == nil {
			var recipes []*model.Recipe
			if err := json.Unmarshal([]byte(cached), &recipes); err == nil {
				return recipes, nil
			}
		}
	}

	recipes, err := s.repo.GetPublished()
	if err != nil {
		return nil, common.NewInternalError("Error listing recipes", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(recipes); err == nil {
			s.cache.Set(ctx, publishedRecipesCacheKey, data, 10*time.Minute)
		}
	}

	return recipes, nil
}

// Submit moves a draft or rejected recipe into pending_review. Only the
// author may submit, and the transition is checked against the status as it
// is at write time: submitting from any other state fails, including when a
// concurrent request changed it after our read.
func (s *RecipeService) Submit(ctx context.Context, claims *model.AppClaims, id int) (*model.Recipe, error) {
	recipe, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if claims.UserID != recipe.AuthorID {
		return nil, common.NewForbiddenError("Only the author can submit a recipe for review")
	}
	if recipe.Status != model.StatusDraft && recipe.Status != model.StatusRejected {
		return nil, common.NewValidationError("Recipe cannot be submitted from its current status")
	}

	// Leaving rejected clears the review note.
	if err := s.repo.TransitionStatus(id, recipe.Status, model.StatusPendingReview, "", nil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewValidationError("Recipe cannot be submitted from its current status")
		}
		return nil, common.NewInternalError("Error submitting recipe", err)
	}

	return s.load(id)
}

// Review records an editor's decision on a pending recipe. Publishing sets
// published_at and clears the review note; rejecting stores the note and
// clears published_at. The conditional update requires the row to still be
// pending_review, so the second of two racing decisions always fails.
func (s *RecipeService) Review(ctx context.Context, claims *model.AppClaims, id int, req *model.ReviewRequest) (*model.Recipe, error) {
	if !isReviewer(claims.Role) {
		return nil, common.NewForbiddenError("Only editors can review recipes")
	}
	if req.Status != model.StatusPublished && req.Status != model.StatusRejected {
		return nil, common.NewValidationError("Review decision must be published or rejected")
	}

	recipe, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if recipe.Status != model.StatusPendingReview {
		return nil, common.NewValidationError("Recipe is not pending review")
	}

	var note string
	var publishedAt *time.Time
	if req.Status == model.StatusPublished {
		now := time.Now()
		publishedAt = &now
	} else {
		note = req.ReviewNote
	}

	if err := s.repo.TransitionStatus(id, model.StatusPendingReview, req.Status, note, publishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewValidationError("Recipe is not pending review")
		}
		return nil, common.NewInternalError("Error reviewing recipe", err)
	}

	s.invalidatePublishedCache(ctx)
	return s.load(id)
}

// Update edits recipe fields. Editing a rejected recipe moves it back to
// draft and clears the review note; any other status is left unchanged.
func (s *RecipeService) Update(ctx context.Context, claims *model.AppClaims, id int, input *model.RecipeInput) (*model.Recipe, error) {
	recipe, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !canEdit(claims, recipe) {
		return nil, common.NewForbiddenError("You cannot edit this recipe")
	}

	if err := s.repo.UpdateFields(id, input); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewNotFoundError("Recipe not found")
		}
		return nil, common.NewInternalError("Error updating recipe", err)
	}

	if recipe.Status == model.StatusRejected {
		err := s.repo.TransitionStatus(id, model.StatusRejected, model.StatusDraft, "", nil)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewInternalError("Error updating recipe status", err)
		}
	}

	s.invalidatePublishedCache(ctx)
	return s.load(id)
}

// Delete removes a recipe and its child rows.
func (s *RecipeService) Delete(ctx context.Context, claims *model.AppClaims, id int) error {
	recipe, err := s.load(id)
	if err != nil {
		return err
	}
	if !canEdit(claims, recipe) {
		return common.NewForbiddenError("You cannot delete this recipe")
	}

	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.NewNotFoundError("Recipe not found")
		}
		return common.NewInternalError("Error deleting recipe", err)
	}

	s.invalidatePublishedCache(ctx)
	return nil
}

// file: handler/recipe_handler.go

package handler

import (
	"encoding/json"
	"net/http"
	"nutritrack-api/common"
	"nutritrack-api/model"
	"nutritrack-api/service"
	"strconv"
)

type RecipeHandler struct {
	recipeService service.IRecipeService
}

func NewRecipeHandler(recipeService service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

func (h *RecipeHandler) claimsAndID(r *http.Request) (*model.AppClaims, int, *common.AppError) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return nil, 0, common.NewAuthError("Missing authentication context", nil)
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return nil, 0, common.NewValidationError("Invalid recipe id")
	}
	return claims, id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// Create godoc
// @Summary  Create a recipe in draft
// @Tags     recipes
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    request body model.RecipeInput true "recipe payload"
// @Success  201 {object} model.Recipe
// @Router   /recipes [post]
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return common.NewAuthError("Missing authentication context", nil)
	}

	var input model.RecipeInput
	if appErr := common.ValidateAndDecode(r, &input); appErr != nil {
		return appErr
	}

	recipe, err := h.recipeService.Create(r.Context(), claims, &input)
	if err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusCreated, recipe)
	return nil
}

// List godoc
// @Summary  List published recipes
// @Tags     recipes
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} model.Recipe
// @Router   /recipes [get]
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	recipes, err := h.recipeService.ListPublished(r.Context())
	if err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusOK, recipes)
	return nil
}

// Get godoc
// @Summary  Fetch one recipe
// @Tags     recipes
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "recipe id"
// @Success  200 {object} model.Recipe
// @Failure  404 {object} common.AppError
// @Router   /recipes/{id} [get]
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, id, appErr := h.claimsAndID(r)
	if appErr != nil {
		return appErr
	}

	recipe, err := h.recipeService.Get(r.Context(), claims, id)
	if err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusOK, recipe)
	return nil
}

// Submit godoc
// @Summary  Submit a recipe for review
// @Tags     recipes
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "recipe id"
// @Success  200 {object} model.Recipe
// @Failure  400 {object} common.AppError
// @Router   /recipes/{id}/submit [post]
func (h *RecipeHandler) Submit(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, id, appErr := h.claimsAndID(r)
	if appErr != nil {
		return appErr
	}

	recipe, err := h.recipeService.Submit(r.Context(), claims, id)
	if err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusOK, recipe)
	return nil
}

// Review godoc
// @Summary  Publish or reject a submitted recipe
// @Tags     recipes
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "recipe id"
// @Param    request body model.ReviewRequest true "review decision"
// @Success  200 {object} model.Recipe
// @Failure  400 {object} common.AppError
// @Router   /recipes/{id}/review [post]
func (h *RecipeHandler) Review(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, id, appErr := h.claimsAndID(r)
	if appErr != nil {
		return appErr
	}

	var req model.ReviewRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	recipe, err := h.recipeService.Review(r.Context(), claims, id, &req)
	if err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusOK, recipe)
	return nil
}

// Update godoc
// @Summary  Edit a recipe
// @Tags     recipes
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "recipe id"
// @Param    request body model.RecipeInput true "recipe payload"
// @Success  200 {object} model.Recipe
// @Router   /recipes/{id} [put]
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, id, appErr := h.claimsAndID(r)
	if appErr != nil {
		return appErr
	}

	var input model.RecipeInput
	if appErr := common.ValidateAndDecode(r, &input); appErr != nil {
		return appErr
	}

	recipe, err := h.recipeService.Update(r.Context(), claims, id, &input)
	if err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusOK, recipe)
	return nil
}

// Delete godoc
// @Summary  Delete a recipe
// @Tags     recipes
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "recipe id"
// @Success  200 {object} map[string]string
// @Router   /recipes/{id} [delete]
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, id, appErr := h.claimsAndID(r)
	if appErr != nil {
		return appErr
	}

	if err := h.recipeService.Delete(r.Context(), claims, id); err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	return nil
}

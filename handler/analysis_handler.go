package handler

import (
	"net/http"
	"nutritrack-api/common"
	"nutritrack-api/model"
	"nutritrack-api/service"
)

type AnalysisHandler struct {
	analysisService service.IAnalysisService
}

func NewAnalysisHandler(analysisService service.IAnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// AnalyzeMeal godoc
// @Summary  Analyze a meal description
// @Tags     analysis
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    request body model.AnalyzeMealRequest true "meal description"
// @Success  200 {object} model.MealAnalysis
// @Failure  429 {object} common.AppError
// @Router   /analysis/meal [post]
func (h *AnalysisHandler) AnalyzeMeal(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return common.NewAuthError("Missing authentication context", nil)
	}

	var req model.AnalyzeMealRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	analysis, err := h.analysisService.AnalyzeMeal(r.Context(), claims, &req)
	if err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusOK, analysis)
	return nil
}

// GeneratePlan godoc
// @Summary  Generate a weekly meal plan
// @Tags     analysis
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    request body model.GeneratePlanRequest true "plan preferences"
// @Success  200 {object} model.MealPlan
// @Failure  429 {object} common.AppError
// @Router   /plans/generate [post]
func (h *AnalysisHandler) GeneratePlan(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return common.NewAuthError("Missing authentication context", nil)
	}

	var req model.GeneratePlanRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	plan, err := h.analysisService.GeneratePlan(r.Context(), claims, &req)
	if err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusOK, plan)
	return nil
}

// ImportRecipe godoc
// @Summary  Import a recipe from an external URL
// @Tags     analysis
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    request body model.ImportRecipeRequest true "import source"
// @Success  201 {object} model.Recipe
// @Failure  429 {object} common.AppError
// @Router   /recipes/import [post]
func (h *AnalysisHandler) ImportRecipe(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return common.NewAuthError("Missing authentication context", nil)
	}

	var req model.ImportRecipeRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	recipe, err := h.analysisService.ImportRecipe(r.Context(), claims, &req)
	if err != nil {
		return common.AsAppError(err)
	}

	writeJSON(w, http.StatusCreated, recipe)
	return nil
}

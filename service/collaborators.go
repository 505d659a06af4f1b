package service

import (
	"context"
	"nutritrack-api/model"
)

// Stub collaborators stand in for the external AI and import integrations in
// local development and tests. The real integrations are separate deployables
// that satisfy the Analyzer, Planner and Importer interfaces.

type StubAnalyzer struct{}

func NewStubAnalyzer() *StubAnalyzer { return &StubAnalyzer{} }

func (a *StubAnalyzer) AnalyzeMeal(ctx context.Context, description string) (*model.MealAnalysis, error) {
	return &model.MealAnalysis{Summary: "analysis unavailable in stub mode"}, nil
}

type StubPlanner struct{}

func NewStubPlanner() *StubPlanner { return &StubPlanner{} }

func (p *StubPlanner) GeneratePlan(ctx context.Context, userID int, preferences string) (*model.MealPlan, error) {
	return &model.MealPlan{UserID: userID}, nil
}

type StubImporter struct{}

func NewStubImporter() *StubImporter { return &StubImporter{} }

func (i *StubImporter) ImportRecipe(ctx context.Context, url string) (*model.RecipeInput, error) {
	return &model.RecipeInput{Title: "Imported recipe", Description: url}, nil
}

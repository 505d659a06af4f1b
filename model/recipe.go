package model

import "time"

// RecipeStatus is the publication state of a recipe. Status is written only
// by the recipe service's transition methods; no other code path may touch it.
type RecipeStatus string

const (
	StatusDraft         RecipeStatus = "draft"
	StatusPendingReview RecipeStatus = "pending_review"
	StatusPublished     RecipeStatus = "published"
	StatusRejected      RecipeStatus = "rejected"
)

func (s RecipeStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusPublished, StatusRejected:
		return true
	}
	return false
}

type Recipe struct {
	ID          int          `json:"id"`
	AuthorID    int          `json:"author_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      RecipeStatus `json:"status"`
	// ReviewNote is only meaningful while Status is rejected; any transition
	// away from rejected clears it.
	ReviewNote  string     `json:"review_note,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MealAnalysis is the result returned by the external meal analyzer.
type MealAnalysis struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Summary  string  `json:"summary"`
}

// MealPlan is the result returned by the external plan generator.
type MealPlan struct {
	UserID int      `json:"user_id"`
	Days   []string `json:"days"`
}

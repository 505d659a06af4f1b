// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// RefreshRequest carries the refresh token being redeemed.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest carries the refresh token being revoked.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UpdateUserRoleRequest defines the payload for updating a user's role.
type UpdateUserRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin editor user"`
}

// RecipeInput defines the payload for creating or updating a recipe.
type RecipeInput struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// ReviewRequest is the editor's publication decision for a submitted recipe.
// ReviewNote is required when the decision is rejected.
type ReviewRequest struct {
	Status     RecipeStatus `json:"status" validate:"required,oneof=published rejected"`
	ReviewNote string       `json:"reviewNote,omitempty" validate:"max=2000"`
}

// AnalyzeMealRequest describes a meal in free text for the analyzer.
type AnalyzeMealRequest struct {
	Description string `json:"description" validate:"required,min=3,max=2000"`
}

// GeneratePlanRequest carries preferences for weekly plan generation.
type GeneratePlanRequest struct {
	Preferences string `json:"preferences" validate:"max=2000"`
}

// ImportRecipeRequest points the importer at an external recipe page.
type ImportRecipeRequest struct {
	URL string `json:"url" validate:"required,url"`
}

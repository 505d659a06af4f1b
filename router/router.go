package router

import (
	"net/http"
	"nutritrack-api/handler"
	"nutritrack-api/model"
	"nutritrack-api/service"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// NewRouter wires every endpoint with its guard. Role sets are declared per
// operation here; handlers behind a guard trust the claims in the request
// context.
func NewRouter(
	tokens service.ITokenService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	recipeHandler *handler.RecipeHandler,
	analysisHandler *handler.AnalysisHandler,
) http.Handler {
	mux := http.NewServeMux()

	authenticated := handler.RequireAuth(tokens)
	editorsOnly := handler.RequireAuth(tokens, model.RoleEditor, model.RoleAdmin)
	adminsOnly := handler.RequireAuth(tokens, model.RoleAdmin)

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.Handler())

	mux.Handle("POST /auth/register", handler.ErrorHandlingMiddleware(authHandler.Register))
	mux.Handle("POST /auth/login", handler.ErrorHandlingMiddleware(authHandler.Login))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(authHandler.Refresh))
	mux.Handle("POST /auth/logout", handler.ErrorHandlingMiddleware(authHandler.Logout))

	mux.Handle("GET /users/me", authenticated(handler.ErrorHandlingMiddleware(userHandler.Me)))
	mux.Handle("GET /users", adminsOnly(handler.ErrorHandlingMiddleware(userHandler.List)))
	mux.Handle("PUT /users/{id}/role", adminsOnly(handler.ErrorHandlingMiddleware(userHandler.UpdateRole)))

	mux.Handle("POST /recipes", editorsOnly(handler.ErrorHandlingMiddleware(recipeHandler.Create)))
	mux.Handle("GET /recipes", authenticated(handler.ErrorHandlingMiddleware(recipeHandler.List)))
	mux.Handle("GET /recipes/{id}", authenticated(handler.ErrorHandlingMiddleware(recipeHandler.Get)))
	mux.Handle("POST /recipes/{id}/submit", authenticated(handler.ErrorHandlingMiddleware(recipeHandler.Submit)))
	mux.Handle("POST /recipes/{id}/review", editorsOnly(handler.ErrorHandlingMiddleware(recipeHandler.Review)))
	mux.Handle("PUT /recipes/{id}", authenticated(handler.ErrorHandlingMiddleware(recipeHandler.Update)))
	mux.Handle("DELETE /recipes/{id}", authenticated(handler.ErrorHandlingMiddleware(recipeHandler.Delete)))

	mux.Handle("POST /recipes/import", editorsOnly(handler.ErrorHandlingMiddleware(analysisHandler.ImportRecipe)))
	mux.Handle("POST /analysis/meal", authenticated(handler.ErrorHandlingMiddleware(analysisHandler.AnalyzeMeal)))
	mux.Handle("POST /plans/generate", authenticated(handler.ErrorHandlingMiddleware(analysisHandler.GeneratePlan)))

	return mux
}

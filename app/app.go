// File: app/app.go
package app

import (
	"context"
	"net/http"
	"nutritrack-api/config"
	"nutritrack-api/db"
	"nutritrack-api/handler"
	"nutritrack-api/logger"
	"nutritrack-api/repository"
	"nutritrack-api/router"
	"nutritrack-api/service"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// sweepInterval is how often the background maintenance pass reclaims
// expired refresh tokens and old rate limit attempts.
const sweepInterval = time.Hour

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations("file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		// The recipe cache is an optimization; the API works without it.
		logger.Log.WithError(err).Warn("Redis unavailable, continuing without recipe cache")
		redisClient = nil
	}

	// --- Wiring All Layers Together ---

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	recipeRepo := repository.NewRecipeRepository(database)
	rateLimitRepo := repository.NewRateLimitRepository(database)

	tokenService := service.NewTokenService()
	rateLimitService := service.NewRateLimitService(rateLimitRepo)
	authService := service.NewAuthService(userRepo, tokenRepo, tokenService, rateLimitService)
	userService := service.NewUserService(userRepo)

	var cache service.ICacheClient
	if redisClient != nil {
		cache = redisClient
	}
	recipeService := service.NewRecipeService(recipeRepo, cache)
	analysisService := service.NewAnalysisService(
		rateLimitService,
		service.NewStubAnalyzer(),
		service.NewStubPlanner(),
		service.NewStubImporter(),
		recipeService,
	)

	authHandler := handler.NewAuthHandler(authService, tokenService)
	userHandler := handler.NewUserHandler(userService)
	recipeHandler := handler.NewRecipeHandler(recipeService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)

	r := router.NewRouter(tokenService, authHandler, userHandler, recipeHandler, analysisHandler)

	// --- Background Maintenance ---

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go runSweeper(sweepCtx, tokenRepo, rateLimitService)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}

// runSweeper periodically deletes expired refresh tokens and stale rate
// limit attempts. Neither sweep is on the request path.
func runSweeper(ctx context.Context, tokenRepo repository.ITokenRepository, limiter service.IRateLimitService) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := tokenRepo.SweepExpired(time.Now()); err == nil && n > 0 {
				logger.Log.WithField("count", n).Info("Swept expired refresh tokens")
			}
			if n, err := limiter.SweepExpired(ctx); err == nil && n > 0 {
				logger.Log.WithField("count", n).Info("Swept old rate limit attempts")
			}
		}
	}
}

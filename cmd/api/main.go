package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platemate/backend/config"
	"github.com/platemate/backend/internal/api"
	"github.com/platemate/backend/internal/database"
	"github.com/platemate/backend/internal/middleware"
	"github.com/platemate/backend/internal/router"
	"github.com/platemate/backend/internal/server"
	"github.com/platemate/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}

	// Services
	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	userService := service.NewUserService(db)
	tagService := service.NewTagService(db)
	ingredientService := service.NewIngredientService(db)
	relationService := service.NewRelationService(db)
	recipeService := service.NewRecipeService(db, service.NewS3ImageStore(s3Config))
	shoppingService := service.NewShoppingListService(db)

	rateLimiter := middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
		Window:    time.Minute,
		Limit:     30,
		KeyPrefix: "ratelimit:recipes",
	})

	// Handlers
	healthHandler := api.NewHealthHandler(db, redisClient)
	authHandler := api.NewAuthHandler(authService)
	userHandler := api.NewUserHandler(userService, relationService, recipeService, authService)
	tagHandler := api.NewTagHandler(tagService)
	ingredientHandler := api.NewIngredientHandler(ingredientService, authService)
	recipeHandler := api.NewRecipeHandler(recipeService, relationService, shoppingService, authService, rateLimiter)

	engine := router.SetupRouter(healthHandler, authHandler, userHandler, tagHandler, ingredientHandler, recipeHandler)
	srv := server.New(engine)

	errChan := make(chan error, 1)
	go func() {
		log.Println("Starting server...")
		errChan <- srv.Start(cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

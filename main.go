package main

import (
	"log"

	"gopolls/config"
	"gopolls/handlers"
	"gopolls/middleware"
	"gopolls/models"
	"gopolls/routes"
	"gopolls/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Poll{},
		&models.Choice{},
		&models.Vote{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret, redisClient)
	pollService := services.NewPollService(db)
	voteService := services.NewVoteService(db)

	// Initialize WebSocket hub for live results
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	pollHandler := handlers.NewPollHandler(pollService, voteService)
	voteHandler := handlers.NewVoteHandler(voteService, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, pollHandler, voteHandler, hub, voteService, cfg.JWTSecret, redisClient)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

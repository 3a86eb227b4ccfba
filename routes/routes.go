package routes

import (
	"log"
	"net/http"
	"strconv"

	"gopolls/handlers"
	"gopolls/middleware"
	"gopolls/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	pollHandler *handlers.PollHandler,
	voteHandler *handlers.VoteHandler,
	hub *services.Hub,
	voteService *services.VoteService,
	jwtSecret string,
	redisClient *redis.Client,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public results endpoint for live result pages
		api.GET("/polls/:id/results", voteHandler.GetResults)

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret, redisClient))
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.GET("/auth/history", authHandler.GetVotingHistory)

			// Kept off /polls/:id's tree; gin does not allow a static
			// segment next to a wildcard sibling
			protected.GET("/my-polls", pollHandler.MyPolls)

			// Poll routes
			polls := protected.Group("/polls")
			{
				polls.GET("", pollHandler.ListPolls)
				polls.POST("", pollHandler.CreatePoll)
				polls.GET("/:id", pollHandler.GetPoll)
				polls.PUT("/:id", pollHandler.UpdatePoll)
				polls.DELETE("/:id", pollHandler.DeletePoll)
				polls.POST("/:id/vote", voteHandler.CastVote)
			}
		}
	}

	// WebSocket endpoint streaming live results for one poll
	router.GET("/ws/polls/:id/results", func(c *gin.Context) {
		pollID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid poll ID"})
			return
		}

		// Resolve results before upgrading so unknown polls get a plain 404
		results, err := voteService.Results(uint(pollID))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Poll not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for poll %d: %v", pollID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
			return
		}

		hub.RegisterClient(conn, uint(pollID), results)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

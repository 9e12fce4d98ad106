package routes

import (
	"github.com/davmoreno/djlink/internal/container"
	"github.com/davmoreno/djlink/internal/handlers"
	"github.com/davmoreno/djlink/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	// Set Gin mode for production
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "djlink-api",
			})
		})

		// public routes
		v1.POST("/signup", handlers.CreateUser(container.UserService))
		v1.POST("/login", handlers.AuthenticateUser(container.UserService))
		v1.POST("/logout", handlers.Logout())
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.SupabaseClient, container.UserService, container.ProfileService, container.Logger))

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
	}

	protected.GET("/role", handlers.GetRoleHandler(container.ProfileService))

	djRoutes := protected.Group("/djs")
	{
		djRoutes.GET("/:id", handlers.GetDJProfileHandler(container.ProfileService))
		djRoutes.POST("/avatar", handlers.UploadDJAvatarHandler(container.ProfileService))
	}

	proposalRoutes := protected.Group("/proposals")
	{
		proposalRoutes.POST("/", handlers.CreateProposalHandler(container.ProposalService))
		proposalRoutes.GET("/", handlers.ListProposalsHandler(container.ProposalService))
		proposalRoutes.GET("/:id", handlers.GetProposalHandler(container.ProposalService))
		proposalRoutes.POST("/:id/respond", handlers.RespondProposalHandler(container.ProposalService))
		proposalRoutes.POST("/:id/counter", handlers.CounterProposalHandler(container.ProposalService))
		proposalRoutes.GET("/:id/history", handlers.GetProposalHistoryHandler(container.ProposalService))
	}

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.GET("/", handlers.ListEventsHandler(container.EventService))
		eventRoutes.GET("/by-proposal/:proposal_id", handlers.GetEventByProposalHandler(container.EventService))
	}

	conversationRoutes := protected.Group("/conversations")
	{
		conversationRoutes.POST("/messages", handlers.SendMessageHandler(container.MessageService))
		conversationRoutes.GET("/:peer_id", handlers.GetConversationHandler(container.MessageService))
		conversationRoutes.PATCH("/:peer_id/read", handlers.MarkConversationReadHandler(container.MessageService))
	}

	protected.GET("/stream", handlers.StreamChangesHandler(container.Subscriber))

	return r
}

package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"campusride/internal/handler"
	"campusride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	SessionHandler *handler.SessionHandler
	ChatHandler    *handler.ChatHandler
	PaymentHandler *handler.PaymentHandler
	DriverHandler  *handler.DriverHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.Use(middleware.IdentityMiddleware())
	v1.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	{
		// Ride session routes.
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", deps.SessionHandler.RequestRide)
			sessions.GET("", deps.SessionHandler.GetAll)
			sessions.GET("/:bookingId", deps.SessionHandler.GetSession)
			sessions.POST("/:bookingId/accept", deps.SessionHandler.Accept)
			sessions.POST("/:bookingId/start", deps.SessionHandler.Start)
			sessions.POST("/:bookingId/complete", deps.SessionHandler.Complete)
			sessions.POST("/:bookingId/cancel", deps.SessionHandler.Cancel)
		}

		// Chat room routes.
		rooms := v1.Group("/rooms")
		{
			rooms.GET("", deps.ChatHandler.GetRooms)
			rooms.GET("/:bookingId", deps.ChatHandler.GetRoom)
			rooms.GET("/:bookingId/messages", deps.ChatHandler.GetMessages)
			rooms.POST("/:bookingId/messages", deps.ChatHandler.SendMessage)
			rooms.POST("/:bookingId/heartbeat", deps.ChatHandler.Heartbeat)
		}

		// Message status routes.
		messages := v1.Group("/messages")
		{
			messages.POST("/:id/delivered", deps.ChatHandler.MarkDelivered)
			messages.POST("/:id/read", deps.ChatHandler.MarkRead)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.GET("/:bookingId", deps.PaymentHandler.GetPayment)
			payments.POST("/:bookingId/upi", deps.PaymentHandler.ConfirmUpi)
			payments.POST("/:bookingId/cash", deps.PaymentHandler.ConfirmCash)
		}

		// Driver profile routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.CreateDriver)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.GetDriver)
		}
	}

	return router
}

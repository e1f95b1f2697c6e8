package router

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-auth-service/api"
	"user-auth-service/internal/adapter/gin/handler"
	"user-auth-service/internal/adapter/gin/middleware"
	"user-auth-service/pkg/logger"
)

const swaggerDocPath = "/docs/user.swagger.json"

// HealthChecker reports whether the backing store answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router wires together.
type Deps struct {
	Users        *handler.UserHandler
	Auth         *handler.AuthHandler
	Tokens       middleware.TokenParser
	Health       HealthChecker
	AllowOrigins []string
	Log          *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(logger.RequestID())
	router.Use(ginzap.Ginzap(d.Log, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(d.Log, true))
	router.Use(cors.New(corsConfig(d.AllowOrigins)))
	router.Use(middleware.Metrics())

	router.GET("/health", healthCheck(d.Health))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET(swaggerDocPath, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", api.SwaggerJSON)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerDocPath))))

	// Public auth routes
	router.POST("/register", d.Auth.Register)
	router.POST("/login", d.Auth.Login)

	// Protected admin routes
	admin := router.Group("/admin", middleware.Auth(d.Tokens, d.Log))
	{
		users := admin.Group("/users")
		{
			users.GET("", d.Users.ListUsers)
			users.POST("", d.Users.CreateUser)
			users.GET("/:id", d.Users.GetUser)
			users.PUT("/:id", d.Users.UpdateUser)
			users.DELETE("/:id", d.Users.DeleteUser)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", logger.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", logger.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func healthCheck(h HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "user-auth-service",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "user-auth-service",
		})
	}
}

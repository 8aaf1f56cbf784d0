package router

import (
	"time"

	"github.com/doeagora/doe-agora-backend/internal/handlers"
	"github.com/doeagora/doe-agora-backend/internal/middleware"
	"github.com/doeagora/doe-agora-backend/internal/services/auth"
	"github.com/doeagora/doe-agora-backend/internal/services/events"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin router with all API routes.
func SetupRouter(db *gorm.DB, publisher events.Publisher) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Use middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Create services
	authService := auth.NewAuthService(db)

	// Create middleware with services
	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(authService, db)

	// Create handlers with services
	authHandler := handlers.NewAuthHandler(authService)
	donationHandler := handlers.NewDonationHandler(db, publisher)
	campaignHandler := handlers.NewCampaignHandler(db)
	adminHandler := handlers.NewAdminHandler(db, publisher)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	api := r.Group("/api/v1")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/refresh", authHandler.RefreshToken)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			// Auth protected routes
			authProtected := protected.Group("/auth")
			{
				authProtected.POST("/logout", authHandler.Logout)
				authProtected.GET("/profile", authHandler.GetProfile)
			}

			// Donation routes
			donations := protected.Group("/donations")
			{
				donations.POST("", donationHandler.CreateDonation)
				donations.GET("", donationHandler.GetDonations)
				donations.GET("/campaign/:campaignId", donationHandler.GetDonationsByCampaign)
				donations.GET("/user/:userID", donationHandler.GetDonationsByUser)
				donations.DELETE("/:donation_id", donationHandler.CancelDonation)
			}

			// Campaign routes
			campaigns := protected.Group("/campaigns")
			{
				campaigns.GET("", campaignHandler.GetCampaigns)
				campaigns.GET("/:id", campaignHandler.GetCampaignByID)
			}

			// Admin routes (requires admin privileges)
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/campaigns", campaignHandler.CreateCampaign)
				admin.PUT("/donations/:donation_id", adminHandler.ConfirmDonation)
				admin.GET("/donations/export", adminHandler.ExportDonations)
				admin.PUT("/donees/:userID/switch-status", adminHandler.SwitchDoneeStatus)
				admin.GET("/donees", adminHandler.GetDonees)
			}
		}
	}

	return r
}

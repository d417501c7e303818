package routes

import (
	"citizen-portal-api/controllers"
	"citizen-portal-api/middleware"
	"citizen-portal-api/models"
	"citizen-portal-api/services"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func SetupRoutes(router *gin.Engine, sessions *services.SessionService, notifier *services.Notifier) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes, rate limited against reference enumeration
		// and credential guessing
		public := v1.Group("")
		public.Use(middleware.RateLimitMiddleware(rate.Limit(5), 10))
		{
			// Citizen submissions and status lookup
			public.POST("/applications", controllers.SubmitApplication(notifier))
			public.GET("/applications/reference/:reference", controllers.GetApplicationByReference)
			public.GET("/status/:reference", controllers.CheckStatus)

			// Staff authentication
			public.POST("/auth/login", controllers.Login(sessions))

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Citizen Portal API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(sessions))
		{
			// Auth management
			protected.POST("/auth/logout", controllers.Logout(sessions))
			protected.GET("/auth/me", controllers.GetProfile)
			protected.PUT("/auth/change-password", controllers.ChangePassword)

			// Application management
			applications := protected.Group("/applications")
			{
				applications.GET("", controllers.GetApplications)
				applications.GET("/:id", controllers.GetApplication)
				applications.PUT("/:id/status", controllers.UpdateApplicationStatus(notifier))
				applications.POST("/:id/comments", controllers.AddComment)
				applications.GET("/:id/documents", controllers.GetApplicationDocuments)
			}

			// Documents
			protected.GET("/documents/:document_id/download", controllers.DownloadDocument)

			// Staff administration
			protected.GET("/staff", middleware.RequireRole(models.RoleAdmin), controllers.GetStaffMembers)

			// Dashboard
			protected.GET("/dashboard/stats", controllers.GetDashboardStats)
		}
	}
}

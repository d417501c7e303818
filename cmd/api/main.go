package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"citizen-portal-api/config"
	"citizen-portal-api/middleware"
	"citizen-portal-api/monitor"
	"citizen-portal-api/routes"
	"citizen-portal-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize logging and database
	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}
	config.InitDB()

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	sessionTTL := 24 * time.Hour
	if hours, err := strconv.Atoi(os.Getenv("JWT_EXPIRE_HOURS")); err == nil && hours > 0 {
		sessionTTL = time.Duration(hours) * time.Hour
	}
	sessions := services.NewSessionService(config.DB, []byte(jwtSecret), sessionTTL)

	digestWindow := 5 * time.Minute
	if minutes, err := strconv.Atoi(os.Getenv("DIGEST_WINDOW_MINUTES")); err == nil && minutes > 0 {
		digestWindow = time.Duration(minutes) * time.Minute
	}
	notifier := services.NewNotifier(config.SendMail, os.Getenv("STAFF_DIGEST_EMAIL"), digestWindow)
	defer notifier.Stop()

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.Logger())

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Prometheus metrics
	monitor.RegisterMetricsEndpoint(router)

	// Setup routes
	routes.SetupRoutes(router, sessions, notifier)

	// Create upload directory if not exists
	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	if err := os.MkdirAll(uploadPath, os.ModePerm); err != nil {
		log.Printf("Warning: Failed to create upload directory: %v", err)
	}

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"builderpulse/internal/database"
	"builderpulse/internal/handlers"
	"builderpulse/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load database configuration
	dbConfig := database.LoadConfig()

	// Connect to database
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Initialize and start background workers
	workerService := worker.NewWorkerService(database.DB)
	if err := workerService.Start(); err != nil {
		log.Fatal("Failed to start background workers:", err)
	}

	// Setup graceful shutdown
	setupGracefulShutdown(workerService)

	// Setup HTTP server
	setupServer(workerService)
}

func setupGracefulShutdown(workerService *worker.WorkerService) {
	// Setup signal handling for graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")

		// Stop background workers
		workerService.Stop()

		// Close database connection
		database.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer(workerService *worker.WorkerService) {
	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(database.DB)
	trendsHandler := handlers.NewTrendsHandler(database.DB)
	jobsHandler := handlers.NewJobsHandler(workerService)
	docsHandler := handlers.NewDocsHandler()

	// Health check
	r.GET("/health", jobsHandler.HealthCheck)

	// Serve Markdown documentation as HTML
	r.GET("/doc/:doc", docsHandler.ServeMarkdownAsHTML)

	// API routes
	api := r.Group("/api")
	{
		api.GET("/dashboard", dashboardHandler.GetDashboard)

		trends := api.Group("/trends")
		{
			trends.GET("", trendsHandler.GetTrends)
			trends.GET("/:id", trendsHandler.GetTrend)
		}

		topics := api.Group("/topics")
		{
			topics.GET("/trending", trendsHandler.GetTrendingPhrases)
			topics.GET("/emerging", trendsHandler.GetEmergingPhrases)
		}

		jobs := api.Group("/jobs", jobsHandler.RequireJobAuth())
		{
			jobs.POST("/collect", jobsHandler.TriggerCollection)
			jobs.POST("/score", jobsHandler.TriggerScoring)
			jobs.POST("/cluster", jobsHandler.TriggerClustering)
		}

		workerGroup := api.Group("/worker")
		{
			workerGroup.GET("/status", jobsHandler.WorkerStatus)
		}
	}

	// Get port from environment or default to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"builderpulse/internal/clustering"
	"builderpulse/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	timeoutFlag := flag.Duration("timeout", 10*time.Minute, "overall clustering timeout")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Connect to database
	dbConfig := database.LoadConfig()
	if err := database.Connect(dbConfig); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	log.Println("🔄 Running clustering job...")

	service := clustering.NewServiceFromEnv(database.DB)
	result, err := service.RunClusteringJob(ctx)
	if err != nil {
		log.Fatal("Clustering job failed:", err)
	}

	log.Printf("✅ Clustering completed: %d processed, %d topics created, %d updated",
		result.Processed, result.TopicsCreated, result.TopicsUpdated)
}

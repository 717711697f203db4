package main

import (
	"flag"
	"log"

	"builderpulse/internal/database"
	"builderpulse/internal/scoring"

	"github.com/joho/godotenv"
)

func main() {
	hoursFlag := flag.Int("hours", 48, "how many hours back to score")
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

	log.Println("🔄 Running scoring pass...")

	pass := scoring.NewPassService(database.DB)
	result, err := pass.Run(*hoursFlag)
	if err != nil {
		log.Fatal("Scoring pass failed:", err)
	}

	log.Printf("✅ Scoring completed: %d scored, %d breakouts, %d classified",
		result.Scored, result.Breakouts, result.Classified)
}

package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"builderpulse/internal/collectors"
	"builderpulse/internal/database"
	"builderpulse/internal/models"

	"github.com/joho/godotenv"
)

func main() {
	platformFlag := flag.String("platforms", "", "comma-separated platforms to collect (default: all)")
	timeoutFlag := flag.Duration("timeout", 10*time.Minute, "overall collection timeout")
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

	all := collectors.NewAll(database.DB)
	selected := all
	if *platformFlag != "" {
		wanted := make(map[models.Platform]bool)
		for _, name := range strings.Split(*platformFlag, ",") {
			wanted[models.Platform(strings.TrimSpace(name))] = true
		}
		selected = selected[:0]
		for _, c := range all {
			if wanted[c.Platform()] {
				selected = append(selected, c)
			}
		}
		if len(selected) == 0 {
			log.Fatalf("No collectors match platforms %q", *platformFlag)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	log.Println("🔄 Running collection...")
	results := collectors.RunAll(ctx, selected)

	total := 0
	for _, result := range results {
		if result != nil {
			total += result.Collected
		}
	}
	log.Printf("✅ Collection completed: %d posts", total)
}

package main

import (
	"context"
	"log"
	"osrm-route-service/internal/adapters/repositories"
	"osrm-route-service/internal/config"
	"osrm-route-service/internal/platform/db"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// dbtool prepares the Postgres distance cache schema used by the server
// when cache.driver is "postgres".
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := config.Get("DATABASE_URL", config.Get("OSRM_CACHE_DSN", ""))
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL or OSRM_CACHE_DSN is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")
}

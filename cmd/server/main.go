package main

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"github.com/arnold/streaks-api/internal/config"
	"github.com/arnold/streaks-api/internal/database"
	"github.com/arnold/streaks-api/internal/handlers"
	"github.com/arnold/streaks-api/internal/remote"
	"github.com/arnold/streaks-api/internal/routes"
	"github.com/arnold/streaks-api/internal/store"
	"github.com/arnold/streaks-api/internal/sync"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	local, err := store.Open(cfg.LocalDatabase)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer local.Close()

	remoteDB, err := database.Open(cfg.RemoteDatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to remote database: %v", err)
	}
	remoteStore := remote.New(remoteDB)
	if err := remoteStore.Migrate(); err != nil {
		log.Fatalf("Failed to migrate remote database: %v", err)
	}

	logger := log.New(os.Stderr, "[streaks] ", log.LstdFlags)
	engine := sync.New(local, remoteStore, logger)

	app := fiber.New()
	routes.Setup(app, handlers.New(local, remoteStore, engine, logger))

	log.Printf("Listening on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

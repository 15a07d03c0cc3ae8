package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"remindbot/internal/bot"
	"remindbot/internal/config"
	"remindbot/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting RemindBot application...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		s := <-signals
		log.Printf("Received signal: %v", s)
		cancel()
	}()

	// Initialize storage
	store, err := db.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize bot
	discordBot, err := bot.New(cfg, store)
	if err != nil {
		store.Close()
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Start the bot; Start returns once shutdown has finished
	done := make(chan error, 1)
	go func() {
		done <- discordBot.Start(ctx)
	}()

	if err := <-done; err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Application shutdown complete")
}

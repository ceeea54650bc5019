package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/config"
	"github.com/GriffinCanCode/PhoneOS/internal/infrastructure/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Ignoring .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	storageBackend := flag.String("storage", cfg.Storage.Backend, "Snapshot backend: memory, file, badger, sqlite")
	dataPath := flag.String("data", cfg.Storage.Path, "Data root; each backend keeps its own entry under it")
	catalogPath := flag.String("catalog", cfg.Catalog.Path, "App catalog file (yaml, toml or json)")
	natsURL := flag.String("nats", cfg.Events.URL, "NATS URL for state events")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Storage.Backend = *storageBackend
	cfg.Storage.Path = *dataPath
	cfg.Catalog.Path = *catalogPath
	cfg.Events.URL = *natsURL
	cfg.Logging.Development = *dev
	if *dev {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			log.Printf("Server error: %v", err)
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}
}

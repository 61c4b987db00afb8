package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dcastane/regportal-be/internal/api"
	"github.com/dcastane/regportal-be/internal/config"
	"github.com/dcastane/regportal-be/internal/database"
	"github.com/dcastane/regportal-be/internal/intake"
	"github.com/dcastane/regportal-be/internal/logger"
	"github.com/dcastane/regportal-be/internal/monitoring"
	"github.com/dcastane/regportal-be/internal/services"
	"github.com/dcastane/regportal-be/internal/storage"
	"github.com/dcastane/regportal-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up the attachment store
	var store storage.Store
	switch cfg.StorageBackend {
	case config.BackendS3:
		store, err = storage.NewS3(context.Background(), storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
	default:
		store, err = storage.NewLocal(cfg.UploadRoot)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
	}

	// Set up WebSocket Hub for the admin audit feed
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	auditService := services.NewAuditService(db, hub)
	userService := services.NewUserService(db, intake.New(store), auditService)

	// Background jobs only make sense against local disk
	var sweeper *monitoring.Sweeper
	var watcher *monitoring.DiskWatcher
	if cfg.StorageBackend == config.BackendLocal {
		sweeper, err = monitoring.NewSweeper(db, cfg.UploadRoot, cfg.SweepSchedule)
		if err != nil {
			log.Fatalf("Failed to set up orphan sweeper: %v", err)
		}
		sweeper.Run()

		watcher = monitoring.NewDiskWatcher(cfg.UploadRoot)
		go watcher.Run()
	}

	// Set up router
	router := api.NewRouter(hub, userService, auditService, cfg)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if watcher != nil {
		watcher.Stop()
	}
	if sweeper != nil {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/fileshelf/backend/internal/config"
	"github.com/fileshelf/backend/internal/database"
	"github.com/fileshelf/backend/internal/handlers"
	"github.com/fileshelf/backend/internal/middleware"
	"github.com/fileshelf/backend/internal/queue"
	"github.com/fileshelf/backend/internal/services"
	"github.com/fileshelf/backend/internal/storage"
	"github.com/fileshelf/backend/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("APP_ENV") != "production")
	defer logger.Sync()

	cfg := config.Load()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("mongo connection failed: %v", err)
	}

	cache, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}

	blobs := storage.New(cfg.Storage.Root)

	fileQueue := queue.New(cache.Client(), queue.FileQueue)
	userQueue := queue.New(cache.Client(), queue.UserQueue)

	sessionService := services.NewSessionService(db, cache)
	userService := services.NewUserService(db, userQueue)
	fileService := services.NewFileService(db, blobs, fileQueue)

	appHandler := handlers.NewAppHandler(db, cache)
	authHandler := handlers.NewAuthHandler(sessionService)
	usersHandler := handlers.NewUsersHandler(userService)
	filesHandler := handlers.NewFilesHandler(fileService)

	authMiddleware := middleware.NewAuthMiddleware(sessionService)

	app := fiber.New(fiber.Config{BodyLimit: cfg.Server.BodyLimit})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())

	app.Get("/status", appHandler.Status)
	app.Get("/stats", appHandler.Stats)

	app.Get("/connect", authHandler.Connect)
	app.Get("/disconnect", authHandler.Disconnect)

	app.Post("/users", usersHandler.Register)
	app.Get("/users/me", authMiddleware.RequireAuth, usersHandler.Me)

	app.Get("/files/:id/data", authMiddleware.OptionalAuth, filesHandler.Data)

	fileRoutes := app.Group("/files", authMiddleware.RequireAuth)
	fileRoutes.Post("/", filesHandler.Create)
	fileRoutes.Get("/", filesHandler.Index)
	fileRoutes.Get("/:id", filesHandler.Show)
	fileRoutes.Put("/:id/publish", filesHandler.Publish)
	fileRoutes.Put("/:id/unpublish", filesHandler.Unpublish)

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"address":      listenAddr,
		"storage_root": cfg.Storage.Root,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(cfg.Server.ShutdownTimeout):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Close(closeCtx); err != nil {
		log.Printf("mongo close failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		log.Printf("redis close failed: %v", err)
	}
}

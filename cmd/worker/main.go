package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fileshelf/backend/internal/config"
	"github.com/fileshelf/backend/internal/database"
	"github.com/fileshelf/backend/internal/queue"
	"github.com/fileshelf/backend/internal/storage"
	"github.com/fileshelf/backend/internal/worker"
	"github.com/fileshelf/backend/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("APP_ENV") != "production")
	defer logger.Sync()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	thumbnails := worker.NewThumbnailWorker(db, blobs)
	welcome := worker.NewWelcomeWorker(db, worker.LogNotifier{})

	logger.Info("worker_starting", map[string]interface{}{
		"concurrency":  cfg.Worker.Concurrency,
		"queues":       []string{fileQueue.Name(), userQueue.Name()},
		"storage_root": cfg.Storage.Root,
	})

	var wg sync.WaitGroup
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fileQueue.Consume(ctx, thumbnails.Handle); err != nil {
				logger.Error("consumer_stopped", err, map[string]interface{}{"queue": fileQueue.Name()})
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := userQueue.Consume(ctx, welcome.Handle); err != nil {
			logger.Error("consumer_stopped", err, map[string]interface{}{"queue": userQueue.Name()})
		}
	}()

	<-ctx.Done()
	log.Print("shutting down worker")
	wg.Wait()

	if err := db.Close(context.Background()); err != nil {
		log.Printf("mongo close failed: %v", err)
	}
	if err := cache.Close(); err != nil {
		log.Printf("redis close failed: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/uche-madu/gamma-rag/internal/config"
	"github.com/uche-madu/gamma-rag/internal/logging"
	"github.com/uche-madu/gamma-rag/internal/pipeline"
	"github.com/uche-madu/gamma-rag/internal/providers"
	"github.com/uche-madu/gamma-rag/internal/storage"
	"github.com/uche-madu/gamma-rag/internal/vector"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	dbctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	db, err := storage.NewDB(dbctx, cfg.PostgresURL)
	cancel()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	pm, err := providers.NewManager(cfg)
	if err != nil {
		log.Fatal(err)
	}

	syncer := pipeline.NewSyncer(pipeline.SyncerDeps{
		Articles:     storage.NewArticleRepo(db),
		Writer:       vector.NewStore(db.Pool),
		Embedder:     pm.Embedder(),
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		EmbedDim:     cfg.EmbedDim,
		Logger:       logger.With("component", "sync"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := pipeline.NewScheduler(pipeline.RealClock(), cfg.SyncStartDelay, cfg.SyncInterval, func(ctx context.Context) {
		_ = syncer.Sync(ctx)
	}, logger.With("component", "scheduler"))

	log.Printf("gamma-rag worker started embed_provider=%q start_delay=%s interval=%s", cfg.EmbedProvider, cfg.SyncStartDelay, cfg.SyncInterval)
	sched.Run(ctx)
}

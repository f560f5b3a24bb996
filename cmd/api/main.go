package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/uche-madu/gamma-rag/internal/api"
	"github.com/uche-madu/gamma-rag/internal/chat"
	"github.com/uche-madu/gamma-rag/internal/config"
	"github.com/uche-madu/gamma-rag/internal/logging"
	"github.com/uche-madu/gamma-rag/internal/pipeline"
	"github.com/uche-madu/gamma-rag/internal/providers"
	"github.com/uche-madu/gamma-rag/internal/retrieval"
	"github.com/uche-madu/gamma-rag/internal/storage"
	"github.com/uche-madu/gamma-rag/internal/vector"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	cancel()
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	pm, err := providers.NewManager(cfg)
	if err != nil {
		log.Fatal(err)
	}

	store := vector.NewStore(db.Pool)
	articleRepo := storage.NewArticleRepo(db)
	threadRepo := storage.NewThreadRepo(db)

	retriever := retrieval.NewService(pm.Embedder(), store, cfg.RetrievalTopK, cfg.SimilarityFloor, cfg.EmbedDim, logger.With("component", "retrieval"))
	orchestrator := chat.NewOrchestrator(chat.OrchestratorDeps{
		Retriever:  retriever,
		History:    threadRepo,
		Chat:       pm.ChatCompleter(),
		Summarizer: pm.SummaryCompleter(),
		Config:     cfg,
		Logger:     logger.With("component", "chat"),
	})
	syncer := pipeline.NewSyncer(pipeline.SyncerDeps{
		Articles:     articleRepo,
		Writer:       store,
		Embedder:     pm.Embedder(),
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		EmbedDim:     cfg.EmbedDim,
		Logger:       logger.With("component", "sync"),
	})

	srv := api.NewServer(orchestrator, articleRepo, func() error {
		return syncer.Sync(context.Background())
	}, logger.With("component", "api"))

	log.Printf("gamma-rag api listening on %s chat_provider=%q embed_provider=%q", cfg.APIAddr, cfg.Chat.Provider, cfg.EmbedProvider)
	log.Fatal(http.ListenAndServe(cfg.APIAddr, srv.Routes()))
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/OpsaAI/OpsaAI/ai"
	"github.com/OpsaAI/OpsaAI/api"
	"github.com/OpsaAI/OpsaAI/chat"
	"github.com/OpsaAI/OpsaAI/config"
	"github.com/OpsaAI/OpsaAI/embeddings"
	"github.com/OpsaAI/OpsaAI/index"
	"github.com/OpsaAI/OpsaAI/ingestion"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("load .env: %v", err)
	}

	cfg := config.Load()

	embedder := embeddings.NewHashEmbedder()
	vectorIndex := index.New(embedder)

	aiSvc, err := ai.NewService(cfg, logger)
	if err != nil {
		logger.Fatalf("ai setup: %v", err)
	}

	ingestionSvc := ingestion.NewService(vectorIndex, logger)
	chatSvc := chat.NewService(vectorIndex, embedder, aiSvc, logger)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.New(ingestionSvc, chatSvc, aiSvc, vectorIndex, logger),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Printf("listening on %s (environment %s)", cfg.Addr, cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("shutdown: %v", err)
	}
}

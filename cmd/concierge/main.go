package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/autostream-ai/concierge/internal/anthropic"
	"github.com/autostream-ai/concierge/internal/api"
	"github.com/autostream-ai/concierge/internal/bus"
	"github.com/autostream-ai/concierge/internal/config"
	"github.com/autostream-ai/concierge/internal/convstate"
	"github.com/autostream-ai/concierge/internal/engine"
	"github.com/autostream-ai/concierge/internal/knowledge"
	"github.com/autostream-ai/concierge/internal/llm"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("concierge starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Conversation store: Postgres when configured, in-memory otherwise.
	var store engine.StateStore
	if cfg.DatabaseURL != "" {
		db, err := convstate.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
		store = db
		slog.Info("database connected")
	} else {
		store = convstate.NewMemoryStore()
		slog.Warn("DATABASE_URL not set — conversations held in memory only")
	}

	// Anthropic client
	if cfg.AnthropicAPIKey == "" {
		slog.Error("ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}
	llmClient := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	slog.Info("anthropic client ready", "model", cfg.AnthropicModel)

	// Knowledge index
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required for the knowledge index")
		os.Exit(1)
	}
	embedder := knowledge.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	index, err := knowledge.BuildIndexFromFile(ctx, embedder, cfg.KnowledgePath, slog.Default())
	if err != nil {
		slog.Error("failed to build knowledge index", "path", cfg.KnowledgePath, "error", err)
		os.Exit(1)
	}

	// Lead sink (optional — without NATS, captured leads are only logged)
	var leadSink engine.LeadSink
	if cfg.NatsURL != "" {
		busClient, err := bus.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer busClient.Close()
		leadSink = bus.NewLeadPublisher(busClient, slog.Default())
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set — lead events will not be published")
	}

	// Engine — the dialogue state machine
	judge := llm.NewJudge(llmClient, slog.Default())
	generator := llm.NewGenerator(llmClient, slog.Default())
	eng := engine.New(judge, generator, index, store, leadSink, slog.Default())

	// HTTP API
	srv := api.NewServer(eng, store, cfg.Port, cfg.RequestTimeout)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("concierge ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("concierge stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

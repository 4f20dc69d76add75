package bootstrap

import (
	"context"
	"time"

	"github.com/PushkarKunda/OneBox-AI/adapter/out/vector"
	"github.com/PushkarKunda/OneBox-AI/config"
	"github.com/PushkarKunda/OneBox-AI/core/agent/llm"
	"github.com/PushkarKunda/OneBox-AI/core/agent/rag"
	"github.com/PushkarKunda/OneBox-AI/core/port/out"
	"github.com/PushkarKunda/OneBox-AI/core/service/suggest"
	"github.com/PushkarKunda/OneBox-AI/infra/database"
	"github.com/PushkarKunda/OneBox-AI/pkg/logger"
	"github.com/PushkarKunda/OneBox-AI/pkg/ratelimit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Dependencies holds everything the API surface needs, built once at startup.
type Dependencies struct {
	Config *config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client

	LLMClient    *llm.Client
	Embedder     *rag.Embedder
	Store        *rag.KnowledgeStore
	Orchestrator *suggest.Orchestrator
}

// NewDependencies wires the pipeline. Storage backends are optional: a missing
// or unreachable Postgres leaves the knowledge store disconnected, a missing
// Redis leaves the embedding cache local-only. Both are logged, neither is
// fatal.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var index out.VectorIndex
	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Warn("Postgres unavailable, knowledge store will run disconnected")
	} else {
		deps.DB = db
		cleanups = append(cleanups, func() { db.Close() })

		pgIndex := vector.NewPgVectorIndex(db, cfg.EmbeddingDimension)
		if err := pgIndex.EnsureSchema(ctx); err != nil {
			logger.WithError(err).Warn("schema setup failed, knowledge store will run disconnected")
		} else {
			index = pgIndex
		}
	}

	redisClient, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Debug("Redis unavailable, embedding cache is local-only")
	} else {
		deps.Redis = redisClient
		cleanups = append(cleanups, func() { redisClient.Close() })
	}

	deps.LLMClient = llm.NewClientWithConfig(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})

	limiter := ratelimit.NewAdaptiveLimiter(cfg.EmbedBaseDelay, cfg.EmbedMaxDelay)
	cache := rag.NewEmbeddingCache(&rag.EmbeddingCacheConfig{
		MaxSize: 10000,
		TTL:     24 * time.Hour,
		Redis:   deps.Redis,
	})
	deps.Embedder = rag.NewEmbedder(deps.LLMClient, limiter, &rag.EmbedderConfig{
		Dimension:  cfg.EmbeddingDimension,
		MaxRetries: cfg.EmbedMaxRetries,
		Cache:      cache,
	})

	deps.Store = rag.NewKnowledgeStore(ctx, index, deps.Embedder)
	if err := deps.Store.Seed(ctx); err != nil {
		logger.WithError(err).Warn("knowledge store seeding failed")
	}

	synthesizer := suggest.NewSynthesizer(deps.LLMClient, &suggest.SynthesizerConfig{
		MeetingLink: cfg.MeetingLink,
		ProductName: cfg.ProductName,
	})
	deps.Orchestrator = suggest.NewOrchestrator(deps.LLMClient, deps.Store, synthesizer, cfg.SuggestTimeout)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return deps, cleanup, nil
}

// Package rag provides retrieval-augmented generation building blocks:
// resilient embedding, the vector-backed knowledge store, and seed data.
package rag

import (
	"context"
	"errors"
	"math"
	"net/http"

	"github.com/PushkarKunda/OneBox-AI/core/port/out"
	"github.com/PushkarKunda/OneBox-AI/pkg/logger"
	"github.com/PushkarKunda/OneBox-AI/pkg/ratelimit"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultDimension matches the ada-002 embedding size.
	DefaultDimension = 1536

	// DefaultMaxRetries bounds attempts against the primary provider.
	DefaultMaxRetries = 3
)

// Embedder converts text to fixed-length vectors. The primary path is the
// remote embedding API, throttled by a shared adaptive limiter and retried on
// rate-limit signals. When the primary is exhausted or permanently failing it
// falls back to a deterministic local pseudo-embedding, so Embed never fails.
// Callers must tolerate the degraded similarity quality of fallback vectors.
type Embedder struct {
	client     out.EmbeddingClient
	limiter    *ratelimit.AdaptiveLimiter
	cache      *EmbeddingCache
	dim        int
	maxRetries int
	log        *logger.Logger
}

// EmbedderConfig configures the embedder.
type EmbedderConfig struct {
	Dimension  int
	MaxRetries int
	Cache      *EmbeddingCache
}

// NewEmbedder creates an embedder sharing the given limiter. Pass the same
// limiter instance to every embedder so the throttle stays process-wide.
func NewEmbedder(client out.EmbeddingClient, limiter *ratelimit.AdaptiveLimiter, cfg *EmbedderConfig) *Embedder {
	if cfg == nil {
		cfg = &EmbedderConfig{}
	}
	dim := cfg.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if limiter == nil {
		limiter = ratelimit.NewAdaptiveLimiter(0, 0)
	}
	return &Embedder{
		client:     client,
		limiter:    limiter,
		cache:      cfg.Cache,
		dim:        dim,
		maxRetries: maxRetries,
		log:        logger.WithField("component", "embedder"),
	}
}

// Dimension returns the vector length produced by Embed.
func (e *Embedder) Dimension() int {
	return e.dim
}

// Embed returns an embedding for the text. It never returns an error: after
// bounded retries on rate limits, or immediately on permanent provider
// failures, it returns the deterministic fallback vector instead.
func (e *Embedder) Embed(ctx context.Context, text string) []float32 {
	if e.cache != nil {
		if vec, ok := e.cache.Get(ctx, text); ok {
			return vec
		}
	}

	for attempt := 0; attempt < e.maxRetries; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			e.log.WithError(err).Debug("embedding wait cancelled, using fallback")
			break
		}

		vec, err := e.client.Embedding(ctx, text)
		if err == nil {
			if len(vec) == 0 {
				break
			}
			e.limiter.OnSuccess()
			if e.cache != nil {
				e.cache.Set(ctx, text, vec)
			}
			return vec
		}

		if isQuotaExhausted(err) {
			e.log.WithError(err).Warn("embedding quota exhausted, using fallback")
			break
		}
		if isRateLimited(err) {
			e.limiter.OnRateLimited()
			e.log.WithField("attempt", attempt+1).Debug("embedding rate limited, backing off")
			continue
		}

		e.log.WithError(err).Warn("embedding request failed, using fallback")
		break
	}

	return fallbackEmbedding(text, e.dim)
}

// isRateLimited reports whether the error is a transient rate-limit signal.
func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// isQuotaExhausted reports a permanent quota failure that must not be retried.
func isQuotaExhausted(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok {
			return code == "insufficient_quota"
		}
	}
	return false
}

// fallbackEmbedding derives a deterministic pseudo-embedding from the text.
// Each character perturbs one slot of a zero vector with a trigonometric hash;
// the result is L2-normalized (the zero vector passes through unchanged, which
// only happens for empty or single-character input).
func fallbackEmbedding(text string, dim int) []float32 {
	acc := make([]float64, dim)

	pos := 0
	for _, r := range text {
		code := int(r)
		idx := (code + pos) % dim
		acc[idx] += math.Sin(float64(code)*float64(pos)) * 0.01
		pos++
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, dim)
	if norm == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

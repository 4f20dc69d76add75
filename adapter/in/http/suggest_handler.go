// Package http exposes the reply-suggestion pipeline over fiber routes.
package http

import (
	"context"
	"time"

	"github.com/PushkarKunda/OneBox-AI/core/domain"
	"github.com/PushkarKunda/OneBox-AI/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// ReplySuggester runs the suggestion pipeline. Total for well-formed input.
type ReplySuggester interface {
	SuggestReplies(ctx context.Context, email *domain.EmailContext) []domain.SuggestedReply
}

// StatsProvider reports knowledge store contents and connectivity.
type StatsProvider interface {
	Stats(ctx context.Context) (domain.KnowledgeStats, error)
}

// SuggestHandler serves the suggest-replies and rag-stats endpoints.
type SuggestHandler struct {
	suggester      ReplySuggester
	stats          StatsProvider
	llmModel       string
	embeddingModel string
}

func NewSuggestHandler(suggester ReplySuggester, stats StatsProvider, llmModel, embeddingModel string) *SuggestHandler {
	return &SuggestHandler{
		suggester:      suggester,
		stats:          stats,
		llmModel:       llmModel,
		embeddingModel: embeddingModel,
	}
}

func (h *SuggestHandler) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/suggest-replies", h.SuggestReplies)
	api.Get("/rag-stats", h.RagStats)
}

// SuggestReplies handles POST /api/suggest-replies.
func (h *SuggestHandler) SuggestReplies(c *fiber.Ctx) error {
	var email domain.EmailContext
	if err := c.BodyParser(&email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required email fields: subject, body, from",
		})
	}
	if email.Subject == "" || email.Body == "" || email.From == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required email fields: subject, body, from",
		})
	}

	suggestions, err := h.suggest(c.Context(), &email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to generate reply suggestions",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"email_id":     email.Subject,
		"suggestions":  suggestions,
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

// suggest isolates the pipeline call so a panic escaping the orchestrator's
// own recovery still maps to the endpoint's 500 shape.
func (h *SuggestHandler) suggest(ctx context.Context, email *domain.EmailContext) (suggestions []domain.SuggestedReply, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", r).Error("suggestion handler panicked")
			err = fiber.NewError(fiber.StatusInternalServerError, "suggestion pipeline panic")
		}
	}()

	return h.suggester.SuggestReplies(ctx, email), nil
}

// RagStats handles GET /api/rag-stats.
func (h *SuggestHandler) RagStats(c *fiber.Ctx) error {
	stats, err := h.stats.Stats(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to fetch RAG stats",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"ragService":     "active",
		"knowledgeCount": stats.KnowledgeCount,
		"templateCount":  stats.TemplateCount,
		"status":         stats.Status,
		"llmModel":       h.llmModel,
		"embeddingModel": h.embeddingModel,
	})
}

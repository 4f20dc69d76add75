package suggest

import (
	"context"
	"time"

	"github.com/PushkarKunda/OneBox-AI/core/domain"
	"github.com/PushkarKunda/OneBox-AI/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds one full pipeline invocation.
const DefaultTimeout = 20 * time.Second

const (
	knowledgeLimit = 3
	templateLimit  = 2
)

// IntentClassifier summarizes an email's intent in one sentence. It must be
// total: implementations return a generic default rather than failing.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, email *domain.EmailContext) string
}

// KnowledgeSearcher retrieves similar knowledge and templates. Both searches
// are total and degrade to fallback data on backend failure.
type KnowledgeSearcher interface {
	SearchKnowledge(ctx context.Context, query string, limit int) []domain.RetrievalResult
	SearchTemplates(ctx context.Context, query string, limit int) []domain.RetrievalResult
}

// Orchestrator runs the full suggestion pipeline. SuggestReplies is total:
// timeouts, synthesis errors, and panics all collapse into a single generic
// fallback reply instead of an error.
type Orchestrator struct {
	classifier  IntentClassifier
	store       KnowledgeSearcher
	synthesizer *Synthesizer
	timeout     time.Duration
	log         *logger.Logger
}

// NewOrchestrator wires the pipeline stages. A non-positive timeout selects
// the default.
func NewOrchestrator(classifier IntentClassifier, store KnowledgeSearcher, synthesizer *Synthesizer, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{
		classifier:  classifier,
		store:       store,
		synthesizer: synthesizer,
		timeout:     timeout,
		log:         logger.WithField("component", "suggest_orchestrator"),
	}
}

// SuggestReplies returns 1-3 candidate replies for the email, always at least
// one.
func (o *Orchestrator) SuggestReplies(ctx context.Context, email *domain.EmailContext) []domain.SuggestedReply {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	replies := o.run(ctx, email)
	if len(replies) == 0 {
		replies = []domain.SuggestedReply{fallbackReply()}
	}
	return replies
}

// run executes the pipeline and converts every failure mode to an empty slice.
func (o *Orchestrator) run(ctx context.Context, email *domain.EmailContext) (replies []domain.SuggestedReply) {
	defer func() {
		if r := recover(); r != nil {
			o.log.WithField("panic", r).Error("suggestion pipeline panicked")
			replies = nil
		}
	}()

	start := time.Now()
	intent := o.classifier.ClassifyIntent(ctx, email)

	// The classified intent joins the retrieval query so knowledge and
	// templates are ranked against what the sender wants, not just their words.
	query := email.Subject + " " + email.Body + " " + intent

	var knowledge, templates []domain.RetrievalResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		knowledge = o.store.SearchKnowledge(gctx, query, knowledgeLimit)
		return nil
	})
	g.Go(func() error {
		templates = o.store.SearchTemplates(gctx, query, templateLimit)
		return nil
	})
	// Both searches are total and return nil, so there is no error to collect.
	_ = g.Wait()

	result, err := o.synthesizer.Synthesize(ctx, email, intent, knowledge, templates)
	if err != nil {
		o.log.WithError(err).Warn("synthesis failed, serving fallback reply")
		return nil
	}

	o.log.WithFields(map[string]any{
		"suggestions": len(result),
		"intent":      intent,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("generated reply suggestions")
	return result
}

// fallbackReply is the last-resort suggestion returned when the pipeline
// cannot produce anything better.
func fallbackReply() domain.SuggestedReply {
	return domain.SuggestedReply{
		ID: "fallback-" + uuid.New().String(),
		Content: "Thank you for your email. I've received your message and will " +
			"get back to you with a detailed response shortly.",
		Confidence: 0.5,
		Context: domain.ReplyContext{
			Reasoning: "Fallback response due to processing error",
		},
		Metadata: domain.ReplyMetadata{
			Category:              "general",
			Tone:                  domain.ToneProfessional,
			ActionRequired:        true,
			EstimatedResponseTime: "24 hours",
		},
	}
}

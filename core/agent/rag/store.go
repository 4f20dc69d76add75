package rag

import (
	"context"
	"fmt"

	"github.com/PushkarKunda/OneBox-AI/core/domain"
	"github.com/PushkarKunda/OneBox-AI/core/port/out"
	"github.com/PushkarKunda/OneBox-AI/pkg/logger"

	"github.com/google/uuid"
)

// KnowledgeStore is the vector-indexed collection of knowledge snippets and
// reply templates. Connectivity is decided once at construction: when the
// index backend is unreachable the store runs disconnected for the process
// lifetime: inserts become id-returning no-ops and searches serve the static
// fallback lists, so callers never have to handle a store error path.
type KnowledgeStore struct {
	index     out.VectorIndex
	embedder  *Embedder
	connected bool
	log       *logger.Logger
}

// NewKnowledgeStore creates the store and probes the index once. A nil index
// or a failed ping puts the store in disconnected mode.
func NewKnowledgeStore(ctx context.Context, index out.VectorIndex, embedder *Embedder) *KnowledgeStore {
	log := logger.WithField("component", "knowledge_store")

	connected := false
	if index != nil {
		if err := index.Ping(ctx); err != nil {
			log.WithError(err).Warn("vector index unreachable, running in disconnected mode")
		} else {
			connected = true
		}
	} else {
		log.Warn("no vector index configured, running in disconnected mode")
	}

	return &KnowledgeStore{
		index:     index,
		embedder:  embedder,
		connected: connected,
		log:       log,
	}
}

// Connected reports whether the index backend was reachable at startup.
func (s *KnowledgeStore) Connected() bool {
	return s.connected
}

// AddKnowledge embeds and stores a knowledge item, returning its id. In
// disconnected mode the item is accepted but not persisted.
func (s *KnowledgeStore) AddKnowledge(ctx context.Context, item *domain.KnowledgeItem) (string, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if !s.connected {
		return item.ID, nil
	}

	embedding := s.embedder.Embed(ctx, item.Content)
	if err := s.index.AddKnowledge(ctx, item, embedding); err != nil {
		return "", fmt.Errorf("add knowledge: %w", err)
	}
	return item.ID, nil
}

// AddTemplate embeds the template's scenario and stores it, returning its id.
func (s *KnowledgeStore) AddTemplate(ctx context.Context, tpl *domain.ReplyTemplate) (string, error) {
	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}
	if !s.connected {
		return tpl.ID, nil
	}

	embedding := s.embedder.Embed(ctx, tpl.Scenario)
	if err := s.index.AddTemplate(ctx, tpl, embedding); err != nil {
		return "", fmt.Errorf("add template: %w", err)
	}
	return tpl.ID, nil
}

// SearchKnowledge returns the most similar knowledge snippets, best first.
// It never fails: disconnected mode and backend errors both degrade to the
// static fallback list truncated to limit.
func (s *KnowledgeStore) SearchKnowledge(ctx context.Context, query string, limit int) []domain.RetrievalResult {
	if limit <= 0 {
		limit = 3
	}
	if !s.connected {
		return truncateResults(fallbackKnowledge, limit)
	}

	embedding := s.embedder.Embed(ctx, query)
	matches, err := s.index.SearchKnowledge(ctx, embedding, limit)
	if err != nil {
		s.log.WithError(err).Warn("knowledge search failed, serving fallback")
		return truncateResults(fallbackKnowledge, limit)
	}
	return toRetrievalResults(matches)
}

// SearchTemplates returns the most similar reply templates, best first, with
// the same degradation behavior as SearchKnowledge.
func (s *KnowledgeStore) SearchTemplates(ctx context.Context, query string, limit int) []domain.RetrievalResult {
	if limit <= 0 {
		limit = 2
	}
	if !s.connected {
		return truncateResults(fallbackTemplates, limit)
	}

	embedding := s.embedder.Embed(ctx, query)
	matches, err := s.index.SearchTemplates(ctx, embedding, limit)
	if err != nil {
		s.log.WithError(err).Warn("template search failed, serving fallback")
		return truncateResults(fallbackTemplates, limit)
	}
	return toRetrievalResults(matches)
}

// Stats returns item counts and the connectivity status.
func (s *KnowledgeStore) Stats(ctx context.Context) (domain.KnowledgeStats, error) {
	if !s.connected {
		return domain.KnowledgeStats{Status: domain.StoreStatusDisconnected}, nil
	}

	knowledgeCount, err := s.index.KnowledgeCount(ctx)
	if err != nil {
		return domain.KnowledgeStats{}, fmt.Errorf("knowledge count: %w", err)
	}
	templateCount, err := s.index.TemplateCount(ctx)
	if err != nil {
		return domain.KnowledgeStats{}, fmt.Errorf("template count: %w", err)
	}

	return domain.KnowledgeStats{
		KnowledgeCount: knowledgeCount,
		TemplateCount:  templateCount,
		Status:         domain.StoreStatusConnected,
	}, nil
}

// Seed populates the index with the built-in catalog when it is empty.
// The count==0 guard makes re-seeding a no-op; two processes seeding
// concurrently can still double-insert, which is accepted.
func (s *KnowledgeStore) Seed(ctx context.Context) error {
	if !s.connected {
		s.log.Debug("store disconnected, skipping seed")
		return nil
	}

	count, err := s.index.KnowledgeCount(ctx)
	if err != nil {
		return fmt.Errorf("seed count check: %w", err)
	}
	if count > 0 {
		s.log.WithField("count", count).Debug("knowledge already seeded, skipping")
		return nil
	}

	for i := range seedKnowledge {
		item := seedKnowledge[i]
		if _, err := s.AddKnowledge(ctx, &item); err != nil {
			return fmt.Errorf("seed knowledge %d: %w", i, err)
		}
	}
	for i := range seedTemplates {
		tpl := seedTemplates[i]
		if _, err := s.AddTemplate(ctx, &tpl); err != nil {
			return fmt.Errorf("seed template %d: %w", i, err)
		}
	}

	s.log.WithFields(map[string]any{
		"knowledge": len(seedKnowledge),
		"templates": len(seedTemplates),
	}).Info("seeded knowledge store")
	return nil
}

func toRetrievalResults(matches []*out.VectorMatch) []domain.RetrievalResult {
	results := make([]domain.RetrievalResult, len(matches))
	for i, m := range matches {
		results[i] = domain.RetrievalResult{
			Content:    m.Content,
			Metadata:   m.Metadata,
			Similarity: clamp01(1 - m.Distance),
		}
	}
	return results
}

func truncateResults(results []domain.RetrievalResult, limit int) []domain.RetrievalResult {
	if len(results) > limit {
		results = results[:limit]
	}
	out := make([]domain.RetrievalResult, len(results))
	copy(out, results)
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package out

import (
	"context"

	"github.com/PushkarKunda/OneBox-AI/core/domain"
)

// VectorMatch is a raw similarity hit from the index backend.
type VectorMatch struct {
	ID       string
	Content  string
	Metadata map[string]any
	Distance float64 // cosine distance, 0 = identical
}

// VectorIndex is the outbound port for the vector similarity backend.
// Embeddings are computed by the caller and injected, so the index itself
// stays a dumb distance-ranked store.
type VectorIndex interface {
	Ping(ctx context.Context) error

	AddKnowledge(ctx context.Context, item *domain.KnowledgeItem, embedding []float32) error
	AddTemplate(ctx context.Context, tpl *domain.ReplyTemplate, embedding []float32) error

	SearchKnowledge(ctx context.Context, embedding []float32, limit int) ([]*VectorMatch, error)
	SearchTemplates(ctx context.Context, embedding []float32, limit int) ([]*VectorMatch, error)

	KnowledgeCount(ctx context.Context) (int, error)
	TemplateCount(ctx context.Context) (int, error)
}

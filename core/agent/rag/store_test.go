package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PushkarKunda/OneBox-AI/core/domain"
	"github.com/PushkarKunda/OneBox-AI/core/port/out"
	"github.com/PushkarKunda/OneBox-AI/pkg/ratelimit"
)

type fakeIndex struct {
	pingErr   error
	searchErr error

	knowledge []*out.VectorMatch
	templates []*out.VectorMatch

	addedKnowledge []*domain.KnowledgeItem
	addedTemplates []*domain.ReplyTemplate
}

func (f *fakeIndex) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeIndex) AddKnowledge(ctx context.Context, item *domain.KnowledgeItem, embedding []float32) error {
	f.addedKnowledge = append(f.addedKnowledge, item)
	return nil
}

func (f *fakeIndex) AddTemplate(ctx context.Context, tpl *domain.ReplyTemplate, embedding []float32) error {
	f.addedTemplates = append(f.addedTemplates, tpl)
	return nil
}

func (f *fakeIndex) SearchKnowledge(ctx context.Context, embedding []float32, limit int) ([]*out.VectorMatch, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.knowledge) > limit {
		return f.knowledge[:limit], nil
	}
	return f.knowledge, nil
}

func (f *fakeIndex) SearchTemplates(ctx context.Context, embedding []float32, limit int) ([]*out.VectorMatch, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.templates) > limit {
		return f.templates[:limit], nil
	}
	return f.templates, nil
}

func (f *fakeIndex) KnowledgeCount(ctx context.Context) (int, error) {
	return len(f.addedKnowledge) + len(f.knowledge), nil
}

func (f *fakeIndex) TemplateCount(ctx context.Context) (int, error) {
	return len(f.addedTemplates) + len(f.templates), nil
}

func testEmbedder() *Embedder {
	client := &stubEmbeddingClient{vec: []float32{1, 0, 0}}
	limiter := ratelimit.NewAdaptiveLimiter(time.Millisecond, 10*time.Millisecond)
	return NewEmbedder(client, limiter, &EmbedderConfig{Dimension: 3})
}

func TestStoreDisconnectedWhenPingFails(t *testing.T) {
	idx := &fakeIndex{pingErr: errors.New("dial tcp: connection refused")}
	store := NewKnowledgeStore(context.Background(), idx, testEmbedder())

	if store.Connected() {
		t.Fatal("store should be disconnected after failed ping")
	}
}

func TestStoreDisconnectedWithNilIndex(t *testing.T) {
	store := NewKnowledgeStore(context.Background(), nil, testEmbedder())
	if store.Connected() {
		t.Fatal("store should be disconnected without an index")
	}
}

func TestDisconnectedAddReturnsID(t *testing.T) {
	store := NewKnowledgeStore(context.Background(), nil, testEmbedder())

	id, err := store.AddKnowledge(context.Background(), &domain.KnowledgeItem{Content: "x"})
	if err != nil {
		t.Fatalf("disconnected add must not fail: %v", err)
	}
	if id == "" {
		t.Fatal("disconnected add must still return an id")
	}
}

func TestDisconnectedSearchServesFallback(t *testing.T) {
	store := NewKnowledgeStore(context.Background(), nil, testEmbedder())
	ctx := context.Background()

	results := store.SearchKnowledge(ctx, "anything", 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 fallback results, got %d", len(results))
	}
	for _, r := range results {
		if r.Similarity != fallbackSimilarity {
			t.Fatalf("fallback similarity should be %v, got %v", fallbackSimilarity, r.Similarity)
		}
		if r.Content == "" {
			t.Fatal("fallback result has empty content")
		}
	}

	tpls := store.SearchTemplates(ctx, "anything", 5)
	if len(tpls) != len(fallbackTemplates) {
		t.Fatalf("expected %d fallback templates, got %d", len(fallbackTemplates), len(tpls))
	}
	if _, ok := tpls[0].Metadata["template"].(string); !ok {
		t.Fatal("fallback template metadata missing template text")
	}
}

func TestSearchErrorDegradesToFallback(t *testing.T) {
	idx := &fakeIndex{searchErr: errors.New("relation does not exist")}
	store := NewKnowledgeStore(context.Background(), idx, testEmbedder())

	results := store.SearchKnowledge(context.Background(), "query", 3)
	if len(results) == 0 {
		t.Fatal("backend error must degrade to fallback, not empty results")
	}
	if results[0].Similarity != fallbackSimilarity {
		t.Fatalf("expected fallback similarity, got %v", results[0].Similarity)
	}
}

func TestSearchConvertsDistanceToSimilarity(t *testing.T) {
	idx := &fakeIndex{knowledge: []*out.VectorMatch{
		{ID: "a", Content: "best", Distance: 0.1},
		{ID: "b", Content: "worse", Distance: 0.8},
		{ID: "c", Content: "negative distance", Distance: -0.2},
	}}
	store := NewKnowledgeStore(context.Background(), idx, testEmbedder())

	results := store.SearchKnowledge(context.Background(), "query", 3)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if got := results[0].Similarity; got < 0.89 || got > 0.91 {
		t.Fatalf("expected similarity ~0.9, got %v", got)
	}
	if results[2].Similarity != 1 {
		t.Fatalf("similarity must clamp to 1, got %v", results[2].Similarity)
	}
}

func TestSeedPopulatesEmptyIndex(t *testing.T) {
	idx := &fakeIndex{}
	store := NewKnowledgeStore(context.Background(), idx, testEmbedder())

	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if len(idx.addedKnowledge) != len(seedKnowledge) {
		t.Fatalf("expected %d knowledge inserts, got %d", len(seedKnowledge), len(idx.addedKnowledge))
	}
	if len(idx.addedTemplates) != len(seedTemplates) {
		t.Fatalf("expected %d template inserts, got %d", len(seedTemplates), len(idx.addedTemplates))
	}
	for _, item := range idx.addedKnowledge {
		if item.ID == "" {
			t.Fatal("seeded item missing id")
		}
	}
}

func TestSeedSkipsNonEmptyIndex(t *testing.T) {
	idx := &fakeIndex{knowledge: []*out.VectorMatch{{ID: "existing"}}}
	store := NewKnowledgeStore(context.Background(), idx, testEmbedder())

	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if len(idx.addedKnowledge) != 0 {
		t.Fatalf("seed must be a no-op on non-empty index, inserted %d", len(idx.addedKnowledge))
	}
}

func TestSeedNoopWhenDisconnected(t *testing.T) {
	store := NewKnowledgeStore(context.Background(), nil, testEmbedder())
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("disconnected seed must not fail: %v", err)
	}
}

func TestStatsReportsStatus(t *testing.T) {
	idx := &fakeIndex{knowledge: []*out.VectorMatch{{ID: "a"}, {ID: "b"}}}
	store := NewKnowledgeStore(context.Background(), idx, testEmbedder())

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Status != domain.StoreStatusConnected {
		t.Fatalf("expected connected status, got %q", stats.Status)
	}
	if stats.KnowledgeCount != 2 {
		t.Fatalf("expected 2 knowledge items, got %d", stats.KnowledgeCount)
	}

	disconnected := NewKnowledgeStore(context.Background(), nil, testEmbedder())
	stats, err = disconnected.Stats(context.Background())
	if err != nil {
		t.Fatalf("disconnected stats failed: %v", err)
	}
	if stats.Status != domain.StoreStatusDisconnected {
		t.Fatalf("expected disconnected status, got %q", stats.Status)
	}
	if stats.KnowledgeCount != 0 || stats.TemplateCount != 0 {
		t.Fatal("disconnected stats must report zero counts")
	}
}

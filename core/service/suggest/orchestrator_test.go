package suggest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PushkarKunda/OneBox-AI/core/domain"
	"github.com/PushkarKunda/OneBox-AI/core/port/out"

	"pgregory.net/rapid"
)

type stubClassifier struct {
	intent string
	panics bool
}

func (s *stubClassifier) ClassifyIntent(ctx context.Context, email *domain.EmailContext) string {
	if s.panics {
		panic("classifier exploded")
	}
	if s.intent == "" {
		return domain.DefaultIntent
	}
	return s.intent
}

type stubSearcher struct {
	knowledge []domain.RetrievalResult
	templates []domain.RetrievalResult
	delay     time.Duration

	mu             sync.Mutex
	knowledgeQuery string
	templatesQuery string
}

func (s *stubSearcher) SearchKnowledge(ctx context.Context, query string, limit int) []domain.RetrievalResult {
	time.Sleep(s.delay)
	s.mu.Lock()
	s.knowledgeQuery = query
	s.mu.Unlock()
	if len(s.knowledge) > limit {
		return s.knowledge[:limit]
	}
	return s.knowledge
}

func (s *stubSearcher) SearchTemplates(ctx context.Context, query string, limit int) []domain.RetrievalResult {
	time.Sleep(s.delay)
	s.mu.Lock()
	s.templatesQuery = query
	s.mu.Unlock()
	if len(s.templates) > limit {
		return s.templates[:limit]
	}
	return s.templates
}

func newTestOrchestrator(chat out.ChatClient, searcher KnowledgeSearcher) *Orchestrator {
	return NewOrchestrator(&stubClassifier{}, searcher, NewSynthesizer(chat, nil), 0)
}

func TestSuggestRepliesHappyPath(t *testing.T) {
	searcher := &stubSearcher{
		knowledge: []domain.RetrievalResult{{Content: "fact", Similarity: 0.8}},
		templates: []domain.RetrievalResult{{
			Content:    "scenario",
			Metadata:   map[string]any{"template": "Hi {{sender_name}}", "category": "meeting"},
			Similarity: 0.9,
		}},
	}
	o := newTestOrchestrator(&stubChat{response: "Sounds good, see you then."}, searcher)

	replies := o.SuggestReplies(context.Background(), testEmail())
	if len(replies) != 2 {
		t.Fatalf("expected template + ai replies, got %d", len(replies))
	}
	if !strings.HasPrefix(replies[0].ID, "template-") || !strings.HasPrefix(replies[1].ID, "ai-") {
		t.Fatalf("unexpected strategy order: %q, %q", replies[0].ID, replies[1].ID)
	}
}

func TestSuggestRepliesSynthesisErrorYieldsFallback(t *testing.T) {
	o := newTestOrchestrator(&stubChat{err: errors.New("model down")}, &stubSearcher{})

	replies := o.SuggestReplies(context.Background(), testEmail())
	if len(replies) != 1 {
		t.Fatalf("expected exactly one fallback reply, got %d", len(replies))
	}
	fb := replies[0]
	if !strings.HasPrefix(fb.ID, "fallback-") {
		t.Fatalf("expected fallback id, got %q", fb.ID)
	}
	if fb.Confidence != 0.5 {
		t.Fatalf("fallback confidence must be 0.5, got %v", fb.Confidence)
	}
	if fb.Metadata.Category != "general" || fb.Metadata.Tone != domain.ToneProfessional {
		t.Fatalf("unexpected fallback metadata: %+v", fb.Metadata)
	}
	if !fb.Metadata.ActionRequired || fb.Metadata.EstimatedResponseTime != "24 hours" {
		t.Fatalf("unexpected fallback metadata: %+v", fb.Metadata)
	}
	if fb.Context.Reasoning != "Fallback response due to processing error" {
		t.Fatalf("unexpected fallback reasoning: %q", fb.Context.Reasoning)
	}
}

func TestSuggestRepliesRecoversPanic(t *testing.T) {
	o := NewOrchestrator(&stubClassifier{panics: true}, &stubSearcher{},
		NewSynthesizer(&stubChat{response: "ok"}, nil), 0)

	replies := o.SuggestReplies(context.Background(), testEmail())
	if len(replies) != 1 || !strings.HasPrefix(replies[0].ID, "fallback-") {
		t.Fatalf("panic must degrade to a single fallback reply, got %v", replies)
	}
}

func TestSuggestRepliesTimeout(t *testing.T) {
	slow := &slowChat{delay: 200 * time.Millisecond}
	o := NewOrchestrator(&stubClassifier{}, &stubSearcher{},
		NewSynthesizer(slow, nil), 20*time.Millisecond)

	replies := o.SuggestReplies(context.Background(), testEmail())
	if len(replies) != 1 || !strings.HasPrefix(replies[0].ID, "fallback-") {
		t.Fatalf("timeout must degrade to a single fallback reply, got %d replies", len(replies))
	}
}

type slowChat struct {
	delay time.Duration
}

func (s *slowChat) Complete(ctx context.Context, prompt string) (string, error) {
	return s.CompleteWithSystem(ctx, "", prompt)
}

func (s *slowChat) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	select {
	case <-time.After(s.delay):
		return "late", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestRetrievalQueryIncludesIntent(t *testing.T) {
	searcher := &stubSearcher{}
	classifier := &stubClassifier{intent: "Wants to book a product demo"}
	o := NewOrchestrator(classifier, searcher,
		NewSynthesizer(&stubChat{response: "Sure, happy to help."}, nil), 0)

	email := testEmail()
	o.SuggestReplies(context.Background(), email)

	searcher.mu.Lock()
	knowledgeQuery, templatesQuery := searcher.knowledgeQuery, searcher.templatesQuery
	searcher.mu.Unlock()

	for _, query := range []string{knowledgeQuery, templatesQuery} {
		if !strings.Contains(query, email.Subject) || !strings.Contains(query, email.Body) {
			t.Fatalf("retrieval query missing email text: %q", query)
		}
		if !strings.Contains(query, classifier.intent) {
			t.Fatalf("retrieval query missing the classified intent: %q", query)
		}
	}
}

func TestSuggestRepliesDisconnectedStoreStillSuggests(t *testing.T) {
	// Fallback retrieval data carries similarity 0.5, below the template gate,
	// so a degraded store yields the AI reply plus at most a quick response.
	searcher := &stubSearcher{
		knowledge: []domain.RetrievalResult{{Content: "static", Similarity: 0.5}},
		templates: []domain.RetrievalResult{{
			Content:    "scenario",
			Metadata:   map[string]any{"template": "Hi {{sender_name}}", "category": "meeting"},
			Similarity: 0.5,
		}},
	}
	o := newTestOrchestrator(&stubChat{response: "Thanks for reaching out."}, searcher)

	email := &domain.EmailContext{Subject: "Thanks", Body: "thank you", From: "a@b.c"}
	replies := o.SuggestReplies(context.Background(), email)
	if len(replies) != 2 {
		t.Fatalf("expected ai + quick replies, got %d", len(replies))
	}
	if !strings.HasPrefix(replies[0].ID, "ai-") || !strings.HasPrefix(replies[1].ID, "quick-") {
		t.Fatalf("unexpected reply ids: %q, %q", replies[0].ID, replies[1].ID)
	}
}

func TestSuggestRepliesTotality(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		email := &domain.EmailContext{
			Subject: rapid.StringMatching(`[a-zA-Z0-9 .,!?]{0,60}`).Draw(rt, "subject"),
			Body:    rapid.StringMatching(`[a-zA-Z0-9 .,!?]{0,200}`).Draw(rt, "body"),
			From:    rapid.StringMatching(`[a-z]{1,10}@[a-z]{1,10}\.com`).Draw(rt, "from"),
		}
		failChat := rapid.Bool().Draw(rt, "failChat")

		chat := &stubChat{response: "A reply."}
		if failChat {
			chat.err = errors.New("provider error")
		}
		o := newTestOrchestrator(chat, &stubSearcher{})

		replies := o.SuggestReplies(context.Background(), email)
		if len(replies) < 1 || len(replies) > 3 {
			rt.Fatalf("expected 1-3 replies, got %d", len(replies))
		}
		for _, r := range replies {
			if r.Content == "" {
				rt.Fatal("reply with empty content")
			}
			if r.Confidence < 0 || r.Confidence > 1 {
				rt.Fatalf("confidence out of range: %v", r.Confidence)
			}
		}
	})
}

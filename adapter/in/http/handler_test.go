package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PushkarKunda/OneBox-AI/core/domain"

	"github.com/gofiber/fiber/v2"
)

type fakeSuggester struct {
	replies []domain.SuggestedReply
	panics  bool
}

func (f *fakeSuggester) SuggestReplies(ctx context.Context, email *domain.EmailContext) []domain.SuggestedReply {
	if f.panics {
		panic("pipeline bug")
	}
	return f.replies
}

type fakeStats struct {
	stats domain.KnowledgeStats
	err   error
}

func (f *fakeStats) Stats(ctx context.Context) (domain.KnowledgeStats, error) {
	return f.stats, f.err
}

func newTestApp(suggester ReplySuggester, stats StatsProvider) *fiber.App {
	app := fiber.New()
	NewSuggestHandler(suggester, stats, "gpt-4o-mini", "text-embedding-ada-002").Register(app)
	NewHealthHandler(stats).Register(app)
	return app
}

func decodeBody(t *testing.T, resp io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return body
}

func TestSuggestRepliesValidation(t *testing.T) {
	app := newTestApp(&fakeSuggester{}, &fakeStats{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing subject", `{"body":"hello","from":"a@b.c"}`},
		{"missing body", `{"subject":"hi","from":"a@b.c"}`},
		{"missing from", `{"subject":"hi","body":"hello"}`},
		{"empty strings", `{"subject":"","body":"","from":""}`},
		{"not json", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/suggest-replies", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}

			body := decodeBody(t, resp.Body)
			if body["error"] != "Missing required email fields: subject, body, from" {
				t.Fatalf("unexpected error message: %v", body["error"])
			}
		})
	}
}

func TestSuggestRepliesSuccess(t *testing.T) {
	suggester := &fakeSuggester{replies: []domain.SuggestedReply{{
		ID:         "ai-123",
		Content:    "Sounds good!",
		Confidence: 0.8,
		Metadata:   domain.ReplyMetadata{Category: "general", Tone: domain.ToneProfessional},
	}}}
	app := newTestApp(suggester, &fakeStats{})

	req := httptest.NewRequest("POST", "/api/suggest-replies",
		strings.NewReader(`{"subject":"Meeting","body":"Can we meet?","from":"jane@example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp.Body)
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if body["email_id"] != "Meeting" {
		t.Fatalf("email_id should echo the subject, got %v", body["email_id"])
	}
	if body["generated_at"] == "" || body["generated_at"] == nil {
		t.Fatal("generated_at missing")
	}
	suggestions, ok := body["suggestions"].([]any)
	if !ok || len(suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %v", body["suggestions"])
	}
}

func TestSuggestRepliesPanicMapsTo500(t *testing.T) {
	app := newTestApp(&fakeSuggester{panics: true}, &fakeStats{})

	req := httptest.NewRequest("POST", "/api/suggest-replies",
		strings.NewReader(`{"subject":"s","body":"b","from":"f@g.h"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp.Body)
	if body["error"] != "Failed to generate reply suggestions" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
	if body["details"] == nil {
		t.Fatal("details missing from 500 response")
	}
}

func TestRagStats(t *testing.T) {
	stats := &fakeStats{stats: domain.KnowledgeStats{
		KnowledgeCount: 5,
		TemplateCount:  4,
		Status:         domain.StoreStatusConnected,
	}}
	app := newTestApp(&fakeSuggester{}, stats)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/rag-stats", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp.Body)
	if body["ragService"] != "active" {
		t.Fatalf("expected ragService=active, got %v", body["ragService"])
	}
	if body["knowledgeCount"] != float64(5) || body["templateCount"] != float64(4) {
		t.Fatalf("unexpected counts: %v / %v", body["knowledgeCount"], body["templateCount"])
	}
	if body["status"] != domain.StoreStatusConnected {
		t.Fatalf("unexpected status: %v", body["status"])
	}
	if body["llmModel"] != "gpt-4o-mini" || body["embeddingModel"] != "text-embedding-ada-002" {
		t.Fatalf("model fields missing: %v", body)
	}
}

func TestRagStatsError(t *testing.T) {
	app := newTestApp(&fakeSuggester{}, &fakeStats{err: errors.New("count failed")})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/rag-stats", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp.Body)
	if body["error"] != "Failed to fetch RAG stats" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
}

func TestHealth(t *testing.T) {
	stats := &fakeStats{stats: domain.KnowledgeStats{Status: domain.StoreStatusDisconnected}}
	app := newTestApp(&fakeSuggester{}, stats)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp.Body)
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", body["status"])
	}
	if body["knowledgeStore"] != domain.StoreStatusDisconnected {
		t.Fatalf("expected disconnected store, got %v", body["knowledgeStore"])
	}
}

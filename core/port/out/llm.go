package out

import "context"

// ChatClient is the outbound port for chat-completion calls.
type ChatClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// EmbeddingClient is the outbound port for the remote embedding API.
// Implementations may return rate-limit or quota errors; callers are expected
// to degrade rather than propagate.
type EmbeddingClient interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
}

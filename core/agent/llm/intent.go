package llm

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/PushkarKunda/OneBox-AI/core/domain"
	"github.com/PushkarKunda/OneBox-AI/pkg/logger"
)

const intentSystemPrompt = `You are an email intent classifier. Read the email and summarize the sender's intent in exactly one sentence. Output only that sentence, nothing else.`

// ClassifyIntent asks the model for a one-sentence intent summary of the email.
// Classification is best-effort: any failure returns the generic default and is
// never propagated to the caller.
func (c *Client) ClassifyIntent(ctx context.Context, email *domain.EmailContext) string {
	userPrompt := fmt.Sprintf("From: %s\nSubject: %s\n\n%s",
		email.From, email.Subject, truncate(email.Body, 2000))

	resp, err := c.CompleteWithSystem(ctx, intentSystemPrompt, userPrompt)
	if err != nil {
		logger.WithError(err).Debug("intent classification failed, using default")
		return domain.DefaultIntent
	}

	intent := cleanResponse(resp)
	if intent == "" {
		return domain.DefaultIntent
	}
	return intent
}

// truncate cuts s to at most maxLen bytes on a rune boundary.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

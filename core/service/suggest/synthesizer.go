// Package suggest implements the reply-suggestion pipeline: intent
// classification, concurrent retrieval, and multi-strategy synthesis.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/PushkarKunda/OneBox-AI/core/domain"
	"github.com/PushkarKunda/OneBox-AI/core/port/out"

	"github.com/google/uuid"
)

// templateSimilarityGate is the minimum retrieval similarity before a stored
// template is trusted enough to render directly.
const templateSimilarityGate = 0.7

// Synthesizer turns the email, its intent, and the retrieved context into
// 1-3 candidate replies. Strategy order is fixed: template first (gated on
// similarity), then the AI-contextual reply (mandatory), then at most one
// quick canned response.
type Synthesizer struct {
	chat        out.ChatClient
	meetingLink string
	productName string
}

// SynthesizerConfig configures variable substitution for rendered templates.
type SynthesizerConfig struct {
	MeetingLink string
	ProductName string
}

// NewSynthesizer creates a synthesizer. Empty config fields get OneBox defaults.
func NewSynthesizer(chat out.ChatClient, cfg *SynthesizerConfig) *Synthesizer {
	if cfg == nil {
		cfg = &SynthesizerConfig{}
	}
	meetingLink := cfg.MeetingLink
	if meetingLink == "" {
		meetingLink = "https://cal.com/onebox/demo"
	}
	productName := cfg.ProductName
	if productName == "" {
		productName = "OneBox AI"
	}
	return &Synthesizer{
		chat:        chat,
		meetingLink: meetingLink,
		productName: productName,
	}
}

// Synthesize produces the candidate replies. The AI-contextual strategy is
// all-or-nothing: if it fails, the whole synthesis fails and the caller is
// expected to substitute its fallback reply.
func (s *Synthesizer) Synthesize(ctx context.Context, email *domain.EmailContext, intent string, knowledge, templates []domain.RetrievalResult) ([]domain.SuggestedReply, error) {
	var replies []domain.SuggestedReply

	if tpl := s.templateReply(email, knowledge, templates); tpl != nil {
		replies = append(replies, *tpl)
	}

	ai, err := s.aiReply(ctx, email, intent, knowledge, templates)
	if err != nil {
		return nil, fmt.Errorf("ai reply: %w", err)
	}
	replies = append(replies, *ai)

	if quick := s.quickReply(email); quick != nil {
		replies = append(replies, *quick)
	}

	return replies, nil
}

// templateReply renders the best matching stored template when its similarity
// clears the gate. Returns nil when no template qualifies.
func (s *Synthesizer) templateReply(email *domain.EmailContext, knowledge []domain.RetrievalResult, templates []domain.RetrievalResult) *domain.SuggestedReply {
	if len(templates) == 0 {
		return nil
	}
	best := templates[0]
	if best.Similarity <= templateSimilarityGate {
		return nil
	}

	text, _ := best.Metadata["template"].(string)
	if text == "" {
		return nil
	}
	category, _ := best.Metadata["category"].(string)
	if category == "" {
		category = "general"
	}

	content := s.renderTemplate(text, email)
	lower := strings.ToLower(content)
	matched := best

	return &domain.SuggestedReply{
		ID:         "template-" + uuid.New().String(),
		Content:    content,
		Confidence: best.Similarity,
		Context: domain.ReplyContext{
			RelevantKnowledge: knowledge,
			MatchedTemplate:   &matched,
			Reasoning:         fmt.Sprintf("Matched reply template with %.0f%% similarity", best.Similarity*100),
		},
		Metadata: domain.ReplyMetadata{
			Category:              category,
			Tone:                  domain.ToneProfessional,
			ActionRequired:        strings.Contains(lower, "http"),
			EstimatedResponseTime: "1 hour",
		},
	}
}

// renderTemplate substitutes the known {{variable}} placeholders. Unknown
// placeholders are left intact so broken templates stay visible.
func (s *Synthesizer) renderTemplate(text string, email *domain.EmailContext) string {
	replacer := strings.NewReplacer(
		"{{sender_name}}", senderName(email.From),
		"{{meeting_link}}", s.meetingLink,
		"{{product_name}}", s.productName,
	)
	return replacer.Replace(text)
}

const aiReplySystemPrompt = `You are an email reply assistant for a busy professional. Write one complete reply email to the message provided. The reply must: (1) address the sender's request directly, (2) match the email's tone, (3) be concise (under 150 words), (4) include a clear next step when one is needed, and (5) be ready to send without placeholders. Output only the reply body.`

func (s *Synthesizer) aiReply(ctx context.Context, email *domain.EmailContext, intent string, knowledge, templates []domain.RetrievalResult) (*domain.SuggestedReply, error) {
	var b strings.Builder

	if len(knowledge) > 0 {
		b.WriteString("Relevant company knowledge:\n")
		for _, k := range knowledge {
			fmt.Fprintf(&b, "- %s\n", k.Content)
		}
		b.WriteString("\n")
	}
	if len(templates) > 0 {
		b.WriteString("Reply patterns used in similar situations:\n")
		for _, t := range templates {
			if tpl, ok := t.Metadata["template"].(string); ok && tpl != "" {
				fmt.Fprintf(&b, "Scenario: %s\nPattern: %s\n\n", t.Content, tpl)
			}
		}
	}

	fmt.Fprintf(&b, "Sender intent: %s\n\n", intent)
	fmt.Fprintf(&b, "Email to reply to:\nFrom: %s\nSubject: %s\n\n%s", email.From, email.Subject, email.Body)

	content, err := s.chat.CompleteWithSystem(ctx, aiReplySystemPrompt, b.String())
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty completion")
	}

	lower := strings.ToLower(content)
	return &domain.SuggestedReply{
		ID:         "ai-" + uuid.New().String(),
		Content:    content,
		Confidence: 0.8,
		Context: domain.ReplyContext{
			RelevantKnowledge: knowledge,
			Reasoning:         fmt.Sprintf("AI-generated reply using %d knowledge snippets, intent: %s", len(knowledge), intent),
		},
		Metadata: domain.ReplyMetadata{
			Category:              categorize(email),
			Tone:                  domain.ToneProfessional,
			ActionRequired:        strings.Contains(lower, "http") || strings.Contains(lower, "schedule"),
			EstimatedResponseTime: "2 hours",
		},
	}, nil
}

// categoryRules is an ordered keyword table over subject+body; first match wins.
var categoryRules = []struct {
	keyword  string
	category string
}{
	{"interview", "job_interview"},
	{"meeting", "meeting"},
	{"demo", "sales_demo"},
	{"support", "technical_support"},
	{"help", "technical_support"},
	{"collaboration", "collaboration"},
	{"project", "collaboration"},
}

func categorize(email *domain.EmailContext) string {
	text := strings.ToLower(email.Subject + " " + email.Body)
	for _, rule := range categoryRules {
		if strings.Contains(text, rule.keyword) {
			return rule.category
		}
	}
	return "general"
}

// quickReply returns at most one canned short reply based on email keywords.
func (s *Synthesizer) quickReply(email *domain.EmailContext) *domain.SuggestedReply {
	text := strings.ToLower(email.Subject + " " + email.Body)

	switch {
	case strings.Contains(text, "thank"):
		return quickSuggestion(
			"You're very welcome! Happy to help anytime.",
			0.9, "acknowledgment", domain.ToneFriendly,
		)
	case strings.Contains(text, "confirm"):
		return quickSuggestion(
			"Confirmed! Looking forward to it.",
			0.8, "confirmation", domain.ToneProfessional,
		)
	default:
		return nil
	}
}

func quickSuggestion(content string, confidence float64, category, tone string) *domain.SuggestedReply {
	return &domain.SuggestedReply{
		ID:         "quick-" + uuid.New().String(),
		Content:    content,
		Confidence: confidence,
		Context: domain.ReplyContext{
			Reasoning: "Quick response based on email keywords",
		},
		Metadata: domain.ReplyMetadata{
			Category:              category,
			Tone:                  tone,
			ActionRequired:        false,
			EstimatedResponseTime: "15 minutes",
		},
	}
}

// senderName extracts a display name from the From address: the part before
// the @, with dots and underscores turned into spaces.
func senderName(from string) string {
	addr := from
	if start := strings.LastIndex(addr, "<"); start >= 0 {
		if end := strings.Index(addr[start:], ">"); end > 0 {
			addr = addr[start+1 : start+end]
		}
	}
	local := addr
	if at := strings.Index(addr, "@"); at > 0 {
		local = addr[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)
	local = strings.TrimSpace(local)
	if local == "" {
		return "there"
	}
	return local
}

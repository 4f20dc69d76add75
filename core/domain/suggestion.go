package domain

// EmailContext is the inbound email a caller wants reply suggestions for.
// Subject, Body and From are required at the API boundary; To and Date are
// optional and carried through for prompt context only.
type EmailContext struct {
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	From    string   `json:"from"`
	To      []string `json:"to,omitempty"`
	Date    string   `json:"date,omitempty"`
}

// Reply tones.
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneFormal       = "formal"
)

// DefaultIntent is returned when intent classification fails for any reason.
const DefaultIntent = "General inquiry"

// RetrievalResult is a single similarity-search hit from the knowledge store.
// Similarity is 1 - cosine distance, clamped to [0,1].
type RetrievalResult struct {
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Similarity float64        `json:"similarity"`
}

// ReplyContext explains how a suggestion was produced.
type ReplyContext struct {
	RelevantKnowledge []RetrievalResult `json:"relevantKnowledge"`
	MatchedTemplate   *RetrievalResult  `json:"matchedTemplate,omitempty"`
	Reasoning         string            `json:"reasoning"`
}

// ReplyMetadata carries presentation hints for a suggestion.
type ReplyMetadata struct {
	Category              string `json:"category"`
	Tone                  string `json:"tone"`
	ActionRequired        bool   `json:"action_required"`
	EstimatedResponseTime string `json:"estimated_response_time"`
}

// SuggestedReply is one candidate reply produced by the pipeline.
// Content is always non-empty and Confidence is always within [0,1].
type SuggestedReply struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	Confidence float64       `json:"confidence"`
	Context    ReplyContext  `json:"context"`
	Metadata   ReplyMetadata `json:"metadata"`
}

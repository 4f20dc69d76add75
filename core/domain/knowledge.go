package domain

// Knowledge item types.
const (
	KnowledgeTypeProduct  = "product"
	KnowledgeTypeOutreach = "outreach"
	KnowledgeTypeTemplate = "template"
	KnowledgeTypeFAQ      = "faq"
)

// KnowledgeMetadata describes a stored knowledge snippet.
type KnowledgeMetadata struct {
	Type     string   `json:"type"`
	Tags     []string `json:"tags,omitempty"`
	Priority int      `json:"priority"`
	Context  string   `json:"context,omitempty"`
}

// KnowledgeItem is a short snippet stored in the vector index. Items are
// created at seed time or via explicit add and never mutated in place.
type KnowledgeItem struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Category string            `json:"category"`
	Metadata KnowledgeMetadata `json:"metadata"`
}

// ReplyTemplate is a reusable reply skeleton. Scenario is a natural-language
// description of when to use it and is what gets embedded for retrieval.
// Template may contain {{variable}} placeholders listed in Variables.
type ReplyTemplate struct {
	ID        string   `json:"id"`
	Scenario  string   `json:"scenario"`
	Template  string   `json:"template"`
	Variables []string `json:"variables"`
	Category  string   `json:"category"`
}

// Knowledge store connectivity states.
const (
	StoreStatusConnected    = "connected"
	StoreStatusDisconnected = "disconnected"
)

// KnowledgeStats summarizes the knowledge store contents.
type KnowledgeStats struct {
	KnowledgeCount int    `json:"knowledgeCount"`
	TemplateCount  int    `json:"templateCount"`
	Status         string `json:"status"`
}

package rag

import "github.com/PushkarKunda/OneBox-AI/core/domain"

// fallbackSimilarity is the fixed score assigned to static fallback results.
// It sits below the template-strategy gate on purpose, so disconnected mode
// never triggers template replies from stale canned data.
const fallbackSimilarity = 0.5

// fallbackKnowledge is served when the vector index is unreachable.
var fallbackKnowledge = []domain.RetrievalResult{
	{
		Content: "OneBox AI is an AI-powered email client that triages your inbox, " +
			"suggests replies, and keeps scheduling on track across Gmail and Outlook.",
		Metadata:   map[string]any{"type": domain.KnowledgeTypeProduct, "category": "product_info"},
		Similarity: fallbackSimilarity,
	},
	{
		Content: "For demo or sales requests, acknowledge the sender, offer a short " +
			"call, and share the scheduling link so they can pick a time.",
		Metadata:   map[string]any{"type": domain.KnowledgeTypeOutreach, "category": "sales"},
		Similarity: fallbackSimilarity,
	},
	{
		Content: "Support requests should be acknowledged quickly with one concrete " +
			"next step, even when the full answer needs investigation.",
		Metadata:   map[string]any{"type": domain.KnowledgeTypeFAQ, "category": "support"},
		Similarity: fallbackSimilarity,
	},
}

// fallbackTemplates mirrors the template search shape: Content carries the
// scenario, Metadata carries the renderable template fields.
var fallbackTemplates = []domain.RetrievalResult{
	{
		Content: "Someone wants to schedule a meeting or a demo call",
		Metadata: map[string]any{
			"scenario": "Someone wants to schedule a meeting or a demo call",
			"template": "Hi {{sender_name}},\n\nThanks for reaching out! I'd be glad to meet. " +
				"You can pick a time that works for you here: {{meeting_link}}\n\nBest regards",
			"variables": []string{"sender_name", "meeting_link"},
			"category":  "meeting",
		},
		Similarity: fallbackSimilarity,
	},
	{
		Content: "Someone is asking what the product does",
		Metadata: map[string]any{
			"scenario": "Someone is asking what the product does",
			"template": "Hi {{sender_name}},\n\nGreat question! {{product_name}} helps you stay on " +
				"top of email with AI-assisted triage and reply suggestions. Happy to walk you " +
				"through it if useful.\n\nBest regards",
			"variables": []string{"sender_name", "product_name"},
			"category":  "product_info",
		},
		Similarity: fallbackSimilarity,
	},
}

// seedKnowledge is the catalog inserted into an empty index on first connect.
var seedKnowledge = []domain.KnowledgeItem{
	{
		Content: "OneBox AI unifies Gmail and Outlook accounts into a single inbox with " +
			"AI-powered triage, smart folders, and one-click reply suggestions.",
		Category: "product_info",
		Metadata: domain.KnowledgeMetadata{
			Type:     domain.KnowledgeTypeProduct,
			Tags:     []string{"overview", "inbox", "ai"},
			Priority: 1,
		},
	},
	{
		Content: "Reply suggestions are generated from the sender's message, the detected " +
			"intent, and retrieved context, then ranked by confidence before display.",
		Category: "product_info",
		Metadata: domain.KnowledgeMetadata{
			Type:     domain.KnowledgeTypeProduct,
			Tags:     []string{"suggestions", "rag"},
			Priority: 2,
		},
	},
	{
		Content: "Demo calls run 30 minutes over video and cover inbox setup, triage rules, " +
			"and the reply assistant. Prospects book directly through the scheduling link.",
		Category: "sales",
		Metadata: domain.KnowledgeMetadata{
			Type:     domain.KnowledgeTypeOutreach,
			Tags:     []string{"demo", "scheduling"},
			Priority: 1,
			Context:  "Use when a prospect asks to see the product",
		},
	},
	{
		Content: "Support responses should confirm the reported issue, state the next step, " +
			"and give a realistic timeframe. Escalations go to the on-call engineer.",
		Category: "support",
		Metadata: domain.KnowledgeMetadata{
			Type:     domain.KnowledgeTypeFAQ,
			Tags:     []string{"support", "escalation"},
			Priority: 1,
		},
	},
	{
		Content: "Collaboration and partnership inquiries are routed to the founders; " +
			"acknowledge interest and propose a short intro call before sharing details.",
		Category: "collaboration",
		Metadata: domain.KnowledgeMetadata{
			Type:     domain.KnowledgeTypeOutreach,
			Tags:     []string{"partnership"},
			Priority: 3,
		},
	},
}

// seedTemplates is the template catalog inserted alongside seedKnowledge.
var seedTemplates = []domain.ReplyTemplate{
	{
		Scenario:  "Someone wants to schedule a meeting, call, or demo",
		Template:  "Hi {{sender_name}},\n\nThanks for reaching out! I'd be glad to meet. You can grab a time that works for you here: {{meeting_link}}\n\nLooking forward to it.\n\nBest regards",
		Variables: []string{"sender_name", "meeting_link"},
		Category:  "meeting",
	},
	{
		Scenario:  "Someone is asking about the product or requesting more information",
		Template:  "Hi {{sender_name}},\n\nThanks for your interest in {{product_name}}! It keeps your inbox organized with AI triage and drafts replies for you. I'd be happy to set up a quick walkthrough, just let me know.\n\nBest regards",
		Variables: []string{"sender_name", "product_name"},
		Category:  "product_info",
	},
	{
		Scenario:  "Someone reported a problem or asked for technical support",
		Template:  "Hi {{sender_name}},\n\nThanks for flagging this. I've logged the issue and we're taking a look. I'll follow up with an update as soon as we know more.\n\nBest regards",
		Variables: []string{"sender_name"},
		Category:  "technical_support",
	},
	{
		Scenario:  "Someone proposed a collaboration or partnership",
		Template:  "Hi {{sender_name}},\n\nThanks for thinking of us! This sounds interesting. Would you be open to a short intro call next week? You can pick a slot here: {{meeting_link}}\n\nBest regards",
		Variables: []string{"sender_name", "meeting_link"},
		Category:  "collaboration",
	},
}

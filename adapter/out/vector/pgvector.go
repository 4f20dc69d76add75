// Package vector implements the vector index port on Postgres + pgvector.
package vector

import (
	"context"
	"strconv"

	"github.com/PushkarKunda/OneBox-AI/core/domain"
	"github.com/PushkarKunda/OneBox-AI/core/port/out"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgVectorIndex stores knowledge and template embeddings in two pgvector
// tables and ranks by cosine distance.
type PgVectorIndex struct {
	db  *pgxpool.Pool
	dim int
}

// NewPgVectorIndex creates the index over an existing pool. dim must match
// the embedding dimension used by callers.
func NewPgVectorIndex(db *pgxpool.Pool, dim int) *PgVectorIndex {
	return &PgVectorIndex{db: db, dim: dim}
}

// Ping verifies database connectivity.
func (p *PgVectorIndex) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

// EnsureSchema creates the extension and tables when missing.
func (p *PgVectorIndex) EnsureSchema(ctx context.Context) error {
	dim := strconv.Itoa(p.dim)
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS rag_knowledge (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding vector(` + dim + `) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS rag_templates (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			template TEXT NOT NULL,
			variables JSONB NOT NULL DEFAULT '[]',
			category TEXT NOT NULL DEFAULT '',
			embedding vector(` + dim + `) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddKnowledge upserts a knowledge item with its embedding.
func (p *PgVectorIndex) AddKnowledge(ctx context.Context, item *domain.KnowledgeItem, embedding []float32) error {
	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(ctx, `
		INSERT INTO rag_knowledge (id, content, category, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
			category = EXCLUDED.category,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
	`, item.ID, item.Content, item.Category, metadata, pgVector(embedding))
	return err
}

// AddTemplate upserts a reply template with its scenario embedding.
func (p *PgVectorIndex) AddTemplate(ctx context.Context, tpl *domain.ReplyTemplate, embedding []float32) error {
	variables, err := json.Marshal(tpl.Variables)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(ctx, `
		INSERT INTO rag_templates (id, scenario, template, variables, category, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET scenario = EXCLUDED.scenario,
			template = EXCLUDED.template,
			variables = EXCLUDED.variables,
			category = EXCLUDED.category,
			embedding = EXCLUDED.embedding
	`, tpl.ID, tpl.Scenario, tpl.Template, variables, tpl.Category, pgVector(embedding))
	return err
}

// SearchKnowledge returns the closest knowledge rows by cosine distance.
func (p *PgVectorIndex) SearchKnowledge(ctx context.Context, embedding []float32, limit int) ([]*out.VectorMatch, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, content, category, metadata, embedding <=> $1 AS distance
		FROM rag_knowledge
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*out.VectorMatch
	for rows.Next() {
		var m out.VectorMatch
		var category string
		var metadata []byte
		if err := rows.Scan(&m.ID, &m.Content, &category, &metadata, &m.Distance); err != nil {
			return nil, err
		}

		var meta domain.KnowledgeMetadata
		if json.Unmarshal(metadata, &meta) != nil {
			meta = domain.KnowledgeMetadata{}
		}
		m.Metadata = map[string]any{
			"type":     meta.Type,
			"category": category,
			"priority": meta.Priority,
		}
		if len(meta.Tags) > 0 {
			m.Metadata["tags"] = meta.Tags
		}
		if meta.Context != "" {
			m.Metadata["context"] = meta.Context
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

// SearchTemplates returns the closest templates by scenario distance. The
// template body and variables travel in Metadata so the synthesizer can
// render without a second lookup.
func (p *PgVectorIndex) SearchTemplates(ctx context.Context, embedding []float32, limit int) ([]*out.VectorMatch, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, scenario, template, variables, category, embedding <=> $1 AS distance
		FROM rag_templates
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*out.VectorMatch
	for rows.Next() {
		var m out.VectorMatch
		var template, category string
		var variables []byte
		if err := rows.Scan(&m.ID, &m.Content, &template, &variables, &category, &m.Distance); err != nil {
			return nil, err
		}

		var vars []string
		if json.Unmarshal(variables, &vars) != nil {
			vars = nil
		}
		m.Metadata = map[string]any{
			"scenario":  m.Content,
			"template":  template,
			"variables": vars,
			"category":  category,
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

// KnowledgeCount returns the number of stored knowledge rows.
func (p *PgVectorIndex) KnowledgeCount(ctx context.Context) (int, error) {
	var count int
	err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM rag_knowledge`).Scan(&count)
	return count, err
}

// TemplateCount returns the number of stored template rows.
func (p *PgVectorIndex) TemplateCount(ctx context.Context) (int, error) {
	var count int
	err := p.db.QueryRow(ctx, `SELECT COUNT(*) FROM rag_templates`).Scan(&count)
	return count, err
}

// pgVector converts a float32 slice to the pgvector literal format.
func pgVector(v []float32) string {
	if len(v) == 0 {
		return "[0]"
	}

	buf := make([]byte, 0, len(v)*13+2)
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, float64(f), 'f', 6, 32)
	}
	buf = append(buf, ']')
	return string(buf)
}

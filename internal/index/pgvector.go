package index

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agenthands/talentgraph/internal/core/model"
)

// PgIndex stores chunks and document ownership in PostgreSQL with the
// pgvector extension. Cosine distance from the <=> operator is mapped
// to the same [0,1] similarity as the in-memory index; the serial
// insertion id provides the stable tie-break.
type PgIndex struct {
	pool      *pgxpool.Pool
	dimension int

	// SimilarityFloor drops hits at or below this value, like the
	// in-memory index.
	SimilarityFloor float64
}

func NewPgIndex(pool *pgxpool.Pool, dimension int) *PgIndex {
	return &PgIndex{pool: pool, dimension: dimension}
}

// EnsureSchema creates the extension and tables. Safe to run repeatedly.
func (ix *PgIndex) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			seq BIGINT GENERATED ALWAYS AS IDENTITY,
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			order_index INT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(%d),
			token_count INT NOT NULL DEFAULT 0,
			mentioned_entity_ids TEXT[] NOT NULL DEFAULT '{}'
		)`, ix.dimension),
		`CREATE TABLE IF NOT EXISTS documents (
			document_id TEXT PRIMARY KEY,
			candidate_id TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS chunks_document_id_idx ON chunks (document_id)`,
	}
	for _, stmt := range stmts {
		if _, err := ix.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func (ix *PgIndex) UpsertChunk(ctx context.Context, c model.Chunk) error {
	_, err := ix.pool.Exec(ctx, `
		INSERT INTO chunks (id, document_id, order_index, content, embedding, token_count, mentioned_entity_ids)
		VALUES ($1, $2, $3, $4, $5::vector, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		c.ID, c.DocumentID, c.OrderIndex, c.Content, vectorLiteral(c.Embedding), c.TokenCount, c.MentionedEntityIDs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (ix *PgIndex) GetChunk(ctx context.Context, chunkID string) (model.Chunk, bool, error) {
	var c model.Chunk
	err := ix.pool.QueryRow(ctx, `
		SELECT id, document_id, order_index, content, token_count, mentioned_entity_ids
		FROM chunks WHERE id = $1`, chunkID).
		Scan(&c.ID, &c.DocumentID, &c.OrderIndex, &c.Content, &c.TokenCount, &c.MentionedEntityIDs)
	if err == pgx.ErrNoRows {
		return model.Chunk{}, false, nil
	}
	if err != nil {
		return model.Chunk{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return c, true, nil
}

func (ix *PgIndex) BindDocument(ctx context.Context, documentID, candidateID string) error {
	_, err := ix.pool.Exec(ctx, `
		INSERT INTO documents (document_id, candidate_id) VALUES ($1, $2)
		ON CONFLICT (document_id) DO UPDATE SET candidate_id = EXCLUDED.candidate_id`,
		documentID, candidateID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (ix *PgIndex) OwnerOf(ctx context.Context, documentID string) (string, bool, error) {
	var owner string
	err := ix.pool.QueryRow(ctx,
		`SELECT candidate_id FROM documents WHERE document_id = $1`, documentID).Scan(&owner)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return owner, true, nil
}

func (ix *PgIndex) SimilaritySearch(ctx context.Context, vector []float32, k int, filter *Filter) ([]Hit, error) {
	// <=> is cosine distance (1-cos); similarity below maps it back to
	// the shared (cos+1)/2 scale.
	query := `
		SELECT id, (2 - (embedding <=> $1::vector)) / 2 AS similarity
		FROM chunks
		WHERE embedding IS NOT NULL`
	args := []interface{}{vectorLiteral(vector)}

	if filter != nil && len(filter.DocumentIDs) > 0 {
		args = append(args, filter.DocumentIDs)
		query += fmt.Sprintf(" AND document_id = ANY($%d)", len(args))
	}
	if filter != nil && len(filter.MentionsAny) > 0 {
		args = append(args, filter.MentionsAny)
		query += fmt.Sprintf(" AND mentioned_entity_ids && $%d", len(args))
	}

	args = append(args, ix.SimilarityFloor)
	query += fmt.Sprintf(" AND (2 - (embedding <=> $1::vector)) / 2 > $%d", len(args))
	query += " ORDER BY similarity DESC, seq ASC"
	if k > 0 {
		args = append(args, k)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := ix.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.ChunkID, &h.Similarity); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return hits, nil
}

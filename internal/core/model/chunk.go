package model

// Chunk is an embedded unit of source text produced by the ingestion
// pipeline. Immutable once stored.
type Chunk struct {
	ID                 string    `json:"id"`
	DocumentID         string    `json:"document_id"`
	OrderIndex         int       `json:"order_index"`
	Content            string    `json:"content"`
	Embedding          []float32 `json:"embedding,omitempty"`
	TokenCount         int       `json:"token_count"`
	MentionedEntityIDs []string  `json:"mentioned_entity_ids,omitempty"`
}

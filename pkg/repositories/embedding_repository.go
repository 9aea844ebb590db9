package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/database"
)

// EmbeddingRepository stores embedding vectors for generations and patterns.
// Vectors are never mutated in place: a new write supersedes the previous one.
type EmbeddingRepository interface {
	UpsertGenerationEmbedding(ctx context.Context, generationID uuid.UUID, vector []float32, model string) error
	UpsertPatternEmbedding(ctx context.Context, patternID uuid.UUID, vector []float32, model string) error
}

type embeddingRepository struct {
	db *database.DB
}

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(db *database.DB) EmbeddingRepository {
	return &embeddingRepository{db: db}
}

var _ EmbeddingRepository = (*embeddingRepository)(nil)

func (r *embeddingRepository) UpsertGenerationEmbedding(ctx context.Context, generationID uuid.UUID, vector []float32, model string) error {
	query := `
		INSERT INTO generation_embeddings (generation_id, embedding, model, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (generation_id)
		DO UPDATE SET embedding = EXCLUDED.embedding, model = EXCLUDED.model, created_at = EXCLUDED.created_at`

	_, err := r.db.Exec(ctx, query, generationID, pgvector.NewVector(vector), model, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert generation embedding: %w", err)
	}
	return nil
}

func (r *embeddingRepository) UpsertPatternEmbedding(ctx context.Context, patternID uuid.UUID, vector []float32, model string) error {
	query := `
		INSERT INTO pattern_embeddings (pattern_id, embedding, model, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (pattern_id)
		DO UPDATE SET embedding = EXCLUDED.embedding, model = EXCLUDED.model, created_at = EXCLUDED.created_at`

	_, err := r.db.Exec(ctx, query, patternID, pgvector.NewVector(vector), model, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert pattern embedding: %w", err)
	}
	return nil
}

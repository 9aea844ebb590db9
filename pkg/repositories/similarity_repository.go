package repositories

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/database"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
)

// SimilarityRepository is the similarity-search collaborator: cosine
// similarity over stored embeddings, returning matches with the denormalized
// fields needed for prompt-context rendering.
type SimilarityRepository interface {
	// MatchGenerations returns up to limit completed generations whose prompt
	// embedding has cosine similarity >= threshold with the query vector and
	// whose quality score is >= minQuality.
	MatchGenerations(ctx context.Context, vector []float32, threshold float64, limit int, minQuality float64) ([]models.GenerationMatch, error)

	// MatchPatterns returns up to limit reusable patterns whose description
	// embedding has cosine similarity >= threshold with the query vector.
	MatchPatterns(ctx context.Context, vector []float32, threshold float64, limit int) ([]models.PatternMatch, error)
}

type similarityRepository struct {
	db *database.DB
}

// NewSimilarityRepository creates a new SimilarityRepository.
func NewSimilarityRepository(db *database.DB) SimilarityRepository {
	return &similarityRepository{db: db}
}

var _ SimilarityRepository = (*similarityRepository)(nil)

func (r *similarityRepository) MatchGenerations(ctx context.Context, vector []float32, threshold float64, limit int, minQuality float64) ([]models.GenerationMatch, error) {
	// pgvector's <=> operator is cosine distance; similarity = 1 - distance.
	query := `
		SELECT g.id, g.prompt, COALESCE(g.code, ''), COALESCE(g.quality_score, 0), g.framework,
		       1 - (e.embedding <=> $1) AS similarity
		FROM generation_embeddings e
		JOIN generations g ON g.id = e.generation_id
		WHERE g.status = 'completed'
		  AND g.quality_score >= $2
		  AND 1 - (e.embedding <=> $1) >= $3
		ORDER BY e.embedding <=> $1
		LIMIT $4`

	rows, err := r.db.Query(ctx, query, pgvector.NewVector(vector), minQuality, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to match generations: %w", err)
	}
	defer rows.Close()

	matches := make([]models.GenerationMatch, 0, limit)
	for rows.Next() {
		var m models.GenerationMatch
		if err := rows.Scan(&m.GenerationID, &m.Prompt, &m.Code, &m.QualityScore, &m.Framework, &m.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan generation match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation matches: %w", err)
	}

	return matches, nil
}

func (r *similarityRepository) MatchPatterns(ctx context.Context, vector []float32, threshold float64, limit int) ([]models.PatternMatch, error) {
	query := `
		SELECT p.id, p.name, p.category, p.description, p.code, p.framework,
		       1 - (e.embedding <=> $1) AS similarity
		FROM pattern_embeddings e
		JOIN patterns p ON p.id = e.pattern_id
		WHERE 1 - (e.embedding <=> $1) >= $2
		ORDER BY e.embedding <=> $1
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, pgvector.NewVector(vector), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to match patterns: %w", err)
	}
	defer rows.Close()

	matches := make([]models.PatternMatch, 0, limit)
	for rows.Next() {
		var m models.PatternMatch
		if err := rows.Scan(&m.PatternID, &m.Name, &m.Category, &m.Description, &m.Code, &m.Framework, &m.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan pattern match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pattern matches: %w", err)
	}

	return matches, nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// GenerationMatch is a similarity-search hit against a prior generation.
// Ephemeral: computed per request, never persisted. Similarity is cosine
// similarity in [0,1].
type GenerationMatch struct {
	GenerationID uuid.UUID `json:"generation_id"`
	Prompt       string    `json:"prompt"`
	Code         string    `json:"code"`
	QualityScore float64   `json:"quality_score"`
	Framework    Framework `json:"framework"`
	Similarity   float64   `json:"similarity"`
}

// PatternMatch is a similarity-search hit against a reusable pattern.
type PatternMatch struct {
	PatternID   uuid.UUID `json:"pattern_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Framework   Framework `json:"framework"`
	Similarity  float64   `json:"similarity"`
}

// Pattern is a curated reusable component pattern available for retrieval.
type Pattern struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Code        string    `json:"code"`
	Framework   Framework `json:"framework"`
	CreatedAt   time.Time `json:"created_at"`
}

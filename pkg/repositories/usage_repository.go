package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/database"
)

// UsageRepository tracks per-user generation counts for usage accounting.
// Writes happen on the fire-and-forget post-completion path; billing itself
// is an external collaborator's concern.
type UsageRepository interface {
	IncrementGenerationCount(ctx context.Context, userID uuid.UUID) error
}

type usageRepository struct {
	db *database.DB
}

// NewUsageRepository creates a new UsageRepository.
func NewUsageRepository(db *database.DB) UsageRepository {
	return &usageRepository{db: db}
}

var _ UsageRepository = (*usageRepository)(nil)

func (r *usageRepository) IncrementGenerationCount(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO usage_counters (user_id, generation_count, updated_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET generation_count = usage_counters.generation_count + 1, updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to increment generation count: %w", err)
	}
	return nil
}

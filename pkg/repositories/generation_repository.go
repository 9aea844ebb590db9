package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/apperrors"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/database"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
)

// GenerationRepository provides data access for generation records. The
// interface is deliberately narrow: insert, targeted update, fetch. Records
// are never deleted by this subsystem.
type GenerationRepository interface {
	Insert(ctx context.Context, record *models.GenerationRecord) error
	Update(ctx context.Context, id uuid.UUID, update *models.GenerationUpdate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRecord, error)
}

type generationRepository struct {
	db *database.DB
}

// NewGenerationRepository creates a new GenerationRepository.
func NewGenerationRepository(db *database.DB) GenerationRepository {
	return &generationRepository{db: db}
}

var _ GenerationRepository = (*generationRepository)(nil)

func (r *generationRepository) Insert(ctx context.Context, record *models.GenerationRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = models.StatusPending
	}

	query := `
		INSERT INTO generations (
			id, user_id, prompt, framework, status, provider, model,
			parent_generation_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		record.ID, record.UserID, record.Prompt, record.Framework, record.Status,
		record.Provider, record.Model, record.ParentGenerationID,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation: %w", err)
	}

	return nil
}

func (r *generationRepository) Update(ctx context.Context, id uuid.UUID, update *models.GenerationUpdate) error {
	sets := []string{"updated_at = $2"}
	args := []any{id, time.Now()}

	appendSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Status != nil {
		appendSet("status", *update.Status)
	}
	if update.Code != nil {
		appendSet("code", *update.Code)
	}
	if update.QualityScore != nil {
		appendSet("quality_score", *update.QualityScore)
	}
	if update.ErrorMessage != nil {
		appendSet("error_message", *update.ErrorMessage)
	}
	if update.Model != nil {
		appendSet("model", *update.Model)
	}

	query := fmt.Sprintf("UPDATE generations SET %s WHERE id = $1", strings.Join(sets, ", "))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update generation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("generation %s: %w", id, apperrors.ErrNotFound)
	}

	return nil
}

func (r *generationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRecord, error) {
	query := `
		SELECT id, user_id, prompt, framework, status, provider, model,
		       code, quality_score, error_message, parent_generation_id,
		       created_at, updated_at
		FROM generations
		WHERE id = $1`

	var record models.GenerationRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID, &record.UserID, &record.Prompt, &record.Framework,
		&record.Status, &record.Provider, &record.Model,
		&record.Code, &record.QualityScore, &record.ErrorMessage,
		&record.ParentGenerationID, &record.CreatedAt, &record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("generation %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}

	return &record, nil
}

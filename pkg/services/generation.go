package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LucasSantana-Dev/uiforge-engine/pkg/apperrors"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/config"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/llm"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/logging"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/models"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/quality"
	"github.com/LucasSantana-Dev/uiforge-engine/pkg/repositories"
)

// defaultPostProcessingTimeout bounds the detached embedding-storage and
// usage-accounting tasks.
const defaultPostProcessingTimeout = 30 * time.Second

// GenerationService coordinates the full generation pipeline: validation,
// record lifecycle, context enrichment, backend streaming, quality scoring,
// and detached post-processing.
type GenerationService interface {
	// ValidateRequest checks request shape/bounds and backend availability.
	// It performs no side effects and is safe to call before streaming.
	ValidateRequest(req *models.GenerationRequest) error

	// Generate runs the pipeline, writing events to the channel as they
	// occur. The caller owns the channel and its lifecycle; this service
	// writes events but does not close it. On failure the generation record
	// is finalized as failed and the error is returned; the caller emits the
	// terminal error event.
	Generate(ctx context.Context, userID uuid.UUID, req *models.GenerationRequest, events chan<- models.GenerationEvent) error

	// GetByID fetches a generation record.
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRecord, error)
}

type generationService struct {
	generationRepo repositories.GenerationRepository
	embeddingRepo  repositories.EmbeddingRepository
	usageRepo      repositories.UsageRepository
	enrichment     EnrichmentService
	llmFactory     llm.ClientFactory
	gateway        GatewayClient
	retrieval      config.RetrievalConfig
	embeddingModel string
	postTimeout    time.Duration
	postTasks      sync.WaitGroup
	logger         *zap.Logger
}

// NewGenerationService creates a new GenerationService.
func NewGenerationService(
	generationRepo repositories.GenerationRepository,
	embeddingRepo repositories.EmbeddingRepository,
	usageRepo repositories.UsageRepository,
	enrichment EnrichmentService,
	llmFactory llm.ClientFactory,
	gateway GatewayClient,
	cfg *config.Config,
	logger *zap.Logger,
) GenerationService {
	return &generationService{
		generationRepo: generationRepo,
		embeddingRepo:  embeddingRepo,
		usageRepo:      usageRepo,
		enrichment:     enrichment,
		llmFactory:     llmFactory,
		gateway:        gateway,
		retrieval:      cfg.Retrieval,
		embeddingModel: cfg.AI.EmbeddingModel,
		postTimeout:    defaultPostProcessingTimeout,
		logger:         logger.Named("generation"),
	}
}

var _ GenerationService = (*generationService)(nil)

func (s *generationService) ValidateRequest(req *models.GenerationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.Provider == models.ProviderGateway && !s.gateway.IsConfigured() {
		return fmt.Errorf("%w: endpoint URL or access token missing", apperrors.ErrGatewayUnavailable)
	}
	return nil
}

// selectBackend routes the request to the gateway or the direct backend.
// Configuration errors surface here, before any side effect.
func (s *generationService) selectBackend(req *models.GenerationRequest) (GenerationBackend, error) {
	if req.Provider == models.ProviderGateway {
		if !s.gateway.IsConfigured() {
			return nil, fmt.Errorf("%w: endpoint URL or access token missing", apperrors.ErrGatewayUnavailable)
		}
		return &gatewayBackend{client: s.gateway, model: "specialist"}, nil
	}

	streamer, err := s.llmFactory.CreateGenerationClient(req.APIKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConfiguration, err.Error())
	}
	return &directBackend{streamer: streamer}, nil
}

func (s *generationService) Generate(ctx context.Context, userID uuid.UUID, req *models.GenerationRequest, events chan<- models.GenerationEvent) error {
	// Validation and configuration errors abort before any side effect: no
	// record is created.
	if err := s.ValidateRequest(req); err != nil {
		return err
	}
	backend, err := s.selectBackend(req)
	if err != nil {
		return err
	}

	record := &models.GenerationRecord{
		ID:                 uuid.New(),
		UserID:             userID,
		Prompt:             req.Prompt,
		Framework:          req.Framework,
		Status:             models.StatusProcessing,
		Provider:           backend.Provider(),
		Model:              backend.Model(),
		ParentGenerationID: req.ParentGenerationID,
	}
	if err := s.generationRepo.Insert(ctx, record); err != nil {
		return fmt.Errorf("create generation record: %w", err)
	}

	events <- models.NewStartEvent(models.StartPayload{
		GenerationID: record.ID,
		Provider:     record.Provider,
		Model:        record.Model,
	})

	contextBlock := s.enrichWithFallback(ctx, req)

	code, err := backend.Generate(ctx, req, contextBlock, func(chunk string) {
		events <- models.NewChunkEvent(chunk)
	})
	if err != nil {
		s.markFailed(ctx, record.ID, err)
		return err
	}

	report := quality.RunAllGates(code)
	events <- models.NewQualityEvent(report)

	completed := models.StatusCompleted
	if err := s.generationRepo.Update(ctx, record.ID, &models.GenerationUpdate{
		Status:       &completed,
		Code:         &code,
		QualityScore: &report.Score,
	}); err != nil {
		s.markFailed(ctx, record.ID, err)
		return fmt.Errorf("finalize generation record: %w", err)
	}

	events <- models.NewCompleteEvent(models.CompletePayload{
		GenerationID:  record.ID,
		Code:          code,
		QualityPassed: report.Passed,
		ContextUsed:   contextBlock != "",
	})

	s.logger.Info("Generation completed",
		zap.String("generation_id", record.ID.String()),
		zap.String("provider", string(record.Provider)),
		zap.Float64("quality_score", report.Score),
		zap.Bool("quality_passed", report.Passed))

	s.dispatchPostProcessing(ctx, record.ID, userID, req)

	return nil
}

func (s *generationService) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationRecord, error) {
	return s.generationRepo.GetByID(ctx, id)
}

// enrichWithFallback wraps the entire enrichment call: any internal failure
// degrades to an empty context block and never aborts generation.
func (s *generationService) enrichWithFallback(ctx context.Context, req *models.GenerationRequest) string {
	if !req.RetrievalEnabled() {
		return ""
	}

	opts := EnrichmentOptions{
		MaxGenerations:      s.retrieval.MaxGenerations,
		MaxPatterns:         s.retrieval.MaxPatterns,
		MinQuality:          s.retrieval.MinQuality,
		GenerationThreshold: s.retrieval.GenerationThreshold,
		PatternThreshold:    s.retrieval.PatternThreshold,
		Framework:           req.Framework,
		APIKey:              req.APIKey,
	}

	result, err := s.enrichment.Enrich(ctx, req.Prompt, opts)
	if err != nil {
		s.logger.Warn("Context enrichment failed, continuing without context",
			zap.String("error", logging.SanitizeError(err)))
		return ""
	}
	return result.ContextBlock
}

// markFailed finalizes the record as failed. Best effort: a storage failure
// here is logged, not propagated, because the stream error already carries
// the primary failure.
func (s *generationService) markFailed(ctx context.Context, id uuid.UUID, cause error) {
	failed := models.StatusFailed
	message := logging.SanitizeError(cause)
	if err := s.generationRepo.Update(ctx, id, &models.GenerationUpdate{
		Status:       &failed,
		ErrorMessage: &message,
	}); err != nil {
		s.logger.Error("Failed to mark generation as failed",
			zap.String("generation_id", id.String()),
			zap.Error(err))
	}
}

// dispatchPostProcessing detaches embedding storage and usage accounting from
// the response path. Errors are captured and discarded here; they never
// surface to the caller or affect the response already sent.
func (s *generationService) dispatchPostProcessing(ctx context.Context, generationID, userID uuid.UUID, req *models.GenerationRequest) {
	detached := context.WithoutCancel(ctx)

	s.postTasks.Add(1)
	go func() {
		defer s.postTasks.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Post-processing panic recovered", zap.Any("panic", r))
			}
		}()

		taskCtx, cancel := context.WithTimeout(detached, s.postTimeout)
		defer cancel()

		s.storePromptEmbedding(taskCtx, generationID, req)

		if err := s.usageRepo.IncrementGenerationCount(taskCtx, userID); err != nil {
			s.logger.Warn("Usage accounting failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}()
}

func (s *generationService) storePromptEmbedding(ctx context.Context, generationID uuid.UUID, req *models.GenerationRequest) {
	embedder, err := s.llmFactory.CreateEmbeddingClient(req.APIKey)
	if err != nil {
		s.logger.Warn("Embedding storage skipped: no embedding client",
			zap.String("error", logging.SanitizeError(err)))
		return
	}

	vector, err := embedder.Embed(ctx, req.Prompt, llm.EmbedModeDocument)
	if err != nil {
		s.logger.Warn("Embedding storage failed",
			zap.String("generation_id", generationID.String()),
			zap.String("error", logging.SanitizeError(err)))
		return
	}

	if err := s.embeddingRepo.UpsertGenerationEmbedding(ctx, generationID, vector, s.embeddingModel); err != nil {
		s.logger.Warn("Embedding storage failed",
			zap.String("generation_id", generationID.String()),
			zap.Error(err))
	}
}
